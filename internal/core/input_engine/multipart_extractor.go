package input_engine

import (
	"bytes"
	"io"
	"mime/multipart"

	"github.com/markdave123-py/fileinput/internal/core"
)

// ExtractFilePart returns the declared filename and raw payload of the first
// part that carries a filename, whatever its field name. Bare-LF line endings
// are accepted alongside CRLF.
func ExtractFilePart(body []byte, boundary string) (string, []byte, error) {
	if len(body) == 0 {
		return "", nil, core.NewExtractError(core.KindMissingFile, nil, "empty multipart body")
	}

	// The reader only learns bare-LF endings from an opening delimiter, so a
	// body holding nothing but the closing one is recognised here.
	if bytes.Equal(bytes.TrimSpace(body), []byte("--"+boundary+"--")) {
		return "", nil, core.NewExtractError(core.KindMissingFile, nil, "no file part found")
	}

	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := mr.NextRawPart()
		// A clean end is reported as io.EOF itself; a truncated body wraps it.
		if err == io.EOF {
			return "", nil, core.NewExtractError(core.KindMissingFile, nil, "no file part found")
		}
		if err != nil {
			return "", nil, core.NewExtractError(core.KindMultipartParseError, err, "malformed multipart body")
		}

		name := part.FileName()
		if name == "" {
			_ = part.Close()
			continue
		}

		payload, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return name, nil, core.NewExtractError(core.KindMultipartParseError, err, "cannot read part %q", name)
		}
		return name, payload, nil
	}
}
