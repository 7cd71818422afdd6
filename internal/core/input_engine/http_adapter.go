package input_engine

import (
	"bytes"
	"iter"
	"mime"
	"strings"

	"github.com/markdave123-py/fileinput/internal/core"
)

// bodyKind is the shape of a request body as told by its Content-Type.
type bodyKind int

const (
	emptyBody bodyKind = iota
	rawBody
	multipartBody
)

func httpAttempts(reqs []core.HTTPRequest) iter.Seq[core.Attempt] {
	return func(yield func(core.Attempt) bool) {
		for _, req := range reqs {
			if !yield(httpAttempt(req)) {
				return
			}
		}
	}
}

// httpAttempt extracts the single file a request carries.
// TODO: support several file parts per request; callers currently send one request per file.
func httpAttempt(req core.HTTPRequest) core.Attempt {
	if req == nil {
		return core.Failed("", core.NewExtractError(core.KindMissingFile, nil, "no request"))
	}

	body := req.Body()
	kind, boundary, err := classifyBody(contentType(req.Headers()), body)
	if err != nil {
		return core.Failed("", err)
	}

	switch kind {
	case rawBody:
		return core.Succeeded("", bytes.Clone(body))
	case multipartBody:
		name, payload, err := ExtractFilePart(body, boundary)
		if err != nil {
			return core.Failed(name, err)
		}
		return core.Succeeded(name, payload)
	default:
		return core.Failed("", core.NewExtractError(core.KindMissingFile, nil, "request has no body"))
	}
}

// contentType returns the first Content-Type value, matching the name case-insensitively.
func contentType(headers []core.Header) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, "Content-Type") {
			return h.Value
		}
	}
	return ""
}

func classifyBody(ct string, body []byte) (bodyKind, string, error) {
	if len(body) == 0 {
		return emptyBody, "", nil
	}
	if strings.TrimSpace(ct) == "" {
		return rawBody, "", nil
	}

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "multipart/") {
			return emptyBody, "", core.NewExtractError(core.KindMultipartParseError, err, "invalid content type %q", ct)
		}
		return rawBody, "", nil
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return rawBody, "", nil
	}

	boundary := params["boundary"]
	if boundary == "" {
		return emptyBody, "", core.NewExtractError(core.KindMultipartParseError, nil, "%s without boundary", mediaType)
	}
	return multipartBody, boundary, nil
}
