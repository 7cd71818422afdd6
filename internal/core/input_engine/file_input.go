package input_engine

import (
	"iter"

	"github.com/rs/zerolog"

	"github.com/markdave123-py/fileinput/internal/core"
)

// FileInput turns CLI invocations, serverless events and HTTP requests into
// inference tasks. Every entry point returns a lazy, single-pass sequence:
// ranging over it again re-runs the adapter.
type FileInput struct {
	log zerolog.Logger
}

func NewFileInput(logger zerolog.Logger) *FileInput {
	return &FileInput{log: logger.With().Str("component", "file_input").Logger()}
}

// FromCLI yields one task per --input-file path, in command-line order.
func (f *FileInput) FromCLI(args []string) iter.Seq[core.Task] {
	return f.Normalize(core.SourceCLI, cliAttempts(ParseInputFiles(args)))
}

// FromEvents yields one task per serverless event, in input order.
func (f *FileInput) FromEvents(events []Event) iter.Seq[core.Task] {
	return f.Normalize(core.SourceEvent, eventAttempts(events))
}

// FromHTTPRequests yields exactly one task per request.
func (f *FileInput) FromHTTPRequests(reqs []core.HTTPRequest) iter.Seq[core.Task] {
	return f.Normalize(core.SourceHTTP, httpAttempts(reqs))
}
