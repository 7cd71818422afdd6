package core

import (
	"bytes"
)

// Source names the transport a task arrived through.
const (
	SourceCLI   = "cli"
	SourceEvent = "event"
	SourceHTTP  = "http"
)

// Task is the unit of work handed to the inference pipeline.
//
// ID:        unique id, also used as the ledger and archive key.
// Source:    transport the task came from (cli | event | http).
// Position:  zero-based index of the task inside its batch.
// Name:      declared filename or path, for diagnostics only.
// Data:      reader over the extracted bytes, owned by this task alone.
// Discarded: true when extraction failed; Err then explains why.
type Task struct {
	ID        string
	Source    string
	Position  int
	Name      string
	Data      *bytes.Reader
	Discarded bool
	Err       *ExtractError
}

// IsDiscarded reports whether the task carries no usable content.
// Callers must check it before reading Data.
func (t Task) IsDiscarded() bool {
	return t.Discarded
}

// NormalizedInput is one candidate file produced by an adapter.
type NormalizedInput struct {
	Name  string
	Bytes []byte
}

// Attempt is the result of one adapter extraction: either an input or an error.
// Input.Name is kept on failures too so discarded tasks can be traced.
type Attempt struct {
	Input NormalizedInput
	Err   error
}

func Succeeded(name string, b []byte) Attempt {
	return Attempt{Input: NormalizedInput{Name: name, Bytes: b}}
}

func Failed(name string, err error) Attempt {
	return Attempt{Input: NormalizedInput{Name: name}, Err: err}
}
