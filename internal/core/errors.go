package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an attempt produced no usable file.
type ErrorKind string

const (
	KindPathUnreadable      ErrorKind = "PathUnreadable"
	KindMalformedPayload    ErrorKind = "MalformedPayload"
	KindMissingFile         ErrorKind = "MissingFile"
	KindMultipartParseError ErrorKind = "MultipartParseError"
)

// ExtractError is the diagnostic attached to a discarded task.
type ExtractError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewExtractError(kind ErrorKind, err error, format string, args ...any) *ExtractError {
	return &ExtractError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// AsExtractError returns err as an *ExtractError. Errors that do not carry a
// kind are reported as malformed payloads.
func AsExtractError(err error) *ExtractError {
	if err == nil {
		return nil
	}
	var xe *ExtractError
	if errors.As(err, &xe) {
		return xe
	}
	return &ExtractError{Kind: KindMalformedPayload, Message: err.Error(), Err: err}
}
