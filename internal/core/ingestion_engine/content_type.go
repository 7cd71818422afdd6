package ingestion_engine

import (
	"net/http"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

// detectContentType sniffs the payload with the stdlib first and falls back
// to the broader mimetype library when the stdlib cannot tell.
func detectContentType(data []byte) string {
	if len(data) == 0 {
		return defaultContentType
	}
	mt := http.DetectContentType(data)
	if mt != defaultContentType {
		return mt
	}
	return mimetype.Detect(data).String()
}
