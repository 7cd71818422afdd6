package models

import (
	"time"
)

// Task statuses recorded in the ledger.
const (
	StatusReady     = "ready"     // usable payload, pipeline (if any) succeeded
	StatusFailed    = "failed"    // usable payload, a collaborator failed
	StatusDiscarded = "discarded" // extraction failed
)

// TaskRecord is one ledger row describing the outcome of a task.
type TaskRecord struct {
	ID          string    `db:"id" json:"id"`
	BatchID     string    `db:"batch_id" json:"batch_id"`
	Owner       string    `db:"owner" json:"owner,omitempty"`
	Source      string    `db:"source" json:"source"`     // cli | event | http
	Position    int       `db:"position" json:"position"` // index inside the batch
	FileName    string    `db:"file_name" json:"file_name,omitempty"`
	ContentType string    `db:"content_type" json:"content_type,omitempty"`
	Size        int64     `db:"size" json:"size"`
	StorageURL  string    `db:"storage_url" json:"storage_url,omitempty"`
	Status      string    `db:"status" json:"status"`
	ErrorKind   string    `db:"error_kind" json:"error_kind,omitempty"`
	Error       string    `db:"error" json:"error,omitempty"`
	Output      string    `db:"output" json:"output,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
