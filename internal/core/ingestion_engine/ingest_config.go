package ingestion_engine

import (
	"github.com/rs/zerolog"

	"github.com/markdave123-py/fileinput/internal/core"
	"github.com/markdave123-py/fileinput/internal/services"
)

// IngestConfig tunes the ingestion stage.
//
// Workers: how many tasks are archived/inferred concurrently (minimum 1).
type IngestConfig struct {
	Workers int
}

// Batch identifies one adapter invocation.
type Batch struct {
	ID    string
	Owner string
}

// Outcome is what happened to one task, in the task's batch position.
type Outcome struct {
	TaskID      string `json:"task_id"`
	Position    int    `json:"position"`
	Source      string `json:"source"`
	Name        string `json:"name,omitempty"`
	Status      string `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size"`
	StorageURL  string `json:"storage_url,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Error       string `json:"error,omitempty"`
	Output      string `json:"output,omitempty"`
}

// TaskIngestor hands normalized tasks to their collaborators:
//
// tasks:    ledger + payload archive.
// pipeline: model invocation; nil disables inference.
// cfg:      runtime tuning knobs.
type TaskIngestor struct {
	tasks    *services.TaskService
	pipeline core.InferencePipeline
	cfg      *IngestConfig
	log      zerolog.Logger
}
