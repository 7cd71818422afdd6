package core

import (
	"context"

	"github.com/markdave123-py/fileinput/internal/models"
)

// TaskLedger persists task outcomes.
// It abstracts Postgres so higher layers never depend on a specific DB.
type TaskLedger interface {
	CreateTaskRecord(ctx context.Context, rec *models.TaskRecord) error
	GetTaskRecord(ctx context.Context, id string) (*models.TaskRecord, error)
	ListTaskRecordsByBatch(ctx context.Context, batchID string) ([]models.TaskRecord, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}

// InferencePipeline runs a model over one usable task payload.
type InferencePipeline interface {
	Infer(ctx context.Context, contentType string, data []byte) (string, error)
}
