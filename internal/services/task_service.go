package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/markdave123-py/fileinput/internal/core"
	objectclient "github.com/markdave123-py/fileinput/internal/core/object-client"
	"github.com/markdave123-py/fileinput/internal/models"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNotArchived  = errors.New("task payload was not archived")
)

// TaskService ties the ledger and the optional payload archive together.
type TaskService struct {
	ledger  core.TaskLedger
	storage core.ObjectClient
	bucket  string
}

// NewTaskService builds the service. A nil storage or empty bucket disables archiving.
func NewTaskService(ledger core.TaskLedger, storage core.ObjectClient, bucket string) *TaskService {
	return &TaskService{ledger: ledger, storage: storage, bucket: bucket}
}

func (s *TaskService) ArchiveEnabled() bool {
	return s.storage != nil && s.bucket != ""
}

// Archive stores a usable payload and returns its URL, or "" when archiving is off.
func (s *TaskService) Archive(ctx context.Context, batchID, taskID, filename, contentType string, data []byte) (string, error) {
	if !s.ArchiveEnabled() {
		return "", nil
	}
	key := s.objectKey(batchID, taskID, filename)
	return s.storage.UploadFile(ctx, s.bucket, key, data, contentType)
}

// Unarchive removes a previously archived payload. Only the key is taken
// from the URL; payloads always live in the service's own bucket.
func (s *TaskService) Unarchive(ctx context.Context, url string) error {
	if !s.ArchiveEnabled() || url == "" {
		return nil
	}
	key, err := objectclient.KeyFromURL(url)
	if err != nil {
		return err
	}
	return s.storage.DeleteFile(ctx, s.bucket, key)
}

// Payload returns the archived bytes of a task together with its record.
func (s *TaskService) Payload(ctx context.Context, taskID string) ([]byte, *models.TaskRecord, error) {
	rec, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if rec.StorageURL == "" || !s.ArchiveEnabled() {
		return nil, rec, ErrNotArchived
	}
	key, err := objectclient.KeyFromURL(rec.StorageURL)
	if err != nil {
		return nil, rec, err
	}
	data, err := s.storage.GetFile(ctx, s.bucket, key)
	if err != nil {
		return nil, rec, fmt.Errorf("fetch payload: %w", err)
	}
	return data, rec, nil
}

func (s *TaskService) Record(ctx context.Context, rec *models.TaskRecord) error {
	return s.ledger.CreateTaskRecord(ctx, rec)
}

func (s *TaskService) Get(ctx context.Context, taskID string) (*models.TaskRecord, error) {
	rec, err := s.ledger.GetTaskRecord(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrTaskNotFound
	}
	return rec, nil
}

func (s *TaskService) ListByBatch(ctx context.Context, batchID string) ([]models.TaskRecord, error) {
	return s.ledger.ListTaskRecordsByBatch(ctx, batchID)
}

// objectKey creates a consistent S3 key layout.
func (s *TaskService) objectKey(batchID, taskID, filename string) string {
	filename = path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	filename = strings.ReplaceAll(filename, " ", "_")
	if filename == "" || filename == "." || filename == "/" {
		filename = "payload"
	}
	return path.Join("batches", batchID, "tasks", taskID, filename)
}
