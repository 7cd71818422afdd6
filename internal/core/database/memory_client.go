package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/markdave123-py/fileinput/internal/core"
	"github.com/markdave123-py/fileinput/internal/models"
)

// MemoryClient is a process-local ledger used when no database is configured.
type MemoryClient struct {
	mu      sync.RWMutex
	records map[string]models.TaskRecord
	batches map[string][]string
}

var _ core.TaskLedger = (*MemoryClient)(nil)

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		records: make(map[string]models.TaskRecord),
		batches: make(map[string][]string),
	}
}

func (m *MemoryClient) CreateTaskRecord(_ context.Context, rec *models.TaskRecord) error {
	if rec == nil {
		return errors.New("nil task record")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; ok {
		return fmt.Errorf("task record %s already exists", rec.ID)
	}
	m.records[rec.ID] = *rec
	m.batches[rec.BatchID] = append(m.batches[rec.BatchID], rec.ID)
	return nil
}

func (m *MemoryClient) GetTaskRecord(_ context.Context, id string) (*models.TaskRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryClient) ListTaskRecordsByBatch(_ context.Context, batchID string) ([]models.TaskRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.batches[batchID]
	out := make([]models.TaskRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.records[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *MemoryClient) Close() error { return nil }
