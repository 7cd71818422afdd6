package ingestion_engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	objectclient "github.com/markdave123-py/fileinput/internal/core/object-client"
	"github.com/markdave123-py/fileinput/internal/models"
)

type fakePipeline struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

// Infer echoes the payload and fails on payloads starting with "fail".
func (p *fakePipeline) Infer(ctx context.Context, contentType string, data []byte) (string, error) {
	p.calls.Add(1)
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		m := p.maxSeen.Load()
		if n <= m || p.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if strings.HasPrefix(string(data), "fail") {
		return "", errors.New("model refused")
	}
	return contentType + ":" + string(data), nil
}

type fakeObjectClient struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectClient() *fakeObjectClient {
	return &fakeObjectClient{objects: make(map[string][]byte)}
}

func (f *fakeObjectClient) UploadFile(_ context.Context, bucket, key string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = append([]byte(nil), data...)
	return objectclient.ObjectURL(bucket, "us-east-2", key), nil
}

func (f *fakeObjectClient) DeleteFile(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+key)
	return nil
}

func (f *fakeObjectClient) GetFile(_ context.Context, bucket, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return b, nil
}

func (f *fakeObjectClient) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type failingLedger struct{}

func (failingLedger) CreateTaskRecord(context.Context, *models.TaskRecord) error {
	return errors.New("ledger down")
}

func (failingLedger) GetTaskRecord(context.Context, string) (*models.TaskRecord, error) {
	return nil, nil
}

func (failingLedger) ListTaskRecordsByBatch(context.Context, string) ([]models.TaskRecord, error) {
	return nil, nil
}

func (failingLedger) Close() error { return nil }
