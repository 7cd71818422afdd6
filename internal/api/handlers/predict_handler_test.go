package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/markdave123-py/fileinput/internal/api/middlewares"
	"github.com/markdave123-py/fileinput/internal/core"
	db "github.com/markdave123-py/fileinput/internal/core/database"
	"github.com/markdave123-py/fileinput/internal/core/ingestion_engine"
	"github.com/markdave123-py/fileinput/internal/core/input_engine"
	objectclient "github.com/markdave123-py/fileinput/internal/core/object-client"
	"github.com/markdave123-py/fileinput/internal/models"
	"github.com/markdave123-py/fileinput/internal/services"
)

const binContent = "\x810\x899"

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStore) UploadFile(_ context.Context, bucket, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = append([]byte(nil), data...)
	return objectclient.ObjectURL(bucket, "us-east-2", key), nil
}

func (m *memStore) DeleteFile(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+key)
	return nil
}

func (m *memStore) GetFile(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return b, nil
}

// uuidLedger rejects ids that are not UUIDs, as the Postgres ledger's uuid columns do.
type uuidLedger struct {
	*db.MemoryClient
}

func (l uuidLedger) GetTaskRecord(ctx context.Context, id string) (*models.TaskRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid input syntax for type uuid: %q", id)
	}
	return l.MemoryClient.GetTaskRecord(ctx, id)
}

func (l uuidLedger) ListTaskRecordsByBatch(ctx context.Context, batchID string) ([]models.TaskRecord, error) {
	if _, err := uuid.Parse(batchID); err != nil {
		return nil, fmt.Errorf("invalid input syntax for type uuid: %q", batchID)
	}
	return l.MemoryClient.ListTaskRecordsByBatch(ctx, batchID)
}

type pipelineFunc func(ctx context.Context, contentType string, data []byte) (string, error)

func (f pipelineFunc) Infer(ctx context.Context, contentType string, data []byte) (string, error) {
	return f(ctx, contentType, data)
}

// newRouter mounts the handler the way the server does, with the caller
// taken from an X-Test-User header instead of a token.
func newRouter(storage core.ObjectClient, pipeline core.InferencePipeline, maxBody int64) chi.Router {
	tasks := services.NewTaskService(uuidLedger{db.NewMemoryClient()}, storage, "inputs")
	ing := ingestion_engine.NewTaskIngestor(tasks, pipeline, &ingestion_engine.IngestConfig{Workers: 2}, zerolog.Nop())
	h := NewPredictHandler(input_engine.NewFileInput(zerolog.Nop()), ing, tasks, maxBody, zerolog.Nop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if u := req.Header.Get("X-Test-User"); u != "" {
				req = req.WithContext(appMiddleware.WithUserID(req.Context(), u))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/api/predict", h.Predict)
	r.Get("/api/batches/{batchID}", h.GetBatch)
	r.Get("/api/tasks/{taskID}/payload", h.GetPayload)
	return r
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/predict", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodePredict(t *testing.T, rec *httptest.ResponseRecorder) predictResponse {
	t.Helper()
	var resp predictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.BatchID)
	require.Len(t, resp.Tasks, 1)
	return resp
}

func TestPredictHandler_Predict(t *testing.T) {
	t.Run("Should accept a multipart upload and archive it", func(t *testing.T) {
		r := newRouter(&memStore{objects: map[string][]byte{}}, nil, 1<<20)

		rec := serve(r, multipartRequest(t, "different_name", "in.bin", []byte(binContent)))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodePredict(t, rec)
		task := resp.Tasks[0]
		assert.Equal(t, models.StatusReady, task.Status)
		assert.Equal(t, core.SourceHTTP, task.Source)
		assert.Equal(t, "in.bin", task.Name)
		assert.Equal(t, len(binContent), task.Size)
		require.NotEmpty(t, task.StorageURL)

		payload := serve(r, httptest.NewRequest(http.MethodGet, "/api/tasks/"+task.TaskID+"/payload", nil))
		require.Equal(t, http.StatusOK, payload.Code)
		assert.Equal(t, binContent, payload.Body.String())
	})

	t.Run("Should accept a raw binary body and pass it to the pipeline", func(t *testing.T) {
		var seen []byte
		pipeline := pipelineFunc(func(_ context.Context, _ string, data []byte) (string, error) {
			seen = data
			return "a cat", nil
		})
		r := newRouter(nil, pipeline, 1<<20)

		req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader([]byte(binContent)))
		req.Header.Set("Content-Type", "application/octet-stream")
		rec := serve(r, req)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodePredict(t, rec)
		assert.Equal(t, "a cat", resp.Tasks[0].Output)
		assert.Equal(t, []byte(binContent), seen)
	})

	t.Run("Should answer 400 for a request without a file", func(t *testing.T) {
		r := newRouter(nil, nil, 1<<20)

		rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/predict", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodePredict(t, rec)
		assert.Equal(t, models.StatusDiscarded, resp.Tasks[0].Status)
		assert.Equal(t, string(core.KindMissingFile), resp.Tasks[0].ErrorKind)
	})

	t.Run("Should answer 502 when inference fails", func(t *testing.T) {
		pipeline := pipelineFunc(func(context.Context, string, []byte) (string, error) {
			return "", errors.New("quota exceeded")
		})
		r := newRouter(nil, pipeline, 1<<20)

		rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader([]byte("x"))))

		require.Equal(t, http.StatusBadGateway, rec.Code)
		resp := decodePredict(t, rec)
		assert.Equal(t, models.StatusFailed, resp.Tasks[0].Status)
	})

	t.Run("Should answer 413 for an oversized body", func(t *testing.T) {
		r := newRouter(nil, nil, 4)

		rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader([]byte("12345"))))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestPredictHandler_GetBatch(t *testing.T) {
	r := newRouter(nil, nil, 1<<20)

	post := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader([]byte("hello")))
	post.Header.Set("X-Test-User", "alice")
	resp := decodePredict(t, serve(r, post))

	t.Run("Should list the records of a known batch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/batches/"+resp.BatchID, nil)
		req.Header.Set("X-Test-User", "alice")
		rec := serve(r, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var records []models.TaskRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, resp.Tasks[0].TaskID, records[0].ID)
		assert.Equal(t, "alice", records[0].Owner)
	})

	t.Run("Should hide batches of other callers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/batches/"+resp.BatchID, nil)
		req.Header.Set("X-Test-User", "bob")
		assert.Equal(t, http.StatusNotFound, serve(r, req).Code)
	})

	t.Run("Should answer 404 for an unknown batch", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/batches/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Should answer 404 for a batch id that is not a UUID", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/batches/not-a-uuid", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPredictHandler_GetPayload(t *testing.T) {
	t.Run("Should answer 409 when archiving is off", func(t *testing.T) {
		r := newRouter(nil, nil, 1<<20)
		resp := decodePredict(t, serve(r, httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader([]byte("hello")))))

		rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/tasks/"+resp.Tasks[0].TaskID+"/payload", nil))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Should answer 404 for an unknown task", func(t *testing.T) {
		r := newRouter(nil, nil, 1<<20)
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/tasks/"+uuid.NewString()+"/payload", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Should answer 404 for a task id that is not a UUID", func(t *testing.T) {
		r := newRouter(&memStore{objects: map[string][]byte{}}, nil, 1<<20)
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/tasks/not-a-uuid/payload", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
