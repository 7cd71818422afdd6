package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appMiddleware "github.com/markdave123-py/fileinput/internal/api/middlewares"
	"github.com/markdave123-py/fileinput/internal/core"
	"github.com/markdave123-py/fileinput/internal/core/ingestion_engine"
	"github.com/markdave123-py/fileinput/internal/core/input_engine"
	"github.com/markdave123-py/fileinput/internal/models"
	"github.com/markdave123-py/fileinput/internal/services"
)

type PredictHandler struct {
	input        *input_engine.FileInput
	ingestor     ingestion_engine.Ingestor
	tasks        *services.TaskService
	maxBodyBytes int64
	log          zerolog.Logger
}

func NewPredictHandler(input *input_engine.FileInput, ing ingestion_engine.Ingestor, tasks *services.TaskService, maxBodyBytes int64, logger zerolog.Logger) *PredictHandler {
	return &PredictHandler{
		input:        input,
		ingestor:     ing,
		tasks:        tasks,
		maxBodyBytes: maxBodyBytes,
		log:          logger.With().Str("component", "predict_handler").Logger(),
	}
}

type predictResponse struct {
	BatchID string                     `json:"batch_id"`
	Tasks   []ingestion_engine.Outcome `json:"tasks"`
}

// Predict turns the request into one task and runs it through the ingestor.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	req, err := core.RequestFromHTTP(r, h.maxBodyBytes)
	if errors.Is(err, core.ErrBodyTooLarge) {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	batch := ingestion_engine.Batch{
		ID:    uuid.NewString(),
		Owner: appMiddleware.UserIDFromContext(r.Context()),
	}
	outcomes, err := h.ingestor.Ingest(r.Context(), batch, h.input.FromHTTPRequests([]core.HTTPRequest{req}))
	if err != nil {
		h.log.Warn().Err(err).Str("batch_id", batch.ID).Msg("predict aborted")
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, predictStatus(outcomes), predictResponse{BatchID: batch.ID, Tasks: outcomes})
}

// predictStatus picks the reply code from the worst outcome.
func predictStatus(outcomes []ingestion_engine.Outcome) int {
	status := http.StatusOK
	for _, o := range outcomes {
		switch o.Status {
		case models.StatusDiscarded:
			return http.StatusBadRequest
		case models.StatusFailed:
			status = http.StatusBadGateway
		}
	}
	return status
}

// GetBatch lists the ledger rows of one batch.
func (h *PredictHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	if !validID(batchID) {
		http.Error(w, "batch not found", http.StatusNotFound)
		return
	}

	records, err := h.tasks.ListByBatch(r.Context(), batchID)
	if err != nil {
		h.log.Error().Err(err).Str("batch_id", batchID).Msg("list batch")
		http.Error(w, "failed to load batch", http.StatusInternalServerError)
		return
	}
	if len(records) == 0 || !ownedBy(r, records[0]) {
		http.Error(w, "batch not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// GetPayload streams back the archived bytes of one task.
func (h *PredictHandler) GetPayload(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if !validID(taskID) {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}

	data, rec, err := h.tasks.Payload(r.Context(), taskID)
	switch {
	case errors.Is(err, services.ErrTaskNotFound), rec != nil && !ownedBy(r, *rec):
		http.Error(w, "task not found", http.StatusNotFound)
		return
	case errors.Is(err, services.ErrNotArchived):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.log.Error().Err(err).Str("task_id", taskID).Msg("fetch payload")
		http.Error(w, "failed to fetch payload", http.StatusBadGateway)
		return
	}

	contentType := rec.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// validID reports whether id can name a batch or task; the ledger keys them by UUID.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ownedBy hides other callers' records once authentication is on.
func ownedBy(r *http.Request, rec models.TaskRecord) bool {
	user := appMiddleware.UserIDFromContext(r.Context())
	return user == "" || rec.Owner == user
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
