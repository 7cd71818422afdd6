package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/fileinput/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:          "0",
		MaxBodyBytes:  1 << 20,
		IngestWorkers: 2,
		CorsOrigins:   []string{"http://localhost:5173"},
	}
}

func TestNewApp(t *testing.T) {
	t.Run("Should run with every collaborator disabled", func(t *testing.T) {
		a, err := NewApp(context.Background(), testConfig(), zerolog.Nop())
		require.NoError(t, err)
		defer a.Close()

		assert.False(t, a.Tasks.ArchiveEnabled())

		rec := httptest.NewRecorder()
		a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader([]byte("hello"))))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			BatchID string `json:"batch_id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		records, err := a.Tasks.ListByBatch(context.Background(), resp.BatchID)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("Should protect the API when a JWT secret is set", func(t *testing.T) {
		cfg := testConfig()
		cfg.JWTSecret = "s3cret"
		a, err := NewApp(context.Background(), cfg, zerolog.Nop())
		require.NoError(t, err)
		defer a.Close()
		h := a.Server.Handler()

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader([]byte("hello"))))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": "u1",
			"exp":     time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(cfg.JWTSecret))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader([]byte("hello")))
		req.Header.Set("Authorization", "Bearer "+tok)
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
