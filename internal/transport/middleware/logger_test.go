package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
	"github.com/heartmarshall/featureflags-backend/pkg/ctxutil"
)

// logRecord runs req through Logger and decodes the single JSON record.
func logRecord(t *testing.T, h http.Handler, req *http.Request) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Logger(logger)(h).ServeHTTP(httptest.NewRecorder(), req)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec), buf.String())
	return rec
}

func TestLogger_Fields(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/segments", nil)
	req = req.WithContext(ctxutil.WithRequestID(req.Context(), "req-123"))

	rec := logRecord(t, h, req)

	assert.Equal(t, "http.request", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "GET", rec["method"])
	assert.Equal(t, "/api/v1/segments", rec["path"])
	assert.EqualValues(t, 200, rec["status"])
	assert.EqualValues(t, len(`{"data":[]}`), rec["bytes"])
	assert.Equal(t, "req-123", rec["request_id"])
	assert.Contains(t, rec, "duration")
	assert.NotContains(t, rec, "actor_id")
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusCreated, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusForbidden, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			rec := logRecord(t, h, httptest.NewRequest(http.MethodPost, "/api/v1/segments", nil))

			assert.Equal(t, tt.level, rec["level"])
			assert.EqualValues(t, tt.status, rec["status"])
		})
	}
}

func TestLogger_IncludesActor(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/segments/x", nil)
	req = req.WithContext(ctxutil.WithActor(req.Context(), domain.NewPerson("user-7", "viewer")))

	rec := logRecord(t, h, req)

	assert.Equal(t, "user-7", rec["actor_id"])
}

func TestLogger_RoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(Logger(logger))
	r.Get("/segments/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/segments/42", nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "/segments/{id}", rec["route"])
	assert.Equal(t, "/segments/42", rec["path"])
}
