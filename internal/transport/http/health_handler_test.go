package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentimentpulse/internal/dataprocessing"
	"sentimentpulse/internal/services"
	"sentimentpulse/internal/shared/testutil"
)

func newHealthRouter(t *testing.T, src *testutil.StubSource) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	health := services.NewHealthService("1.0.0", newSampleService(t, src), nil, logger)
	h := NewHealthHandler(health, logger)

	r := chi.NewRouter()
	r.Get("/api/health", h.HealthCheck)
	r.Get("/api/health/ready", h.ReadinessCheck)
	r.Get("/api/health/live", h.LivenessCheck)
	r.Get("/api/version", h.Version)
	return r
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		loadErr    error
		wantStatus int
		wantField  string
		wantValue  string
	}{
		{name: "health", path: "/api/health", wantStatus: http.StatusOK, wantField: "status", wantValue: "ok"},
		{name: "live", path: "/api/health/live", wantStatus: http.StatusOK, wantField: "status", wantValue: "alive"},
		{name: "ready", path: "/api/health/ready", wantStatus: http.StatusOK, wantField: "status", wantValue: "ready"},
		{
			name:       "not ready",
			path:       "/api/health/ready",
			loadErr:    fmt.Errorf("%w: gone", dataprocessing.ErrFileNotFound),
			wantStatus: http.StatusServiceUnavailable,
			wantField:  "status",
			wantValue:  "not_ready",
		},
		{name: "version", path: "/api/version", wantStatus: http.StatusOK, wantField: "version", wantValue: "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := testutil.NewStubSource(testutil.SampleObservations())
			if tt.loadErr != nil {
				src.Set(nil, tt.loadErr)
			}
			router := newHealthRouter(t, src)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantValue, body[tt.wantField])
		})
	}
}
