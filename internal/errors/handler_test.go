package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentimentpulse/internal/shared/testutil"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
		wantLevel  slog.Level
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
			wantLevel:  slog.LevelError,
		},
		{
			name:       "wrapped context canceled",
			err:        fmt.Errorf("load: %w", context.Canceled),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
			wantLevel:  slog.LevelError,
		},
		{
			name:       "invalid request",
			err:        InvalidRequestWithError(errors.New("unexpected EOF")),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantTitle:  "Bad Request",
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "unknown company",
			err:        CompanyNotFoundError("Wipro"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeCompanyNotFound,
			wantTitle:  "Not Found",
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "missing data file",
			err:        DataUnavailableError(true, "Data file not found at: /srv/x.xlsx"),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataNotFound,
			wantTitle:  "Service Unavailable",
			wantLevel:  slog.LevelError,
		},
		{
			name:       "broken data file",
			err:        DataUnavailableError(false, "Error: row 3"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeDataCorrupted,
			wantTitle:  "Internal Server Error",
			wantLevel:  slog.LevelError,
		},
		{
			name:       "plain not found text",
			err:        fmt.Errorf("resource not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantTitle:  "Resource Not Found",
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "generic error",
			err:        fmt.Errorf("something went wrong"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantTitle:  "Internal Server Error",
			wantLevel:  slog.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/data/summary", nil)
			r = r.WithContext(context.WithValue(r.Context(), middleware.RequestIDKey, "req-42"))

			handler.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))

			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, tt.wantTitle, body["title"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/data/summary", body["instance"])
			assert.Equal(t, "req-42", body["trace_id"])
			assert.NotContains(t, body, "stack")

			assert.NotEmpty(t, logHandler.GetRecordsByLevel(tt.wantLevel))
			assert.True(t, logHandler.ContainsMessage("request failed"))
		})
	}
}

func TestErrorHandler_HandleNilError(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, w.Body.Len())
	assert.Zero(t, logHandler.Count())
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	err := NewValidationErrors([]ValidationError{
		{Field: "bins", Message: "must be at most 100"},
	})

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/api/data/histogram?bins=500", nil), err)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])

	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "bins", errs[0].(map[string]interface{})["field"])
}

func TestErrorHandler_AppErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
		wantType   string
	}{
		{"parsing", NewParsingError("bad row", nil), http.StatusInternalServerError, TypeDataCorrupted},
		{"storage", NewStorageError("workbook missing", nil), http.StatusServiceUnavailable, TypeDataNotFound},
		{"config", NewConfigError("bad port", nil), http.StatusInternalServerError, TypeConfiguration},
	}

	handler := NewErrorHandler(nil, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			problem := handler.ErrorToProblem(fmt.Errorf("wrapped: %w", tt.err.WithContext("row", 3)), r)

			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.err.Message, problem.Detail)
			assert.Equal(t, string(tt.err.Type), problem.Extensions["error_type"])
			assert.Equal(t, 3, problem.Extensions["row"])
		})
	}
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	handler.HandlePanic(w, httptest.NewRequest(http.MethodGet, "/boom", nil), "kaboom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, "kaboom", body["panic"])
	assert.Contains(t, body, "stack")
	testutil.AssertLogContains(t, logHandler, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	handler := NewErrorHandler(nil, false)

	w := httptest.NewRecorder()
	handler.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "/nope", decodeProblem(t, w)["instance"])

	w = httptest.NewRecorder()
	handler.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/data/reload", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method DELETE is not allowed for this endpoint", decodeProblem(t, w)["detail"])
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	RecoveryMiddleware(handler)(panicky).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))
}

func TestRecoveryMiddlewarePassesThrough(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	RecoveryMiddleware(handler)(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
