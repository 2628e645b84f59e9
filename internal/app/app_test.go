package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentimentpulse/internal/config"
	"sentimentpulse/internal/dataprocessing"
	"sentimentpulse/internal/shared/testutil"
	"sentimentpulse/pkg/contracts/events"
)

func testConfig(t *testing.T, dataFile string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Paths.ExecutableDir = dir
	cfg.Paths.LogsDir = filepath.Join(dir, "logs")
	cfg.Paths.ExportsDir = filepath.Join(dir, "exports")
	cfg.Data.File = dataFile
	cfg.Telemetry.EnableTracing = false
	cfg.Telemetry.TraceExporter = "none"
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) *Application {
	t.Helper()
	// background loads can outlive the test
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := New(cfg, logger, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		app.WebSocketHub.Stop()
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestApplication_ServesDashboardFromWorkbook(t *testing.T) {
	app := newTestApp(t, testConfig(t, testutil.WriteSampleWorkbook(t)))
	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	resp, body := get(t, srv.URL+"/?sector=IT&company=Infosys&compare=TCS")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "https://cdn.jsdelivr.net")

	assert.Contains(t, body, "Indian Market Sentiment Tracker")
	assert.Contains(t, body, `<option value="TCS" selected>TCS</option>`)
	assert.Contains(t, body, "Latest: Jul 2024")
}

func TestApplication_MissingWorkbook(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "Sentiment_Analysis_Production.xlsx")
	app := newTestApp(t, testConfig(t, missing))
	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "Data file not found at: "+missing)
	assert.NotContains(t, body, "Top Positive")

	resp, body = get(t, srv.URL+"/api/data/summary")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "Data file not found at: "+missing)

	resp, _ = get(t, srv.URL+"/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApp(t, testConfig(t, testutil.WriteSampleWorkbook(t)))
	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	tests := []struct {
		path        string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{path: "/api/health", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"status":"ok"`},
		{path: "/api/health/live", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"alive"`},
		{path: "/api/health/ready", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"ready"`},
		{path: "/api/version", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"api_version":"v1"`},
		{path: "/api/data/summary", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"Infosys"`},
		{path: "/api/data/snapshot", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"count":8`},
		{path: "/api/data/sectors", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"Metals"`},
		{path: "/api/data/histogram?bins=4", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"count":4`},
		{path: "/api/data/companies?sector=IT", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `["Infosys","TCS"]`},
		{path: "/api/data/company/TCS/trend", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"company":"TCS"`},
		{path: "/api/data/download/csv", wantStatus: http.StatusOK, wantType: "text/csv; charset=utf-8", wantContain: "Company,Sector,Score,Month,Year"},
		{path: "/api/data/company/Wipro/trend", wantStatus: http.StatusNotFound, wantType: "application/problem+json", wantContain: "company-not-found"},
		{path: "/api/unknown", wantStatus: http.StatusNotFound, wantType: "application/problem+json", wantContain: "/errors/not-found"},
		{path: "/metrics", wantStatus: http.StatusOK, wantContain: "dataset_loads_total"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, srv.URL+tt.path)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, body)
			if tt.wantType != "" {
				assert.Contains(t, resp.Header.Get("Content-Type"), tt.wantType)
			}
			assert.Contains(t, body, tt.wantContain)
		})
	}
}

func TestApplication_MethodNotAllowed(t *testing.T) {
	app := newTestApp(t, testConfig(t, testutil.WriteSampleWorkbook(t)))
	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/", "text/plain", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := testConfig(t, testutil.WriteSampleWorkbook(t))
	cfg.Security.RateLimit.Enabled = true
	cfg.Security.RateLimit.RPS = 0.1
	cfg.Security.RateLimit.Burst = 1
	app := newTestApp(t, cfg)
	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	resp, _ := get(t, srv.URL+"/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/api/health")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "10", resp.Header.Get("Retry-After"))
}

func TestApplication_ReloadNotifiesWebSocket(t *testing.T) {
	src := dataprocessing.NewWorkbookSource(testutil.WriteSampleWorkbook(t), testutil.SampleSheet)
	app := newTestApp(t, testConfig(t, src.Path), WithSource(src))
	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	readMessage := func() events.WebSocketMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg events.WebSocketMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	welcome := readMessage()
	assert.Equal(t, events.MessageTypeConnect, welcome.Type)

	resp, err := http.Post(srv.URL+"/api/data/reload", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	update := readMessage()
	assert.Equal(t, events.MessageTypeDataUpdate, update.Type)

	raw, err := json.Marshal(update.Data)
	require.NoError(t, err)
	var payload events.DataUpdate
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, 13, payload.Observations)
	assert.Equal(t, 8, payload.Companies)
	assert.Equal(t, "xlsx", payload.Source)
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApp(t, testConfig(t, testutil.WriteSampleWorkbook(t)))

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))

	resp, body := get(t, fmt.Sprintf("http://%s/api/health/live", app.Addr()))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "alive")

	require.NoError(t, app.Stop(ctx))

	_, err := http.Get(fmt.Sprintf("http://%s/api/health/live", app.Addr()))
	assert.Error(t, err)
}

func TestApplication_WatcherLoadsNewWorkbook(t *testing.T) {
	sample, err := os.ReadFile(testutil.WriteSampleWorkbook(t))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "Sentiment_Analysis_Production.xlsx")
	cfg := testConfig(t, path)
	cfg.Data.WatchInterval = 20 * time.Millisecond
	app := newTestApp(t, cfg)

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	defer app.Stop(ctx)

	require.NoError(t, os.WriteFile(path, sample, 0644))

	mod := time.Now()
	require.Eventually(t, func() bool {
		mod = mod.Add(time.Second)
		_ = os.Chtimes(path, mod, mod)
		return app.Services.Dataset.Status().Observations == 13
	}, 5*time.Second, 50*time.Millisecond)
}

func TestApplication_RunStopsOnCancel(t *testing.T) {
	app := newTestApp(t, testConfig(t, testutil.WriteSampleWorkbook(t)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewSource(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	cfg := config.Default()
	cfg.Data.File = "/srv/data.xlsx"
	src, err := NewSource(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", src.Name())
	assert.Equal(t, "/srv/data.xlsx", src.Location())

	cfg.Data.Source = "postgres"
	_, err = NewSource(context.Background(), cfg, logger)
	assert.ErrorContains(t, err, `unsupported data source "postgres"`)
}

func TestNewSummarizer(t *testing.T) {
	cfg := config.Default()
	cfg.Dashboard.Title = "Sentiment"
	cfg.Dashboard.TopN = 3
	cfg.Dashboard.HistogramBins = 10

	got := NewSummarizer(cfg, nil).Config()
	assert.Equal(t, dataprocessing.SummarizerConfig{Title: "Sentiment", TopN: 3, Bins: 10}, got)
}
