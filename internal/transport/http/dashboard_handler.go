package http

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"sentimentpulse/internal/charts"
	apierrors "sentimentpulse/internal/errors"
	mw "sentimentpulse/internal/middleware"
	"sentimentpulse/internal/services"
	apiv1 "sentimentpulse/pkg/contracts/api/v1"
	"sentimentpulse/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Dashboard page defaults
const (
	DefaultSubtitle      = "Analysis of Corporate Earnings Calls & Reports"
	DefaultChartScript   = mw.ChartCDN + "/npm/echarts@5.5.0/dist/echarts.min.js"
	DefaultWebSocketPath = "/ws"
)

// DashboardConfig configures the dashboard page
type DashboardConfig struct {
	Subtitle      string
	ChartScript   string
	WebSocketPath string
	DownloadPath  string
}

// DefaultDashboardConfig returns the standard page settings
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		Subtitle:      DefaultSubtitle,
		ChartScript:   DefaultChartScript,
		WebSocketPath: DefaultWebSocketPath,
		DownloadPath:  "/api/data/download",
	}
}

// DashboardHandler renders the dashboard page
type DashboardHandler struct {
	service      DatasetServiceInterface
	validator    *mw.ValidationMiddleware
	config       DashboardConfig
	tmpl         *template.Template
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

type chartBlock struct {
	ID     string
	Height int
	Option string
}

type dashboardPage struct {
	Title         string
	Subtitle      string
	ChartScript   string
	WebSocketPath string
	DownloadPath  string
	Error         string
	View          domain.DashboardView
	Treemap       *chartBlock
	Histogram     *chartBlock
	Trend         *chartBlock
}

var templateFuncs = template.FuncMap{
	"score": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"scoreClass": func(v float64) string {
		if v > 0 {
			return "score-pos"
		}
		return "score-neg"
	},
	"progress": progressWidth,
	"isCompare": func(sel domain.Selection, option string) bool {
		if option == domain.NoCompare {
			return !sel.HasCompare()
		}
		return sel.Compare == option
	},
}

// progressWidth maps a score in [-1, 1] to a bar width in percent
func progressWidth(v float64) string {
	pct := (v + 1) / 2 * 100
	return fmt.Sprintf("%.1f", math.Max(0, math.Min(100, pct)))
}

// NewDashboardHandler parses the embedded page template
func NewDashboardHandler(service DatasetServiceInterface, validator *mw.ValidationMiddleware, config DashboardConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*DashboardHandler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = mw.NewValidationMiddleware(logger)
	}
	defaults := DefaultDashboardConfig()
	if config.Subtitle == "" {
		config.Subtitle = defaults.Subtitle
	}
	if config.ChartScript == "" {
		config.ChartScript = defaults.ChartScript
	}
	if config.WebSocketPath == "" {
		config.WebSocketPath = defaults.WebSocketPath
	}
	if config.DownloadPath == "" {
		config.DownloadPath = defaults.DownloadPath
	}

	tmpl, err := template.New("dashboard.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	return &DashboardHandler{
		service:      service,
		validator:    validator,
		config:       config,
		tmpl:         tmpl,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}, nil
}

// ServeHTTP handles GET /?sector=&company=&compare=
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	req := apiv1.DashboardRequest{
		Sector:  query.Get("sector"),
		Company: query.Get("company"),
		Compare: query.Get("compare"),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.View(ctx, domain.Selection{
		Sector:  req.Sector,
		Company: req.Company,
		Compare: req.Compare,
	})
	if err != nil {
		h.renderLoadError(w, r, err)
		return
	}

	page := h.newPage(view.Title)
	page.View = view
	if page.Treemap, err = block(charts.SectorTreemap(view.Sectors)); err == nil {
		page.Histogram, err = block(charts.ScoreHistogram(view.Histogram))
	}
	if err == nil && view.DeepDive.Primary != nil {
		page.Trend, err = block(charts.TrendLine(*view.DeepDive.Primary, view.DeepDive.Compare))
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("failed to encode charts: %w", err))
		return
	}

	h.logger.DebugContext(ctx, "rendering dashboard",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("sector", view.DeepDive.Selection.Sector),
		slog.String("company", view.DeepDive.Selection.Company),
		slog.String("compare", view.DeepDive.Selection.Compare),
	)
	h.render(w, r, http.StatusOK, page)
}

// renderLoadError replaces the page with the error banner
func (h *DashboardHandler) renderLoadError(w http.ResponseWriter, r *http.Request, err error) {
	var loadErr *services.DataLoadError
	if !errors.As(err, &loadErr) {
		h.errorHandler.HandleError(w, r, MapServiceError(err))
		return
	}

	status := http.StatusInternalServerError
	if errors.Is(err, services.ErrDataFileNotFound) {
		status = http.StatusServiceUnavailable
	}

	h.logger.ErrorContext(r.Context(), "dashboard unavailable",
		slog.String("error", err.Error()),
		slog.Int("status", status),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page := h.newPage("")
	page.Error = loadErr.Message()
	h.render(w, r, status, page)
}

func (h *DashboardHandler) newPage(title string) dashboardPage {
	return dashboardPage{
		Title:         title,
		Subtitle:      h.config.Subtitle,
		ChartScript:   h.config.ChartScript,
		WebSocketPath: h.config.WebSocketPath,
		DownloadPath:  h.config.DownloadPath,
	}
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, status int, page dashboardPage) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, page); err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("failed to render dashboard: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func block(c charts.Chart) (*chartBlock, error) {
	option, err := c.JSON()
	if err != nil {
		return nil, err
	}
	return &chartBlock{ID: c.ID, Height: c.Height, Option: string(option)}, nil
}
