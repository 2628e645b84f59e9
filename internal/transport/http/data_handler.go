package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"sentimentpulse/internal/dataprocessing"
	apierrors "sentimentpulse/internal/errors"
	"sentimentpulse/internal/exporter"
	mw "sentimentpulse/internal/middleware"
	"sentimentpulse/internal/services"
	apiv1 "sentimentpulse/pkg/contracts/api/v1"
)

// DataHandler serves the dashboard aggregates as JSON with RFC 7807 errors
type DataHandler struct {
	service      DatasetServiceInterface
	validator    *mw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler
func NewDataHandler(service DatasetServiceInterface, validator *mw.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = mw.NewValidationMiddleware(logger)
	}
	return &DataHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/summary", h.GetSummary)
		r.Get("/snapshot", h.GetSnapshot)
		r.Get("/sectors", h.GetSectors)
		r.Get("/histogram", h.GetHistogram)
		r.Get("/companies", h.GetCompanies)
		r.Get("/company/{company}/trend", h.GetCompanyTrend)
		r.Post("/reload", h.Reload)
	})

	r.Get("/download/{format}", h.Download)

	return r
}

// GetSummary handles GET /api/data/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching summary")

	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, r, "failed to get summary", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
		"count":  len(summary.TopPositive) + len(summary.TopNegative) + len(summary.SectorAverages),
	})
}

// GetSnapshot handles GET /api/data/snapshot
func (h *DataHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching snapshot")

	rows, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, "failed to get snapshot", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetSectors handles GET /api/data/sectors
func (h *DataHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching sector performance")

	stats, err := h.service.SectorPerformance(r.Context())
	if err != nil {
		h.fail(w, r, "failed to get sector performance", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stats,
		"count":  len(stats),
	})
}

// GetHistogram handles GET /api/data/histogram?bins=
func (h *DataHandler) GetHistogram(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching histogram")

	var req apiv1.HistogramRequest
	if raw := r.URL.Query().Get("bins"); raw != "" {
		bins, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("bins", "bins must be a whole number"))
			return
		}
		req.Bins = bins
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	bins, err := h.service.Histogram(r.Context(), req.Bins)
	if err != nil {
		h.fail(w, r, "failed to get histogram", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   bins,
		"count":  len(bins),
	})
}

// GetCompanies handles GET /api/data/companies?sector=
func (h *DataHandler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching companies")

	req := apiv1.CompaniesRequest{Sector: r.URL.Query().Get("sector")}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	companies, err := h.service.Companies(r.Context(), req.Sector)
	if err != nil {
		h.fail(w, r, "failed to get companies", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   companies,
		"count":  len(companies),
	})
}

// GetCompanyTrend handles GET /api/data/company/{company}/trend?compare=
func (h *DataHandler) GetCompanyTrend(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "fetching company trend")

	req := apiv1.TrendRequest{
		Company: chi.URLParam(r, "company"),
		Compare: r.URL.Query().Get("compare"),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	trend, err := h.service.CompanyTrend(r.Context(), req.Company, req.Compare)
	if err != nil {
		h.fail(w, r, "failed to get company trend", err)
		return
	}

	count := len(trend.Primary.Points)
	if trend.Compare != nil {
		count += len(trend.Compare.Points)
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   trend,
		"count":  count,
	})
}

// Download handles GET /api/data/download/{format}
func (h *DataHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "downloading snapshot")

	req := apiv1.DownloadRequest{Format: chi.URLParam(r, "format")}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// buffered so a failed export can still produce a problem response
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, req.Format); err != nil {
		h.fail(w, r, "failed to export snapshot", err)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType(req.Format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.SnapshotFilename(req.Format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write download",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// Reload handles POST /api/data/reload
func (h *DataHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.logRequest(r, "reloading dataset")

	if _, err := h.service.Reload(r.Context()); err != nil {
		h.fail(w, r, "failed to reload dataset", err)
		return
	}

	status := h.service.Status()
	h.logger.InfoContext(r.Context(), "dataset reloaded",
		slog.Int("observations", status.Observations),
		slog.Int("companies", status.Companies),
	)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   status,
		"count":  status.Observations,
	})
}

func (h *DataHandler) logRequest(r *http.Request, msg string) {
	h.logger.InfoContext(r.Context(), msg,
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
}

func (h *DataHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, MapServiceError(err))
}

// MapServiceError converts dataset service errors to API errors
func MapServiceError(err error) error {
	var loadErr *services.DataLoadError
	var notFound *services.CompanyNotFoundError

	switch {
	case errors.Is(err, services.ErrDataFileNotFound):
		return apierrors.DataUnavailableError(true, services.UserMessage(err))
	case errors.As(err, &loadErr) && isParseFailure(loadErr.Err):
		return parsingError(loadErr)
	case errors.As(err, &loadErr):
		return apierrors.DataUnavailableError(false, loadErr.Message())
	case errors.As(err, &notFound):
		return apierrors.CompanyNotFoundError(notFound.Company)
	case errors.Is(err, services.ErrCompanyNotFound):
		return apierrors.ErrCompanyNotFound
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.ErrUnsupportedFormat
	default:
		return err
	}
}

// isParseFailure reports a workbook that was read but does not hold the
// expected table
func isParseFailure(err error) bool {
	return errors.Is(err, dataprocessing.ErrInvalidRow) ||
		errors.Is(err, dataprocessing.ErrMissingColumn) ||
		errors.Is(err, dataprocessing.ErrSheetNotFound) ||
		errors.Is(err, dataprocessing.ErrEmptySheet)
}

func parsingError(loadErr *services.DataLoadError) *apierrors.AppError {
	appErr := apierrors.NewParsingError(loadErr.Message(), loadErr).
		WithContext("source", loadErr.Source).
		WithContext("location", loadErr.Location)

	var rowErr *dataprocessing.RowError
	if errors.As(loadErr.Err, &rowErr) {
		appErr.WithContext("row", rowErr.Row)
		if rowErr.Column != "" {
			appErr.WithContext("column", rowErr.Column)
		}
	}
	return appErr
}
