package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sentimentpulse/internal/config"
	"sentimentpulse/internal/dataprocessing"
	apierrors "sentimentpulse/internal/errors"
	"sentimentpulse/internal/files"
	"sentimentpulse/internal/infrastructure"
	customMiddleware "sentimentpulse/internal/middleware"
	"sentimentpulse/internal/services"
	handlers "sentimentpulse/internal/transport/http"
	ws "sentimentpulse/internal/websocket"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DashboardMetrics
	WebSocketHub  *ws.Hub
	Services      *ServiceContainer

	source       dataprocessing.Source
	errorHandler *apierrors.ErrorHandler
	listener     net.Listener
	serverErr    chan error
	stopWatch    context.CancelFunc
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dataset *services.DatasetService
	Health  *services.HealthService
}

// Option customises an Application during construction
type Option func(*Application)

// WithSource replaces the configured data source
func WithSource(source dataprocessing.Source) Option {
	return func(a *Application) {
		a.source = source
	}
}

// NewApplication loads configuration from the environment and config file
// and wires the application.
func NewApplication(opts ...Option) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger, opts...)
}

// New creates a new application instance with dependency injection
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("data_source", cfg.Data.Source))

	paths := config.PathsFromConfig(cfg)
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateDashboardMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		errorHandler:  apierrors.NewErrorHandler(logger, false),
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.createServer()

	return app, nil
}

// NewSource builds the data source selected by cfg.Data.Source
func NewSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (dataprocessing.Source, error) {
	switch cfg.Data.Source {
	case config.SourceXLSX:
		return dataprocessing.NewWorkbookSource(cfg.Data.File, cfg.Data.Sheet), nil
	case config.SourceSheets:
		fetcher, err := dataprocessing.NewGoogleSheetsFetcher(ctx, cfg.Sheets.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets client: %w", err)
		}
		return dataprocessing.NewSheetsSource(fetcher, cfg.Sheets.SpreadsheetID, cfg.Data.Sheet, cfg.Sheets.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unsupported data source %q", cfg.Data.Source)
	}
}

// NewSummarizer maps the dashboard section of cfg
func NewSummarizer(cfg *config.Config, logger *slog.Logger) *dataprocessing.Summarizer {
	return dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{
		Title: cfg.Dashboard.Title,
		TopN:  cfg.Dashboard.TopN,
		Bins:  cfg.Dashboard.HistogramBins,
	})
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	if a.source == nil {
		source, err := NewSource(context.Background(), a.Config, a.Logger)
		if err != nil {
			return err
		}
		a.source = source
	}

	wsMetrics, err := ws.NewOTelMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	hub := ws.NewHub(a.Logger, wsMetrics)
	hub.Start()
	a.WebSocketHub = hub

	dataset := services.NewDatasetService(a.source, NewSummarizer(a.Config, a.Logger), hub, a.Metrics, a.Logger)
	health := services.NewHealthService(config.AppVersion, dataset, hub, a.Logger)

	a.Services = &ServiceContainer{
		Dataset: dataset,
		Health:  health,
	}
	return nil
}

// setupRouter configures middleware and routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// Only middleware that leaves the ResponseWriter unwrapped may run before /ws
	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)

	wsHandler := ws.NewHandler(a.WebSocketHub, ws.HandlerConfig{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		AllowedOrigins:  a.Config.Security.AllowedOrigins,
	}, a.Logger)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle(handlers.DefaultWebSocketPath, wsHandler)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	validator := customMiddleware.NewValidationMiddleware(a.Logger)
	dashboard, err := handlers.NewDashboardHandler(a.Services.Dataset, validator, handlers.DefaultDashboardConfig(), a.Logger, a.errorHandler)
	if err != nil {
		return err
	}
	dataHandler := handlers.NewDataHandler(a.Services.Dataset, validator, a.Logger, a.errorHandler)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.Group(func(r chi.Router) {
		// Ordering: RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.errorHandler))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		if a.Config.Server.RequestTimeout > 0 {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		}
		r.Use(middleware.Compress(5))

		r.Method(http.MethodGet, "/", dashboard)

		r.Route("/api", func(r chi.Router) {
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/version", healthHandler.Version)
			r.Mount("/data", dataHandler.Routes())
		})
	})

	a.Router = r
	return nil
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			customMiddleware.RequestIDHeader,
		},
		ExposedHeaders: []string{
			customMiddleware.RequestIDHeader,
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start binds the listener, serves in the background and warms the
// dataset cache.
func (a *Application) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln
	a.serverErr = make(chan error, 1)

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			a.serverErr <- err
		}
		close(a.serverErr)
	}()

	go a.warmCache(ctx)
	a.startWatcher(ctx)

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://%s", ln.Addr())),
		slog.String("data_location", a.source.Location()))
	return nil
}

// Addr reports the bound address once Start has returned
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

func (a *Application) warmCache(ctx context.Context) {
	if _, err := a.Services.Dataset.Dataset(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Dataset not available at startup",
			slog.String("message", services.UserMessage(err)))
	}
}

// startWatcher reloads the dataset when the workbook changes on disk
func (a *Application) startWatcher(ctx context.Context) {
	if a.Config.Data.Source != config.SourceXLSX || a.Config.Data.WatchInterval <= 0 {
		return
	}

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.stopWatch = cancel

	watcher := files.NewWatcher(a.Config.Data.File, a.Config.Data.WatchInterval, func(ctx context.Context) error {
		_, err := a.Services.Dataset.Reload(ctx)
		return err
	}, a.Logger)
	go watcher.Run(watchCtx)
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.stopWatch != nil {
		a.stopWatch()
	}
	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run serves until SIGINT, SIGTERM, ctx cancellation or a server error
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Received shutdown signal")
	case serveErr = <-a.serverErr:
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer cancel()
	return errors.Join(serveErr, a.Stop(stopCtx))
}
