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
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"sellerpulse/internal/config"
	"sellerpulse/internal/dataprocessing"
	apierrors "sellerpulse/internal/errors"
	"sellerpulse/internal/files"
	"sellerpulse/internal/infrastructure"
	customMiddleware "sellerpulse/internal/middleware"
	"sellerpulse/internal/services"
	handlers "sellerpulse/internal/transport/http"
	"sellerpulse/pkg/contracts"
)

// AppName is logged at startup
const AppName = "SellerPulse - Order Payments Summary"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Services      *ServiceContainer
	ErrorHandler  *apierrors.ErrorHandler

	listener net.Listener
	serveErr chan error
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Store   files.Store
	Report  *services.ReportService
	Health  *services.HealthService
	Metrics *infrastructure.ReportMetrics
}

// NewApplication loads configuration and logging, then wires the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithConfig(cfg, logger, infrastructure.DefaultOTelConfig())
}

// NewApplicationWithConfig wires the application from an already loaded
// configuration.
func NewApplicationWithConfig(cfg *config.Config, logger *slog.Logger, otelCfg *infrastructure.OTelConfig) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	if err := cfg.Paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
		serveErr:      make(chan error, 1),
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

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateReportMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create report metrics: %w", err)
	}

	store, err := files.NewDirStore(a.Config.Paths.UploadsDir, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open upload store: %w", err)
	}

	registry, err := services.BuildSchemaRegistry(a.Config.Report.Schemas)
	if err != nil {
		return err
	}

	pipeline := dataprocessing.NewPipeline(a.Logger, registry)

	a.Services = &ServiceContainer{
		Store:   store,
		Report:  services.NewReportService(store, pipeline, a.Config.Report, metrics, a.Logger),
		Health:  services.NewHealthService(contracts.Version, contracts.BuildTime, store, a.Logger),
		Metrics: metrics,
	}

	a.Logger.Info("Services initialized",
		slog.String("uploads_dir", a.Config.Paths.UploadsDir),
		slog.Any("schemas", registry.Versions()),
		slog.String("default_mode", a.Config.Report.Mode))
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Middleware order: RequestID → RealIP → OTel → Logger → Recoverer → Timeout.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return err
	}
	r.Use(otelMiddleware.Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Scrapes stay outside the rate limit and request timeout
	handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP).Routes(r)

	r.Group(func(r chi.Router) {
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.ErrorHandler,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

		a.setupAPIRoutes(r)
	})

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	reportHandler := handlers.NewReportHandler(
		a.Services.Report,
		a.Config.Report.MaxUploadBytes,
		a.Logger,
		a.ErrorHandler,
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		// Both only act on state-changing requests, which are uploads
		r.Use(customMiddleware.AuditLog(a.Logger))
		r.Use(customMiddleware.ContentTypeValidator(a.ErrorHandler, "multipart/form-data"))

		healthHandler.Routes(r)
		reportHandler.Routes(r)
	})
}

// getCORSConfig builds the CORS policy from the security configuration
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	origins := a.Config.Security.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)}
	}

	a.Logger.Debug("CORS configured", slog.Any("allowed_origins", origins))
	return customMiddleware.CORSConfig{
		AllowedOrigins: origins,
		Logger:         a.Logger,
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

// Addr returns the bound address once Start has returned
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start binds the listener and serves in the background. A serve failure
// cancels the application context through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	go func() {
		err := a.Server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			a.serveErr <- err
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", a.Addr()),
		slog.String("uploads_dir", a.Config.Paths.UploadsDir),
		slog.String("level", a.Config.Logging.Level))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or until the server fails.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer infrastructure.CloseLogFile()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()

	var serveErr error
	select {
	case serveErr = <-a.serveErr:
	default:
		a.Logger.Info("Received interrupt signal")
	}

	if err := a.Stop(context.Background()); err != nil {
		return err
	}
	return serveErr
}

// performStartupHealthCheck verifies the data directories are writable
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	directories := map[string]string{
		"Data":    a.Config.Paths.DataDir,
		"Uploads": a.Config.Paths.UploadsDir,
		"Reports": a.Config.Paths.ReportsDir,
		"Logs":    a.Config.Paths.LogsDir,
	}

	for name, dir := range directories {
		if !config.FileExists(dir) {
			warnings = append(warnings, fmt.Sprintf("%s directory missing: %s", name, dir))
			continue
		}
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
			continue
		}
		os.Remove(testFile)
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.DebugContext(ctx, "Startup health check passed")
	return nil
}
