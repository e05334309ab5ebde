package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ordersdash/internal/config"
	"ordersdash/internal/dataprocessing"
	apperrors "ordersdash/internal/errors"
	"ordersdash/internal/files"
	"ordersdash/internal/infrastructure"
	customMiddleware "ordersdash/internal/middleware"
	"ordersdash/internal/services"
	handlers "ordersdash/internal/transport/http"
	"ordersdash/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Reports *services.ReportService
	Health  *services.HealthService
	Cache   *services.SourceCache
	Metrics *infrastructure.PipelineMetrics
}

// NewApplication wires configuration, telemetry, services and routes
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
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
	metrics, err := infrastructure.NewPipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	cache, err := services.NewSourceCache(a.Config.Sources.CacheEntries, metrics, a.Logger)
	if err != nil {
		return err
	}

	pipeline := dataprocessing.NewPipeline(a.Logger,
		dataprocessing.WithTracer(a.OTelProviders.Tracer),
		dataprocessing.WithRecorder(metrics))

	reports, err := services.NewReportService(a.Config, pipeline, cache, a.Logger)
	if err != nil {
		return err
	}

	health := services.NewHealthService(
		contracts.Version,
		contracts.BuildTime,
		contracts.GitCommit,
		a.Config.Sources,
		reports,
		cache,
		a.Logger,
	)

	a.Services = &ServiceContainer{
		Reports: reports,
		Health:  health,
		Cache:   cache,
		Metrics: metrics,
	}
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Middleware order: RequestID, RealIP, OTel, logger, recoverer, security headers, rate limit.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger, a.Config.Telemetry.Environment == "development")

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return err
	}
	r.Use(otelMiddleware.Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apperrors.RecoveryMiddleware(errorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(middleware.Compress(5, "application/json", "text/csv"))

	if rl := a.Config.Server.RateLimit; rl.Enabled {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r, errorHandler)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apperrors.ErrorHandler) {
	validator := customMiddleware.NewValidator(a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/version", healthHandler.Version)

		sourcesHandler := handlers.NewSourcesHandler(
			files.NewDiscovery("", a.Logger),
			filepath.Dir(a.Config.Sources.PrimaryPath),
			errorHandler,
			a.Logger,
		)
		r.Get("/sources", sourcesHandler.List)

		reportHandler := handlers.NewReportHandler(a.Services.Reports, validator, errorHandler, a.Logger)
		r.With(customMiddleware.MaxBodySize(a.Config.Server.MaxUploadBytes)).
			Mount("/datasets", reportHandler.Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           a.Router,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		IdleTimeout:       a.Config.Server.IdleTimeout,
	}
}

// Run serves HTTP until ctx is cancelled or the server fails, then shuts down
func (a *Application) Run(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("address", a.Server.Addr),
		slog.String("primary_source", a.Config.Sources.PrimaryPath),
		slog.String("secondary_source", a.Config.Sources.SecondaryPath),
		slog.String("level", a.Config.Logging.Level))

	a.logReadiness(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received shutdown signal")
	case serveErr = <-errCh:
		if serveErr != nil {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", serveErr.Error()))
		}
	}

	if err := a.Stop(context.Background()); err != nil {
		return errors.Join(serveErr, err)
	}
	return serveErr
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
	a.Services.Cache.Purge()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// logReadiness reports missing default sources at startup. The server still
// starts: uploads do not need them.
func (a *Application) logReadiness(ctx context.Context) {
	status := a.Services.Health.ReadinessCheck(ctx)
	if status.Status == "ready" {
		a.Logger.InfoContext(ctx, "Startup health check passed")
	}
}
