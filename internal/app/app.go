package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"ordenescli/internal/config"
	"ordenescli/internal/errors"
	"ordenescli/internal/infrastructure"
	customMiddleware "ordenescli/internal/middleware"
	"ordenescli/internal/services"
	handlers "ordenescli/internal/transport/http"
	ws "ordenescli/internal/websocket"
	"ordenescli/pkg/contracts"
)

const AppName = "Ordenes Reporter"

// janitorInterval is how often expired datasets are pruned from memory.
const janitorInterval = 10 * time.Minute

// Application wires configuration, services, transport and background
// workers into a runnable server.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Hub           *ws.Hub
	ReportService *services.ReportService
	HealthService *services.HealthService
	Metrics       *infrastructure.MetricsProviders
	Logger        *slog.Logger
}

// NewApplication loads configuration and assembles the full dependency
// graph. Nothing is listening yet; call Run or Start.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	metrics, err := infrastructure.InitializeMetrics(context.Background(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	hub := ws.NewHub(logger, metrics)
	reportService := services.NewReportService(cfg.Upload, logger, hub, metrics)
	healthService := services.NewHealthService(contracts.Version, contracts.BuildTime, reportService, hub, logger)

	app := &Application{
		Config:        cfg,
		Hub:           hub,
		ReportService: reportService,
		HealthService: healthService,
		Metrics:       metrics,
		Logger:        logger,
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware first so the WebSocket upgrade is never wrapped
	// by a ResponseWriter it cannot hijack.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	wsHandler := handlers.NewWebSocketHandler(a.Hub, a.Config.Security.AllowedOrigins, a.Logger)
	r.Handle("/ws", wsHandler)

	// Prometheus scrape endpoint stays outside the full middleware chain.
	if a.Metrics != nil && a.Metrics.Handler != nil {
		r.Handle("/metrics", a.Metrics.Handler)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.StripSlashes)
		r.Use(customMiddleware.Compress(5))

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.corsConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		if a.Metrics != nil {
			r.Use(customMiddleware.NewMetricsMiddleware(a.Metrics).Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		errorHandler := errors.NewErrorHandler(a.Logger, false)
		reportHandler := handlers.NewReportHandler(
			a.ReportService,
			a.Logger,
			errorHandler,
			a.Config.Upload.MaxSizeBytes,
		)
		r.Mount("/datasets", reportHandler.Routes())

		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)
	})
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}

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

// Start brings up the hub, the janitor and the HTTP listener. It returns
// once the listener goroutine is spawned; failures cancel ctx via the
// errgroup in Run.
func (a *Application) Start(ctx context.Context) {
	a.Hub.Start()
	go a.ReportService.StartJanitor(ctx, janitorInterval)

	a.Logger.InfoContext(ctx, "server listening",
		slog.String("address", a.Server.Addr),
		slog.Int("port", a.Config.Server.Port))
}

// Stop shuts the server and background workers down gracefully.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		firstErr = fmt.Errorf("server shutdown: %w", err)
	}

	a.Hub.Stop()

	if a.Metrics != nil {
		if err := a.Metrics.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "metrics shutdown failed",
				slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "log file close failed",
			slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return firstErr
}

// Run serves until an interrupt or a listener failure, then shuts down
// gracefully.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	a.Start(gctx)

	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}
