// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/archview/internal/api"
	"github.com/starford/archview/internal/catalog"
	"github.com/starford/archview/internal/graph"
	"github.com/starford/archview/internal/mcpserver"
	"github.com/starford/archview/internal/metrics"
	"github.com/starford/archview/internal/sse"
	"github.com/starford/archview/internal/storage"
	"github.com/starford/archview/internal/viewer"
)

// components are the long-lived pieces shared by the HTTP and MCP entry points.
type components struct {
	logger  *slog.Logger
	store   *storage.FS
	db      *catalog.DB
	metrics *metrics.Registry
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup initialises logging, the diagram library and its catalog.
// The caller owns closing db.
func (a *application) setup() (*components, error) {
	cfg := a.config

	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("diagrams_path", cfg.Diagrams.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Diagrams.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create diagrams dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Diagrams.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := catalog.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	if err := catalog.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	c := &components{logger: logger, store: store, db: db, metrics: metrics.NewRegistry()}
	c.refreshDiagramGauge()
	return c, nil
}

func (c *components) refreshDiagramGauge() {
	_, total, err := c.db.ListDiagrams(1, 0, "")
	if err != nil {
		c.logger.Warn("count diagrams failed", slog.String("error", err.Error()))
		return
	}
	c.metrics.CatalogDiagrams.Set(float64(total))
}

func (c *components) viewerService(cfg *Config, opts ...viewer.Option) *viewer.Service {
	opts = append([]viewer.Option{
		viewer.WithMetrics(c.metrics),
		viewer.WithLogger(c.logger),
		viewer.WithNodeBox(graph.Box{Width: cfg.Viewer.NodeWidth, Height: cfg.Viewer.NodeHeight}),
	}, opts...)
	return viewer.NewService(c.store, c.db, opts...)
}

// Run starts the HTTP server and library watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	c, err := app.setup()
	if err != nil {
		return err
	}
	defer c.db.Close()
	logger := c.logger

	broker := sse.NewBroker(cfg.Viewer.EventThrottle)
	defer broker.Close()

	svc := c.viewerService(cfg, viewer.WithPublisher(broker))
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware(c.metrics))

	// Health and metrics endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.db.Ping(pingCtx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", c.metrics.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the catalog in step with the library and fan changes out over SSE.
	g.Go(func() error {
		err := catalog.Watch(gCtx, c.db, c.store, c.store.Root(), logger, func(kind, path string) {
			c.metrics.CatalogEvents.WithLabelValues(kind).Inc()
			c.refreshDiagramGauge()
			broker.PublishDiagramEvent(kind, path)
		})
		if err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the diagram library over MCP on stdin/stdout. Logs go to
// stderr unless WithLogOutput says otherwise.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}

	c, err := app.setup()
	if err != nil {
		return err
	}
	defer c.db.Close()

	srv := mcpserver.New(c.viewerService(app.config), app.version)
	c.logger.Info("MCP server starting on stdio")
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}
