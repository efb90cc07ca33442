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

	"github.com/starford/algonotes/internal/api"
	"github.com/starford/algonotes/internal/attachments"
	"github.com/starford/algonotes/internal/index"
	"github.com/starford/algonotes/internal/mcpserver"
	"github.com/starford/algonotes/internal/postservice"
	"github.com/starford/algonotes/internal/render"
	"github.com/starford/algonotes/internal/scheduler"
	"github.com/starford/algonotes/internal/sse"
	"github.com/starford/algonotes/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// backend is the content side shared by the HTTP server and the MCP server.
type backend struct {
	store  storage.Provider
	db     *index.DB
	attach *attachments.Store
	svc    *postservice.Service
}

func openBackend(cfg *Config, logger *slog.Logger, opts ...postservice.Option) (*backend, error) {
	if err := os.MkdirAll(cfg.Content.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	renderer := render.New(render.Options{
		UnsafeHTML: cfg.Render.UnsafeHTML,
		Sanitize:   cfg.Render.Sanitize,
	})
	svc := postservice.NewService(store, db, renderer, opts...)

	if err := svc.Resync(logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &backend{
		store:  store,
		db:     db,
		attach: attachments.New(cfg.Content.AttachmentsPath()),
		svc:    svc,
	}, nil
}

// newHTTPHandler builds the root router: probes, the API under /api and
// attachment files under /attachments.
func newHTTPHandler(cfg *Config, b *backend, events http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := b.db.AllChecksums(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(b.svc, api.RouterOptions{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		Events:      events,
		Attachments: b.attach,
		CORSOrigins: cfg.App.HTTP.CORSOrigins,
	}))

	r.Get("/attachments/{filename}", api.NewAttachmentHandler(b.attach).ServeFile)

	return r
}

// Run starts the HTTP server with the given options and blocks until ctx
// is cancelled or a termination signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("resync_schedule", cfg.Index.ResyncSchedule),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(cfg.Index.EventThrottle, sse.WithHeartbeat(30*time.Second))

	b, err := openBackend(cfg, logger, postservice.WithNotifier(broker.PublishPostEvent))
	if err != nil {
		broker.Close()
		return err
	}
	defer b.db.Close()

	sched := scheduler.New(logger)
	if cfg.Index.ResyncSchedule != "" {
		if err := sched.Add("resync", cfg.Index.ResyncSchedule, func() error {
			return b.svc.Resync(logger)
		}); err != nil {
			broker.Close()
			return err
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(cfg, b, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := index.Watch(gCtx, b.db, b.store, logger, broker.PublishPostEvent); err != nil {
			logger.Warn("file watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		return sched.Run(gCtx)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		// Event streams never finish on their own.
		broker.Close()

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

// errShutdown cancels the group context so the watcher and the scheduler
// stop after a signal.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	b, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer b.db.Close()

	logger.Info("MCP server starting", slog.String("content_path", cfg.Content.Path))
	return mcpserver.New(b.svc, b.attach, app.version).ServeStdio()
}
