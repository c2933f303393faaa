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

	"github.com/starford/notebook/internal/api"
	"github.com/starford/notebook/internal/docstore"
	"github.com/starford/notebook/internal/mcpserver"
	"github.com/starford/notebook/internal/sse"
	pkgconfig "github.com/starford/notebook/pkg/config"
)

// Run starts the HTTP bridge with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := NewLogger(app.logOutput, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_directory", cfg.Notes.Directory),
		slog.Any("extensions", cfg.Notes.Extensions),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	nb, err := OpenNotebook(cfg, logger)
	if err != nil {
		return err
	}
	defer nb.Close()

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	apiRouter := api.NewRouter(nb.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !nb.Service.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"syncing"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount bridge routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Initial sync, then watch for changes with SSE callback.
	g.Go(func() error {
		n, err := nb.Sync(logger)
		if err != nil {
			logger.Warn("initial sync failed", slog.String("error", err.Error()))
		} else {
			broker.PublishReady(n)
		}
		w := docstore.NewWatcher(nb.DB, nb.Store, nb.Resolver, logger, broker.PublishNoteEvent)
		if err := w.Run(gCtx); err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Apply config file edits without a restart.
	if app.configPath != "" {
		g.Go(func() error {
			if err := watchConfig(gCtx, app.configPath, nb.Live, broker, logger); err != nil {
				logger.Warn("config hot reload disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
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

// errShutdown cancels the group so the watchers stop with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the notebook tools over stdio until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := NewLogger(app.logOutput, cfg.App.LogLevel)
	slog.SetDefault(logger)

	nb, err := OpenNotebook(cfg, logger)
	if err != nil {
		return err
	}
	defer nb.Close()

	if _, err := nb.Sync(logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		w := docstore.NewWatcher(nb.DB, nb.Store, nb.Resolver, logger, nil)
		if err := w.Run(gCtx); err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})
	if app.configPath != "" {
		g.Go(func() error {
			if err := watchConfig(gCtx, app.configPath, nb.Live, nil, logger); err != nil {
				logger.Warn("config hot reload disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	serveErr := mcpserver.New(nb.Service, app.version).ServeStdio()
	cancel()
	_ = g.Wait()
	return serveErr
}

// watchConfig swaps reloaded configuration into live. The notes directory
// the store and watcher were opened on does not move until restart.
func watchConfig(ctx context.Context, path string, live *LiveConfig, broker *sse.Broker, logger *slog.Logger) error {
	return pkgconfig.Watch(ctx, path, NewDefaultConfig,
		func(next *Config) {
			prev := live.Load()
			live.Store(next)
			logger.Info("Configuration reloaded",
				slog.String("notes_directory", next.Notes.Directory),
				slog.Any("extensions", next.Notes.Extensions),
				slog.Bool("autosave", next.Notes.EnableAutosave))
			if prev.Notes.Directory != next.Notes.Directory {
				logger.Warn("notes directory changed; restart to re-index",
					slog.String("old", prev.Notes.Directory),
					slog.String("new", next.Notes.Directory))
			}
			if broker != nil {
				broker.Publish(sse.Event{Type: sse.TypeConfigReloaded, Data: map[string]any{
					"notes_directory": next.Notes.Directory,
					"extensions":      next.Notes.Extensions,
				}})
			}
		},
		func(err error) {
			logger.Warn("config reload rejected", slog.String("error", err.Error()))
		},
	)
}
