// main is the entry point of the lingo-admin dashboard.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file (plus .env and env overrides)
//  2. Initialise the logger
//  3. Open the SQLite session store and run its migrations
//  4. Build the backend client, list-view registry and session manager
//  5. Register all HTTP routes behind CSRF protection
//  6. Start the HTTP server and the expired-session purge in goroutines
//  7. Block until an OS signal arrives, then shut down gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/lingo-admin --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/lingo-admin
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/lingo-admin/internal/auth"
	"github.com/aanand-mishra/lingo-admin/internal/backend"
	"github.com/aanand-mishra/lingo-admin/internal/config"
	"github.com/aanand-mishra/lingo-admin/internal/http/handlers"
	"github.com/aanand-mishra/lingo-admin/internal/http/render"
	"github.com/aanand-mishra/lingo-admin/internal/http/router"
	"github.com/aanand-mishra/lingo-admin/internal/listview"
	"github.com/aanand-mishra/lingo-admin/internal/resetflow"
	"github.com/aanand-mishra/lingo-admin/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Packages log through slog's default logger, so it is replaced here.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting lingo-admin",
		slog.String("env", cfg.Env),
		slog.String("backend", cfg.Backend.BaseURL),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// Only login sessions live here; every entity is owned by the backend.
	store, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	log.Info("storage initialised", slog.String("path", cfg.StoragePath))

	// ── 4. Services ───────────────────────────────────────────────────────
	api := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)

	views, err := listview.NewRegistry(cfg.Session.MaxViews)
	if err != nil {
		log.Error("failed to create view registry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	keys, err := auth.DeriveKeys(cfg.Session.Secret, cfg.IsProd())
	if err != nil {
		log.Error("failed to derive keys", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.Session.Secret == "" {
		log.Warn("session.secret is empty: sessions will not survive a restart")
	}

	manager := auth.NewManager(auth.Options{
		Storage:    store,
		Backend:    api,
		Views:      views,
		Keys:       keys,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.IsProd(),
	})

	renderer, err := render.New(manager.Store(), manager.Unauthorized)
	if err != nil {
		log.Error("failed to parse templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── 5. Register HTTP Routes ───────────────────────────────────────────
	deps := handlers.Deps{
		API:        api,
		Auth:       manager,
		Views:      views,
		Render:     renderer,
		Pagination: cfg.Pagination,
	}
	mux := router.Routes(deps, resetflow.New(api))

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router.Protect(mux, keys.CSRF, cfg.IsProd()),

		ReadTimeout: 15 * time.Second,
		// Long enough for a backend call at its own timeout plus the refetch.
		WriteTimeout: 2*cfg.Backend.Timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 6. Start Background Work ──────────────────────────────────────────
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go manager.PurgeExpired(ctx, cfg.Session.CleanupInterval)

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
