// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/guest-list/internal/config"
	"github.com/Shivanand-hulikatti/guest-list/internal/database"
	"github.com/Shivanand-hulikatti/guest-list/internal/handler"
	"github.com/Shivanand-hulikatti/guest-list/internal/query"
	"github.com/Shivanand-hulikatti/guest-list/internal/repository"
	"github.com/Shivanand-hulikatti/guest-list/internal/seed"
	"github.com/Shivanand-hulikatti/guest-list/internal/service"
)

func main() {
	configPath := flag.String("config", os.Getenv("GUESTLIST_CONFIG"), "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.Logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Open the store ─────────────────────────────────────────────────
	repo, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Error("store setup failed", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// ── 2. Watch connectivity ─────────────────────────────────────────────
	monitor := database.NewMonitor(repo, database.MonitorOptions{
		Interval: cfg.Store.PingInterval,
		Timeout:  cfg.Store.PingTimeout,
		Logger:   logger,
	})
	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	monitorDone := make(chan struct{})
	go func() {
		monitor.Run(monitorCtx)
		close(monitorDone)
	}()

	// ── 3. Optional reset, off the startup path ───────────────────────────
	if cfg.Seed.Reset {
		go resetGuests(ctx, monitor, repo, logger)
	}

	// ── 4. Wire up layers ─────────────────────────────────────────────────
	translator := query.NewTranslator(cfg.PatternMode(), cfg.Query.NameMaxLength)
	guestSvc := service.NewGuestService(repo, translator)
	guestHandler := handler.NewGuestHandler(guestSvc)

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler.NewRouter(guestHandler, monitor),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", fmt.Sprintf("http://localhost:%d", cfg.Server.Port),
			"driver", cfg.Store.Driver, "name_match", string(translator.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Block until SIGINT/SIGTERM or a listener failure.
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		logger.Error("server error", "error", err)
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	stopMonitor()
	<-monitorDone
	logger.Info("server stopped")
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.GuestRepository, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		repo, err := repository.NewSQLiteGuestRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return repo, nil
	default:
		pool, err := database.NewPool(ctx, cfg.Store.URL)
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresGuestRepository(pool), nil
	}
}

// resetGuests waits for the store and replaces its contents with the
// embedded fixture. Failures are logged; the server keeps running.
func resetGuests(ctx context.Context, monitor *database.Monitor, repo repository.GuestRepository, logger *slog.Logger) {
	logger.Info("resetting database")
	if err := monitor.WaitReady(ctx); err != nil {
		logger.Warn("reset abandoned before the store was ready", "error", err)
		return
	}

	guests, err := seed.Fixture()
	if err != nil {
		logger.Error("reset failed", "error", err)
		return
	}
	res, err := seed.NewLoader(repo, guests).Reset(ctx)
	if err != nil {
		logger.Error("reset failed", "error", err)
		return
	}
	logger.Info("reset complete", "deleted", res.Deleted, "inserted", res.Inserted, "failed", res.Failed)
}
