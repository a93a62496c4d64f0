package main

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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/akaza138/sktexcot-accounting-test/internal/config"
	"github.com/akaza138/sktexcot-accounting-test/internal/database"
	appHttp "github.com/akaza138/sktexcot-accounting-test/internal/http"
	exportHandler "github.com/akaza138/sktexcot-accounting-test/internal/http/export"
	ledgerHandler "github.com/akaza138/sktexcot-accounting-test/internal/http/ledger"
	txHandler "github.com/akaza138/sktexcot-accounting-test/internal/http/transaction"
	"github.com/akaza138/sktexcot-accounting-test/internal/platform"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := platform.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	svc, err := platform.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	version, dirty, err := database.Migrate(svc.DB)
	if err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	logger.Info("schema ready", "version", version, "dirty", dirty)

	var (
		transactionH = txHandler.NewHandler(svc.Transactions)
		ledgerH      = ledgerHandler.NewHandler(svc.Projector)
		exportH      = exportHandler.NewHandler(svc.Export)
	)

	router := appHttp.New(appHttp.Options{
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		JWTSecret:         cfg.Auth.JWTSecret,
		Timeout:           cfg.Server.Timeout,
		Production:        cfg.Production(),
	}, transactionH, ledgerH, exportH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.App.Env)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
