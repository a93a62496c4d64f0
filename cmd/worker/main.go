package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/akaza138/sktexcot-accounting-test/internal/audit"
	"github.com/akaza138/sktexcot-accounting-test/internal/config"
	"github.com/akaza138/sktexcot-accounting-test/internal/database"
	"github.com/akaza138/sktexcot-accounting-test/internal/platform"
)

var errRedisRequired = errors.New("worker requires REDIS_ADDR")

// The worker drains queued audit events into audit_logs. It is only needed
// when the API runs with AUDIT_ASYNC.
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

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.RedisEnabled() {
		return errRedisRequired
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	srv := asynq.NewServer(platform.RedisOpt(cfg), asynq.Config{
		Concurrency: 4,
		Queues:      map[string]int{audit.QueueName: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.ErrorContext(ctx, "audit task failed", "type", task.Type(), "error", err)
		}),
	})

	logger.Info("starting audit worker", "queue", audit.QueueName)

	return srv.Run(newMux(audit.NewWriter(db)))
}

func newMux(sink audit.Sink) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(audit.TaskTypeRecord, audit.HandleRecordTask(sink))

	return mux
}
