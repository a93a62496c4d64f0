// Package platform builds the shared runtime dependencies every binary needs
// from configuration.
package platform

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/akaza138/sktexcot-accounting-test/internal/audit"
	"github.com/akaza138/sktexcot-accounting-test/internal/config"
	counterpartystore "github.com/akaza138/sktexcot-accounting-test/internal/counterparty/store"
	"github.com/akaza138/sktexcot-accounting-test/internal/database"
	"github.com/akaza138/sktexcot-accounting-test/internal/export"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	ledgerstore "github.com/akaza138/sktexcot-accounting-test/internal/ledger/store"
	"github.com/akaza138/sktexcot-accounting-test/internal/lock"
	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
	txstore "github.com/akaza138/sktexcot-accounting-test/internal/transaction/store"
)

// NewLogger returns a JSON logger in production and a text logger otherwise.
func NewLogger(cfg *config.Config) *slog.Logger {
	if cfg.Production() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// RedisOpt is the asynq view of the configured Redis.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

// Services is the assembled domain layer.
type Services struct {
	DB           *sql.DB
	Transactions *transaction.Service
	Projector    *ledger.Projector
	Export       *export.Service

	closers []func() error
}

func (s *Services) Close() error {
	var first error

	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// Build connects to the database and Redis (when configured) and wires the
// recorder, the projector and the exporter on top of them.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	s := &Services{DB: db, closers: []func() error{db.Close}}

	var (
		counterparties = counterpartystore.New(db)
		txOpts         = []transaction.Option{
			transaction.WithInvoicePrefix(cfg.Ledger.InvoicePrefix),
			transaction.WithLogger(logger),
		}
		projOpts = []ledger.ProjectorOption{
			ledger.WithSummaryWorkers(cfg.Ledger.SummaryWorkers),
			ledger.WithProjectorLogger(logger),
		}
		sink audit.Sink = audit.NewWriter(db)
	)

	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, rdb.Close)

		if err := rdb.Ping(ctx).Err(); err != nil {
			s.Close()
			return nil, fmt.Errorf("pinging redis: %w", err)
		}

		cache := ledger.NewSummaryCache(rdb, cfg.Ledger.SummaryCacheTTL)

		txOpts = append(txOpts,
			transaction.WithLocker(lock.NewRedis(rdb, cfg.Ledger.LockTTL, cfg.Ledger.LockRetry)),
			transaction.WithInvalidator(cache),
		)
		projOpts = append(projOpts, ledger.WithSummaryCache(cache))

		if cfg.Audit.Async {
			client := asynq.NewClient(RedisOpt(cfg))
			s.closers = append(s.closers, client.Close)
			sink = audit.NewQueue(client)
		}
	}

	txOpts = append(txOpts, transaction.WithAudit(sink))

	s.Transactions = transaction.NewService(txstore.New(db), counterparties, txOpts...)
	s.Projector = ledger.NewProjector(ledgerstore.New(db), counterparties, projOpts...)
	s.Export = export.NewService(s.Projector, counterparties)

	logger.InfoContext(ctx, "services ready",
		"redis", cfg.RedisEnabled(),
		"audit_async", cfg.Audit.Async,
		"invoice_prefix", cfg.Ledger.InvoicePrefix,
	)

	return s, nil
}
