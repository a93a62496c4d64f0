package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/akaza138/sktexcot-accounting-test/internal/config"
	"github.com/akaza138/sktexcot-accounting-test/internal/platform"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operate the ledger from the command line",
	Long: `ledgerctl runs schema migrations and prints counterparty statements
and the outstanding balance summary straight from the database.

Configuration comes from the same environment variables as the API
(DB_HOST, DB_NAME, REDIS_ADDR, ...). A .env file in the working
directory is loaded first when present.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		c, err := config.Load()
		if err != nil {
			return err
		}

		cfg = c
		logger = platform.NewLogger(c)

		return nil
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
