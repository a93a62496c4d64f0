package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akaza138/sktexcot-accounting-test/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := database.New(cmd.Context(), cfg.ConnectionString())
		if err != nil {
			return err
		}
		defer db.Close()

		version, dirty, err := database.Migrate(db)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (dirty=%t)\n", version, dirty)

		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last N migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		if steps <= 0 {
			return fmt.Errorf("--steps must be positive, got %d", steps)
		}

		db, err := database.New(cmd.Context(), cfg.ConnectionString())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Rollback(db, steps); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)

		return nil
	},
}

func init() {
	migrateDownCmd.Flags().Int("steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}
