// Package dbtest opens the Postgres database named by TEST_DATABASE_URL for
// store tests. Tests that call Open are skipped when it is unset.
package dbtest

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akaza138/sktexcot-accounting-test/internal/database"
)

const EnvURL = "TEST_DATABASE_URL"

// lockKey serialises store tests across packages, which go test runs in
// parallel against the same database.
const lockKey = 7_411_002

// Open migrates the database, empties every table and holds an advisory
// lock until the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s not set", EnvURL)
	}

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	db, err := database.New(ctx, url)
	require.NoError(t, err)

	conn, err := db.Conn(ctx)
	require.NoError(t, err)

	_, err = conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
		_ = conn.Close()
		_ = db.Close()
	})

	_, _, err = database.Migrate(db)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		TRUNCATE ledger, payments, sales, billing, audit_logs, invoice_sequences, companies
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)

	return db
}

// Company inserts a company with a zero debit opening balance.
func Company(t *testing.T, db *sql.DB, name string, active bool) int64 {
	t.Helper()

	var id int64

	err := db.QueryRowContext(context.Background(),
		`INSERT INTO companies (name, is_active) VALUES ($1, $2) RETURNING id`, name, active,
	).Scan(&id)
	require.NoError(t, err)

	return id
}
