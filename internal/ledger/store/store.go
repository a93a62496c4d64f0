package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so the same store serves
// read paths and the write path inside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db DBTX
}

func New(db DBTX) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, company_id, transaction_date, transaction_type, reference_kind, reference_id,
// debit_amount, credit_amount, narration, created_at
func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var typ, kind string

	var narration sql.NullString

	if err := s.Scan(
		&e.ID, &e.CounterpartyID, &e.Date, &typ, &kind, &e.Reference.ID,
		&e.Debit, &e.Credit, &narration, &e.CreatedAt,
	); err != nil {
		return nil, err
	}

	e.Type = ledger.Type(typ)
	e.Reference.Kind = ledger.Kind(kind)
	e.Narration = narration.String

	return &e, nil
}

const selectColumns = `
	id, company_id, transaction_date, transaction_type, reference_kind, reference_id,
	debit_amount, credit_amount, narration, created_at
`

func (s *Store) Post(ctx context.Context, e *ledger.Entry) error {
	query := `
		INSERT INTO ledger (company_id, transaction_date, transaction_type, reference_kind, reference_id,
			debit_amount, credit_amount, narration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.CounterpartyID,
		e.Date,
		e.Type,
		e.Reference.Kind,
		e.Reference.ID,
		e.Debit,
		e.Credit,
		e.Narration,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("posting ledger entry: %w", err)
	}

	return nil
}

func (s *Store) Find(ctx context.Context, ref ledger.Reference, typ *ledger.Type) (*ledger.Entry, error) {
	query := `SELECT ` + selectColumns + `
		FROM ledger
		WHERE reference_kind = $1 AND reference_id = $2`

	args := []any{ref.Kind, ref.ID}

	if typ != nil {
		query += " AND transaction_type = $3"

		args = append(args, *typ)
	}

	query += " ORDER BY id ASC LIMIT 1"

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrEntryNotFound
		}

		return nil, fmt.Errorf("finding ledger entry: %w", err)
	}

	return e, nil
}

func (s *Store) UpdateAmount(ctx context.Context, id int64, debit, credit decimal.Decimal, date time.Time, narration string) error {
	query := `
		UPDATE ledger
		SET debit_amount = $1, credit_amount = $2, transaction_date = $3, narration = $4
		WHERE id = $5
	`

	res, err := s.db.ExecContext(ctx, query, debit, credit, date, narration, id)
	if err != nil {
		return fmt.Errorf("updating ledger entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating ledger entry: %w", err)
	}

	if n == 0 {
		return ledger.ErrEntryNotFound
	}

	return nil
}

func (s *Store) DeleteByReference(ctx context.Context, ref ledger.Reference) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM ledger WHERE reference_kind = $1 AND reference_id = $2`,
		ref.Kind, ref.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting ledger entries for %s: %w", ref, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting ledger entries for %s: %w", ref, err)
	}

	return n, nil
}

func (s *Store) SumAmounts(ctx context.Context, counterpartyID int64, before *time.Time) (ledger.Totals, error) {
	query := `
		SELECT COALESCE(SUM(debit_amount), 0), COALESCE(SUM(credit_amount), 0)
		FROM ledger
		WHERE company_id = $1`

	args := []any{counterpartyID}

	if before != nil {
		query += " AND transaction_date < $2"

		args = append(args, *before)
	}

	var t ledger.Totals
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&t.Debit, &t.Credit); err != nil {
		return ledger.Totals{}, fmt.Errorf("summing ledger: %w", err)
	}

	return t, nil
}

func (s *Store) List(ctx context.Context, counterpartyID int64, from, to *time.Time) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectColumns + `
		FROM ledger
		WHERE company_id = $1`

	args := []any{counterpartyID}

	argIdx := 2

	if from != nil {
		query += fmt.Sprintf(" AND transaction_date >= $%d", argIdx)

		args = append(args, *from)
		argIdx++
	}

	if to != nil {
		query += fmt.Sprintf(" AND transaction_date <= $%d", argIdx)

		args = append(args, *to)
	}

	query += " ORDER BY transaction_date ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing ledger: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger rows: %w", err)
	}

	return entries, nil
}
