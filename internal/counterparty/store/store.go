package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akaza138/sktexcot-accounting-test/internal/counterparty"
)

// Store reads the company master. Companies are owned elsewhere; nothing
// here writes to the table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, name, gstin, state, opening_balance, balance_type, is_active, created_at
func scanCounterparty(s scanner) (*counterparty.Counterparty, error) {
	var c counterparty.Counterparty

	var gstin, state sql.NullString

	var side string

	if err := s.Scan(&c.ID, &c.Name, &gstin, &state, &c.OpeningBalance, &side, &c.Active, &c.CreatedAt); err != nil {
		return nil, err
	}

	c.GSTIN = gstin.String
	c.State = state.String
	c.OpeningSide = counterparty.Side(side)

	return &c, nil
}

const selectColumns = `id, name, gstin, state, opening_balance, balance_type, is_active, created_at`

// Get returns active companies only; an inactive company is treated as unknown.
func (s *Store) Get(ctx context.Context, id int64) (*counterparty.Counterparty, error) {
	return s.get(ctx, `SELECT `+selectColumns+` FROM companies WHERE id = $1 AND is_active`, id)
}

// Find returns the company whether or not it is active.
func (s *Store) Find(ctx context.Context, id int64) (*counterparty.Counterparty, error) {
	return s.get(ctx, `SELECT `+selectColumns+` FROM companies WHERE id = $1`, id)
}

func (s *Store) get(ctx context.Context, query string, id int64) (*counterparty.Counterparty, error) {
	c, err := scanCounterparty(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, counterparty.ErrNotFound
		}

		return nil, fmt.Errorf("getting counterparty: %w", err)
	}

	return c, nil
}

func (s *Store) ListActive(ctx context.Context) ([]*counterparty.Counterparty, error) {
	query := `SELECT ` + selectColumns + ` FROM companies WHERE is_active ORDER BY name ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing counterparties: %w", err)
	}
	defer rows.Close()

	var out []*counterparty.Counterparty

	for rows.Next() {
		c, err := scanCounterparty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning counterparty: %w", err)
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counterparty rows: %w", err)
	}

	return out, nil
}
