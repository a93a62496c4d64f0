package ledger

import (
	"context"
	"time"
)

//go:generate mockgen -source=reader.go -destination=reader_mock.go -package=ledger
type Reader interface {
	// List returns entries dated within [from, to], ordered by date then id.
	// A nil bound is open.
	List(ctx context.Context, counterpartyID int64, from, to *time.Time) ([]*Entry, error)
	// SumAmounts totals entries dated strictly before the given day, or all
	// entries when before is nil.
	SumAmounts(ctx context.Context, counterpartyID int64, before *time.Time) (Totals, error)
}
