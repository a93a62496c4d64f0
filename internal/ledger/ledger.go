// Package ledger holds the per-counterparty ledger: the entries derived from
// sales, bills and payments, and the balance projections computed over them.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/apperrors"
)

var ErrEntryNotFound = fmt.Errorf("ledger entry %w", apperrors.ErrNotFound)

// Type is the transaction type an entry was posted for.
type Type string

const (
	TypeSale     Type = "sale"
	TypePurchase Type = "purchase"
	TypePayment  Type = "payment"
	TypeReceipt  Type = "receipt"
	TypeOpening  Type = "opening"
)

// Kind names the table a ledger entry's source record lives in.
type Kind string

const (
	KindSale    Kind = "sale"
	KindBill    Kind = "bill"
	KindPayment Kind = "payment"
)

// Reference points an entry back at the record that produced it.
type Reference struct {
	Kind Kind
	ID   int64
}

func (r Reference) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Entry is one ledger row. By convention exactly one of Debit and Credit is
// non-zero.
type Entry struct {
	ID             int64
	CounterpartyID int64
	Date           time.Time
	Type           Type
	Reference      Reference
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	Narration      string
	CreatedAt      time.Time
}

// Net is the entry's effect on the running balance.
func (e *Entry) Net() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

type Totals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (t Totals) Net() decimal.Decimal {
	return t.Debit.Sub(t.Credit)
}

// Store is the full ledger store. Writes only ever happen inside the unit of
// work that changes the source record.
type Store interface {
	Reader

	Post(ctx context.Context, e *Entry) error
	Find(ctx context.Context, ref Reference, typ *Type) (*Entry, error)
	UpdateAmount(ctx context.Context, id int64, debit, credit decimal.Decimal, date time.Time, narration string) error
	DeleteByReference(ctx context.Context, ref Reference) (int64, error)
}
