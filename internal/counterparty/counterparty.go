package counterparty

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/apperrors"
)

var ErrNotFound = fmt.Errorf("counterparty %w", apperrors.ErrNotFound)

// Side is the side of the ledger an opening balance sits on.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// Counterparty is a customer or vendor from the company master.
type Counterparty struct {
	ID             int64
	Name           string
	GSTIN          string
	State          string
	OpeningBalance decimal.Decimal // magnitude, never negative
	OpeningSide    Side
	Active         bool
	CreatedAt      time.Time
}

// SignedOpening returns the opening balance with debit positive and credit negative.
func (c *Counterparty) SignedOpening() decimal.Decimal {
	if c.OpeningSide == SideCredit {
		return c.OpeningBalance.Neg()
	}

	return c.OpeningBalance
}
