package transaction

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/apperrors"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/tax"
)

var (
	ErrSaleNotFound    = fmt.Errorf("sale %w", apperrors.ErrNotFound)
	ErrBillNotFound    = fmt.Errorf("bill %w", apperrors.ErrNotFound)
	ErrPaymentNotFound = fmt.Errorf("payment %w", apperrors.ErrNotFound)

	ErrDuplicateInvoiceNumber = fmt.Errorf("duplicate invoice number: %w", apperrors.ErrConflict)
	ErrDuplicateBillNumber    = fmt.Errorf("duplicate bill number: %w", apperrors.ErrConflict)

	// ErrSerialization is returned by a Tx that lost a race with a
	// concurrent write and was aborted. The unit of work may be run again.
	ErrSerialization = fmt.Errorf("concurrent update: %w", apperrors.ErrConflict)

	ErrInvalidAmount        = fmt.Errorf("payment amount must be positive: %w", apperrors.ErrValidation)
	ErrAmbiguousLink        = fmt.Errorf("payment may reference a sale or a bill, not both: %w", apperrors.ErrValidation)
	ErrCounterpartyMismatch = fmt.Errorf("payment counterparty differs from the linked record: %w", apperrors.ErrValidation)
	ErrBillNumberRequired   = fmt.Errorf("bill number is required: %w", apperrors.ErrValidation)

	ErrPaidBelowApplied    = fmt.Errorf("amount paid is below payments already applied: %w", apperrors.ErrInvalidState)
	ErrLinkedRecordMissing = fmt.Errorf("linked record no longer exists: %w", apperrors.ErrInvalidState)
)

// PaymentStatus is derived from amount paid against the total; it is never set directly.
type PaymentStatus string

const (
	StatusUnpaid  PaymentStatus = "unpaid"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"
)

// Direction says whether money came in from a customer or went out to a vendor.
type Direction string

const (
	DirectionReceipt Direction = "receipt"
	DirectionPayment Direction = "payment"
)

func (d Direction) Valid() bool {
	return d == DirectionReceipt || d == DirectionPayment
}

// LedgerType is the ledger transaction type a payment in this direction posts.
func (d Direction) LedgerType() ledger.Type {
	if d == DirectionReceipt {
		return ledger.TypeReceipt
	}

	return ledger.TypePayment
}

// LedgerAmounts returns the (debit, credit) pair a payment of amount posts.
// Receipts reduce what the counterparty owes, payments reduce what we owe.
func (d Direction) LedgerAmounts(amount decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if d == DirectionReceipt {
		return decimal.Zero, amount
	}

	return amount, decimal.Zero
}

type PaymentMode string

const (
	ModeCash   PaymentMode = "cash"
	ModeBank   PaymentMode = "bank"
	ModeUPI    PaymentMode = "upi"
	ModeCheque PaymentMode = "cheque"
	ModeNEFT   PaymentMode = "neft"
	ModeRTGS   PaymentMode = "rtgs"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case ModeCash, ModeBank, ModeUPI, ModeCheque, ModeNEFT, ModeRTGS:
		return true
	}

	return false
}

// Sale is a sales invoice. Amount fields below Quantity..TCSAmount are derived.
type Sale struct {
	ID              int64
	InvoiceNumber   string
	InvoiceDate     time.Time
	CounterpartyID  int64
	ItemDescription string
	ProcessType     string

	Quantity  decimal.Decimal
	Rate      decimal.Decimal
	GSTType   tax.GSTType
	GSTRate   decimal.Decimal
	TCSAmount decimal.Decimal

	BaseAmount  decimal.Decimal
	CGSTAmount  decimal.Decimal
	SGSTAmount  decimal.Decimal
	IGSTAmount  decimal.Decimal
	TotalAmount decimal.Decimal

	AmountPaid    decimal.Decimal
	AmountDue     decimal.Decimal
	PaymentStatus PaymentStatus
	PaymentMode   PaymentMode
	PaymentDate   *time.Time

	Notes     string
	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (s *Sale) Reference() ledger.Reference {
	return ledger.Reference{Kind: ledger.KindSale, ID: s.ID}
}

// recompute rounds the inputs to their stored scales and derives every
// amount field from them.
func (s *Sale) recompute(floor bool) {
	s.Quantity = tax.Quantity(s.Quantity)
	s.Rate = tax.Amount(s.Rate)
	s.GSTRate = tax.Amount(s.GSTRate)
	s.TCSAmount = tax.Amount(s.TCSAmount)
	s.AmountPaid = tax.Amount(s.AmountPaid)

	a := tax.ComputeSale(tax.SaleInput{
		Quantity:  s.Quantity,
		Rate:      s.Rate,
		GSTType:   s.GSTType,
		GSTRate:   s.GSTRate,
		TCSAmount: s.TCSAmount,
	})

	s.BaseAmount = a.Base
	s.CGSTAmount = a.CGST
	s.SGSTAmount = a.SGST
	s.IGSTAmount = a.IGST
	s.TotalAmount = a.Total
	s.AmountDue, s.PaymentStatus = Settle(s.TotalAmount, s.AmountPaid, floor)
}

// Bill is a purchase bill from a vendor.
type Bill struct {
	ID              int64
	BillNumber      string
	BillDate        time.Time
	CounterpartyID  int64
	CustomerName    string
	ItemDescription string
	ProcessType     string

	Quantity      decimal.Decimal
	Rate          decimal.Decimal
	GSTType       tax.GSTType
	GSTRate       decimal.Decimal
	TDSApplicable bool
	TDSRate       decimal.Decimal
	TDSFileDate   *time.Time

	BaseAmount  decimal.Decimal
	GSTAmount   decimal.Decimal
	TDSAmount   decimal.Decimal
	TotalAmount decimal.Decimal

	AmountPaid    decimal.Decimal
	AmountDue     decimal.Decimal
	PaymentStatus PaymentStatus
	PaymentMode   PaymentMode
	PaymentDate   *time.Time

	Notes     string
	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (b *Bill) Reference() ledger.Reference {
	return ledger.Reference{Kind: ledger.KindBill, ID: b.ID}
}

func (b *Bill) recompute(floor bool) {
	b.Quantity = tax.Quantity(b.Quantity)
	b.Rate = tax.Amount(b.Rate)
	b.GSTRate = tax.Amount(b.GSTRate)
	b.TDSRate = tax.Amount(b.TDSRate)
	b.AmountPaid = tax.Amount(b.AmountPaid)

	a := tax.ComputeBill(tax.BillInput{
		Quantity:      b.Quantity,
		Rate:          b.Rate,
		GSTRate:       b.GSTRate,
		TDSApplicable: b.TDSApplicable,
		TDSRate:       b.TDSRate,
	})

	b.BaseAmount = a.Base
	b.GSTAmount = a.GST
	b.TDSAmount = a.TDS
	b.TotalAmount = a.Total
	b.AmountDue, b.PaymentStatus = Settle(b.TotalAmount, b.AmountPaid, floor)
}

// Payment is money received from or paid to a counterparty, optionally
// applied against one sale or one bill.
type Payment struct {
	ID                   int64
	Direction            Direction
	CounterpartyID       int64
	Amount               decimal.Decimal
	PaymentDate          time.Time
	Mode                 PaymentMode
	TransactionReference string
	BankAccount          string
	Notes                string
	SaleID               *int64
	BillID               *int64
	// Settlement marks the payment that carries an invoice's own amount_paid.
	// At most one exists per sale or bill.
	Settlement bool

	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (p *Payment) Reference() ledger.Reference {
	return ledger.Reference{Kind: ledger.KindPayment, ID: p.ID}
}

// Linked returns the sale or bill the payment is applied against.
func (p *Payment) Linked() (ledger.Reference, bool) {
	switch {
	case p.SaleID != nil:
		return ledger.Reference{Kind: ledger.KindSale, ID: *p.SaleID}, true
	case p.BillID != nil:
		return ledger.Reference{Kind: ledger.KindBill, ID: *p.BillID}, true
	}

	return ledger.Reference{}, false
}
