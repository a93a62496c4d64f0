package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
)

// Settle derives amount due and status from a total and the amount paid.
// With floor set the due amount never goes below zero; without it an
// over-payment shows up as a negative due.
func Settle(total, paid decimal.Decimal, floor bool) (decimal.Decimal, PaymentStatus) {
	due := total.Sub(paid)
	if floor && due.IsNegative() {
		due = decimal.Zero
	}

	switch {
	case !due.IsPositive():
		return due, StatusPaid
	case paid.IsPositive():
		return due, StatusPartial
	}

	return due, StatusUnpaid
}

// document is the part of a sale or bill that payments settle against.
type document interface {
	Reference() ledger.Reference
	counterparty() int64
	label() string
	settlementDirection() Direction
	paid() decimal.Decimal
	setPaid(amount decimal.Decimal)
	stamp(date time.Time, mode PaymentMode)
	settlementDate() time.Time
	settlementMode() PaymentMode
}

func (s *Sale) counterparty() int64            { return s.CounterpartyID }
func (s *Sale) label() string                  { return "Invoice #" + s.InvoiceNumber }
func (s *Sale) settlementDirection() Direction { return DirectionReceipt }
func (s *Sale) paid() decimal.Decimal          { return s.AmountPaid }

func (s *Sale) setPaid(amount decimal.Decimal) {
	s.AmountPaid = amount
	s.AmountDue, s.PaymentStatus = Settle(s.TotalAmount, amount, true)
}

func (s *Sale) stamp(date time.Time, mode PaymentMode) {
	s.PaymentDate = &date
	s.PaymentMode = mode
}

func (s *Sale) settlementDate() time.Time {
	if s.PaymentDate != nil {
		return *s.PaymentDate
	}

	return s.InvoiceDate
}

func (s *Sale) settlementMode() PaymentMode {
	if s.PaymentMode.Valid() {
		return s.PaymentMode
	}

	return ModeCash
}

func (b *Bill) counterparty() int64            { return b.CounterpartyID }
func (b *Bill) label() string                  { return "Bill #" + b.BillNumber }
func (b *Bill) settlementDirection() Direction { return DirectionPayment }
func (b *Bill) paid() decimal.Decimal          { return b.AmountPaid }

func (b *Bill) setPaid(amount decimal.Decimal) {
	b.AmountPaid = amount
	b.AmountDue, b.PaymentStatus = Settle(b.TotalAmount, amount, true)
}

func (b *Bill) stamp(date time.Time, mode PaymentMode) {
	b.PaymentDate = &date
	b.PaymentMode = mode
}

func (b *Bill) settlementDate() time.Time {
	if b.PaymentDate != nil {
		return *b.PaymentDate
	}

	return b.BillDate
}

func (b *Bill) settlementMode() PaymentMode {
	if b.PaymentMode.Valid() {
		return b.PaymentMode
	}

	return ModeCash
}
