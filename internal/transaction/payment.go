package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/apperrors"
	"github.com/akaza138/sktexcot-accounting-test/internal/audit"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/lock"
	"github.com/akaza138/sktexcot-accounting-test/internal/tax"
)

type ApplyPaymentParams struct {
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
}

// ApplyPayment records a receipt or payment, posts its ledger row and, when
// it names a sale or bill, applies the amount to that record. A payment that
// names neither only moves the counterparty balance.
func (s *Service) ApplyPayment(ctx context.Context, params ApplyPaymentParams) (*Payment, error) {
	params.Amount = tax.Amount(params.Amount)
	if !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if params.SaleID != nil && params.BillID != nil {
		return nil, ErrAmbiguousLink
	}

	if !params.Direction.Valid() {
		return nil, fmt.Errorf("unknown payment direction %q: %w", params.Direction, apperrors.ErrValidation)
	}

	if _, err := s.counterparties.Get(ctx, params.CounterpartyID); err != nil {
		return nil, err
	}

	p := &Payment{
		Direction:            params.Direction,
		CounterpartyID:       params.CounterpartyID,
		Amount:               params.Amount,
		PaymentDate:          params.PaymentDate,
		Mode:                 params.Mode,
		TransactionReference: params.TransactionReference,
		BankAccount:          params.BankAccount,
		Notes:                params.Notes,
		SaleID:               params.SaleID,
		BillID:               params.BillID,
		CreatedBy:            audit.ActorFromContext(ctx),
	}

	var keys []string
	if ref, ok := p.Linked(); ok {
		keys = append(keys, documentKey(ref))
	}

	release, err := s.acquire(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.inTx(ctx, func(tx Tx) error {
		var doc document

		if ref, ok := p.Linked(); ok {
			doc, err = lockDocument(ctx, tx, ref)
			if err != nil {
				return err
			}

			if doc.counterparty() != p.CounterpartyID {
				return ErrCounterpartyMismatch
			}
		}

		if err := tx.CreatePayment(ctx, p); err != nil {
			return err
		}

		if err := tx.Ledger().Post(ctx, paymentEntry(p, paymentNarration(p))); err != nil {
			return fmt.Errorf("posting payment entry: %w", err)
		}

		if doc == nil {
			return nil
		}

		doc.setPaid(doc.paid().Add(p.Amount))
		doc.stamp(p.PaymentDate, p.Mode)

		return saveDocument(ctx, tx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionCreate, entityPayments, p.ID, nil, *p)

	return p, nil
}

// AmendPaymentParams replaces a payment's amount and date. Optional fields
// are left alone when nil.
type AmendPaymentParams struct {
	Amount               decimal.Decimal
	PaymentDate          time.Time
	Mode                 *PaymentMode
	TransactionReference *string
	BankAccount          *string
	Notes                *string
}

// AmendPayment moves the linked record by the change in amount and sets the
// ledger row to the new amount and date. When the amount is unchanged only
// the payment row is written.
func (s *Service) AmendPayment(ctx context.Context, id int64, params AmendPaymentParams) (*Payment, error) {
	params.Amount = tax.Amount(params.Amount)
	if !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	current, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, paymentKeys(current)...)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		before Payment
		p      *Payment
	)

	err = s.inTx(ctx, func(tx Tx) error {
		p, err = tx.LockPayment(ctx, id)
		if err != nil {
			return err
		}

		before = *p

		delta := params.Amount.Sub(p.Amount)

		if !delta.IsZero() {
			if err := s.shiftLinked(ctx, tx, p, delta); err != nil {
				return err
			}

			debit, credit := p.Direction.LedgerAmounts(params.Amount)
			if err := resyncEntry(ctx, tx.Ledger(), p.Reference(), p.Direction.LedgerType(),
				debit, credit, params.PaymentDate, nil); err != nil {
				return err
			}
		}

		p.Amount = params.Amount
		p.PaymentDate = params.PaymentDate
		setIf(&p.Mode, params.Mode)
		setIf(&p.TransactionReference, params.TransactionReference)
		setIf(&p.BankAccount, params.BankAccount)
		setIf(&p.Notes, params.Notes)

		return tx.UpdatePayment(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionUpdate, entityPayments, p.ID, before, *p)

	return p, nil
}

// DeletePayment reverses the payment's effect on its linked record and
// removes it with its ledger row.
func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	current, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return err
	}

	release, err := s.acquire(ctx, paymentKeys(current)...)
	if err != nil {
		return err
	}
	defer release()

	var before Payment

	err = s.inTx(ctx, func(tx Tx) error {
		p, err := tx.LockPayment(ctx, id)
		if err != nil {
			return err
		}

		before = *p

		if err := s.shiftLinked(ctx, tx, p, p.Amount.Neg()); err != nil {
			return err
		}

		if _, err := tx.Ledger().DeleteByReference(ctx, p.Reference()); err != nil {
			return err
		}

		return tx.DeletePayment(ctx, id)
	})
	if err != nil {
		return err
	}

	s.record(ctx, audit.ActionDelete, entityPayments, id, before, nil)

	return nil
}

// shiftLinked moves the amount paid on p's linked record by delta. A linked
// record that has since been deleted is skipped.
func (s *Service) shiftLinked(ctx context.Context, tx Tx, p *Payment, delta decimal.Decimal) error {
	ref, ok := p.Linked()
	if !ok {
		return nil
	}

	doc, err := lockDocument(ctx, tx, ref)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("skipping linked record",
			"payment_id", p.ID,
			"linked", ref.String(),
			"error", ErrLinkedRecordMissing,
		)

		return nil
	}

	if err != nil {
		return err
	}

	doc.setPaid(doc.paid().Add(delta))

	return saveDocument(ctx, tx, doc)
}

func (s *Service) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

func (s *Service) ListPayments(ctx context.Context, filter PaymentFilter) ([]*Payment, error) {
	return s.repo.ListPayments(ctx, filter)
}

func documentKey(ref ledger.Reference) string {
	if ref.Kind == ledger.KindBill {
		return lock.BillKey(ref.ID)
	}

	return lock.SaleKey(ref.ID)
}

// paymentKeys orders locks linked record first, matching UpdateSale and
// UpdateBill which hold the record lock while touching its payments.
func paymentKeys(p *Payment) []string {
	if ref, ok := p.Linked(); ok {
		return []string{documentKey(ref), lock.PaymentKey(p.ID)}
	}

	return []string{lock.PaymentKey(p.ID)}
}

func lockDocument(ctx context.Context, tx Tx, ref ledger.Reference) (document, error) {
	switch ref.Kind {
	case ledger.KindSale:
		sale, err := tx.LockSale(ctx, ref.ID)
		if err != nil {
			return nil, err
		}

		return sale, nil
	case ledger.KindBill:
		bill, err := tx.LockBill(ctx, ref.ID)
		if err != nil {
			return nil, err
		}

		return bill, nil
	}

	return nil, fmt.Errorf("payments cannot be applied to %s", ref)
}

func saveDocument(ctx context.Context, tx Tx, doc document) error {
	switch d := doc.(type) {
	case *Sale:
		return tx.UpdateSale(ctx, d)
	case *Bill:
		return tx.UpdateBill(ctx, d)
	}

	return fmt.Errorf("unsupported document %T", doc)
}
