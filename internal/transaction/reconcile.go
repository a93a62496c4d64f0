package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/audit"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/lock"
	"github.com/akaza138/sktexcot-accounting-test/internal/tax"
)

// SalePatch changes only the fields that are set. Derived amounts cannot be
// patched; they follow from the inputs.
type SalePatch struct {
	InvoiceDate     *time.Time
	ItemDescription *string
	ProcessType     *string
	Quantity        *decimal.Decimal
	Rate            *decimal.Decimal
	GSTType         *tax.GSTType
	GSTRate         *decimal.Decimal
	TCSAmount       *decimal.Decimal
	AmountPaid      *decimal.Decimal
	PaymentMode     *PaymentMode
	PaymentDate     *time.Time
	Notes           *string
}

func (p SalePatch) touchesAmounts() bool {
	return p.Quantity != nil || p.Rate != nil || p.GSTRate != nil ||
		p.GSTType != nil || p.TCSAmount != nil || p.AmountPaid != nil
}

func (p SalePatch) touchesLedger() bool {
	return p.touchesAmounts() || p.InvoiceDate != nil || p.ItemDescription != nil
}

func (p SalePatch) apply(s *Sale) {
	setIf(&s.InvoiceDate, p.InvoiceDate)
	setIf(&s.ItemDescription, p.ItemDescription)
	setIf(&s.ProcessType, p.ProcessType)
	setIf(&s.Quantity, p.Quantity)
	setIf(&s.Rate, p.Rate)
	setIf(&s.GSTType, p.GSTType)
	setIf(&s.GSTRate, p.GSTRate)
	setIf(&s.TCSAmount, p.TCSAmount)
	setIf(&s.AmountPaid, p.AmountPaid)
	setIf(&s.PaymentMode, p.PaymentMode)
	setIf(&s.Notes, p.Notes)

	if p.PaymentDate != nil {
		s.PaymentDate = new(*p.PaymentDate)
	}
}

type BillPatch struct {
	BillNumber      *string
	BillDate        *time.Time
	CustomerName    *string
	ItemDescription *string
	ProcessType     *string
	Quantity        *decimal.Decimal
	Rate            *decimal.Decimal
	GSTType         *tax.GSTType
	GSTRate         *decimal.Decimal
	TDSApplicable   *bool
	TDSRate         *decimal.Decimal
	TDSFileDate     *time.Time
	AmountPaid      *decimal.Decimal
	PaymentMode     *PaymentMode
	PaymentDate     *time.Time
	Notes           *string
}

func (p BillPatch) touchesAmounts() bool {
	return p.Quantity != nil || p.Rate != nil || p.GSTRate != nil || p.GSTType != nil ||
		p.TDSApplicable != nil || p.TDSRate != nil || p.AmountPaid != nil
}

func (p BillPatch) touchesLedger() bool {
	return p.touchesAmounts() || p.BillDate != nil || p.BillNumber != nil || p.ItemDescription != nil
}

func (p BillPatch) apply(b *Bill) {
	setIf(&b.BillNumber, p.BillNumber)
	setIf(&b.BillDate, p.BillDate)
	setIf(&b.CustomerName, p.CustomerName)
	setIf(&b.ItemDescription, p.ItemDescription)
	setIf(&b.ProcessType, p.ProcessType)
	setIf(&b.Quantity, p.Quantity)
	setIf(&b.Rate, p.Rate)
	setIf(&b.GSTType, p.GSTType)
	setIf(&b.GSTRate, p.GSTRate)
	setIf(&b.TDSApplicable, p.TDSApplicable)
	setIf(&b.TDSRate, p.TDSRate)
	setIf(&b.AmountPaid, p.AmountPaid)
	setIf(&b.PaymentMode, p.PaymentMode)
	setIf(&b.Notes, p.Notes)

	if p.TDSFileDate != nil {
		b.TDSFileDate = new(*p.TDSFileDate)
	}

	if p.PaymentDate != nil {
		b.PaymentDate = new(*p.PaymentDate)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// UpdateSale applies patch and brings the sale's ledger row and settlement
// payment back in line with it.
func (s *Service) UpdateSale(ctx context.Context, id int64, patch SalePatch) (*Sale, error) {
	release, err := s.acquire(ctx, lock.SaleKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		before   Sale
		sale     *Sale
		payments []paymentEvent
	)

	err = s.inTx(ctx, func(tx Tx) error {
		payments = nil

		sale, err = tx.LockSale(ctx, id)
		if err != nil {
			return err
		}

		before = *sale

		patch.apply(sale)

		if patch.touchesAmounts() {
			sale.recompute(true)
		}

		if patch.AmountPaid != nil {
			e, err := s.reconcileSettlement(ctx, tx, sale, noteSaleUpdated)
			if err != nil {
				return err
			}

			if e != nil {
				payments = append(payments, *e)
			}
		}

		if err := tx.UpdateSale(ctx, sale); err != nil {
			return err
		}

		if patch.touchesLedger() {
			e := saleEntry(sale, true)
			if err := resyncEntry(ctx, tx.Ledger(), e.Reference, e.Type, e.Debit, e.Credit, e.Date, &e.Narration); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionUpdate, entitySales, sale.ID, before, *sale)
	s.recordPayments(ctx, payments)

	return sale, nil
}

// UpdateBill is UpdateSale for purchase bills. A changed bill number must
// still be unique.
func (s *Service) UpdateBill(ctx context.Context, id int64, patch BillPatch) (*Bill, error) {
	if patch.BillNumber != nil && *patch.BillNumber == "" {
		return nil, ErrBillNumberRequired
	}

	release, err := s.acquire(ctx, lock.BillKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		before   Bill
		bill     *Bill
		payments []paymentEvent
	)

	err = s.inTx(ctx, func(tx Tx) error {
		payments = nil

		bill, err = tx.LockBill(ctx, id)
		if err != nil {
			return err
		}

		before = *bill

		if patch.BillNumber != nil && *patch.BillNumber != bill.BillNumber {
			taken, err := tx.BillNumberTaken(ctx, *patch.BillNumber, id)
			if err != nil {
				return fmt.Errorf("checking bill number: %w", err)
			}

			if taken {
				return ErrDuplicateBillNumber
			}
		}

		patch.apply(bill)

		if patch.touchesAmounts() {
			bill.recompute(true)
		}

		if patch.AmountPaid != nil {
			e, err := s.reconcileSettlement(ctx, tx, bill, noteBillUpdated)
			if err != nil {
				return err
			}

			if e != nil {
				payments = append(payments, *e)
			}
		}

		if err := tx.UpdateBill(ctx, bill); err != nil {
			return err
		}

		if patch.touchesLedger() {
			e := billEntry(bill, true)
			if err := resyncEntry(ctx, tx.Ledger(), e.Reference, e.Type, e.Debit, e.Credit, e.Date, &e.Narration); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionUpdate, entityBilling, bill.ID, before, *bill)
	s.recordPayments(ctx, payments)

	return bill, nil
}

// reconcileSettlement makes doc's settlement payment carry whatever part of
// its amount paid the other linked payments do not, so the payments applied
// to doc always add up to its amount paid. A settlement reduced to zero is
// kept, not deleted. The returned event is nil when no payment was written.
func (s *Service) reconcileSettlement(ctx context.Context, tx Tx, doc document, notes string) (*paymentEvent, error) {
	linked, err := tx.LinkedPayments(ctx, doc.Reference())
	if err != nil {
		return nil, fmt.Errorf("listing linked payments: %w", err)
	}

	var settlement *Payment

	others := decimal.Zero

	for _, p := range linked {
		if p.Settlement && settlement == nil {
			settlement = p
			continue
		}

		others = others.Add(p.Amount)
	}

	amount := doc.paid().Sub(others)
	if amount.IsNegative() {
		return nil, ErrPaidBelowApplied
	}

	if settlement == nil {
		if !amount.IsPositive() {
			return nil, nil
		}

		p, err := s.postSettlement(ctx, tx, doc, amount, notes)
		if err != nil {
			return nil, err
		}

		return new(created(p)), nil
	}

	before := *settlement

	settlement.Amount = amount
	settlement.PaymentDate = doc.settlementDate()
	settlement.Mode = doc.settlementMode()

	if err := tx.UpdatePayment(ctx, settlement); err != nil {
		return nil, err
	}

	debit, credit := settlement.Direction.LedgerAmounts(amount)

	err = resyncEntry(ctx, tx.Ledger(), settlement.Reference(), settlement.Direction.LedgerType(),
		debit, credit, settlement.PaymentDate, new(settlementNarration(doc)))
	if err != nil {
		return nil, err
	}

	return &paymentEvent{action: audit.ActionUpdate, id: settlement.ID, before: before, after: *settlement}, nil
}

// DeleteSale removes the sale with its payments and every ledger row derived
// from them.
func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	release, err := s.acquire(ctx, lock.SaleKey(id))
	if err != nil {
		return err
	}
	defer release()

	var (
		before  Sale
		removed []paymentEvent
	)

	err = s.inTx(ctx, func(tx Tx) error {
		sale, err := tx.LockSale(ctx, id)
		if err != nil {
			return err
		}

		before = *sale

		removed, err = deleteLinkedPayments(ctx, tx, sale.Reference())
		if err != nil {
			return err
		}

		if _, err := tx.Ledger().DeleteByReference(ctx, sale.Reference()); err != nil {
			return err
		}

		return tx.DeleteSale(ctx, id)
	})
	if err != nil {
		return err
	}

	s.recordPayments(ctx, removed)
	s.record(ctx, audit.ActionDelete, entitySales, id, before, nil)

	return nil
}

func (s *Service) DeleteBill(ctx context.Context, id int64) error {
	release, err := s.acquire(ctx, lock.BillKey(id))
	if err != nil {
		return err
	}
	defer release()

	var (
		before  Bill
		removed []paymentEvent
	)

	err = s.inTx(ctx, func(tx Tx) error {
		bill, err := tx.LockBill(ctx, id)
		if err != nil {
			return err
		}

		before = *bill

		removed, err = deleteLinkedPayments(ctx, tx, bill.Reference())
		if err != nil {
			return err
		}

		if _, err := tx.Ledger().DeleteByReference(ctx, bill.Reference()); err != nil {
			return err
		}

		return tx.DeleteBill(ctx, id)
	})
	if err != nil {
		return err
	}

	s.recordPayments(ctx, removed)
	s.record(ctx, audit.ActionDelete, entityBilling, id, before, nil)

	return nil
}

func deleteLinkedPayments(ctx context.Context, tx Tx, ref ledger.Reference) ([]paymentEvent, error) {
	linked, err := tx.LinkedPayments(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("listing linked payments: %w", err)
	}

	events := make([]paymentEvent, 0, len(linked))

	for _, p := range linked {
		if _, err := tx.Ledger().DeleteByReference(ctx, p.Reference()); err != nil {
			return nil, err
		}

		if err := tx.DeletePayment(ctx, p.ID); err != nil {
			return nil, err
		}

		events = append(events, paymentEvent{action: audit.ActionDelete, id: p.ID, before: *p})
	}

	return events, nil
}

func (s *Service) GetSale(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

func (s *Service) ListSales(ctx context.Context, filter SaleFilter) ([]*Sale, error) {
	return s.repo.ListSales(ctx, filter)
}

func (s *Service) GetBill(ctx context.Context, id int64) (*Bill, error) {
	return s.repo.GetBill(ctx, id)
}

func (s *Service) ListBills(ctx context.Context, filter BillFilter) ([]*Bill, error) {
	return s.repo.ListBills(ctx, filter)
}
