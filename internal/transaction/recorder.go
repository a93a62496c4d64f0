package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/audit"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/tax"
)

const (
	noteSaleCreated = "Auto-created from Sales entry"
	noteSaleUpdated = "Auto-created from Sales update"
	noteBillCreated = "Auto-created from Billing entry"
	noteBillUpdated = "Auto-created from Billing update"
)

type CreateSaleParams struct {
	InvoiceDate     time.Time
	CounterpartyID  int64
	ItemDescription string
	ProcessType     string
	Quantity        decimal.Decimal
	Rate            decimal.Decimal
	GSTType         tax.GSTType
	GSTRate         decimal.Decimal
	TCSAmount       decimal.Decimal
	AmountPaid      decimal.Decimal
	PaymentMode     PaymentMode
	PaymentDate     *time.Time
	Notes           string
}

// CreateSale records an invoice, posts its ledger debit and, when part of it
// is already paid, the settlement receipt with its ledger credit.
func (s *Service) CreateSale(ctx context.Context, params CreateSaleParams) (*Sale, error) {
	if _, err := s.counterparties.Get(ctx, params.CounterpartyID); err != nil {
		return nil, err
	}

	sale := &Sale{
		InvoiceDate:     params.InvoiceDate,
		CounterpartyID:  params.CounterpartyID,
		ItemDescription: params.ItemDescription,
		ProcessType:     params.ProcessType,
		Quantity:        params.Quantity,
		Rate:            params.Rate,
		GSTType:         params.GSTType,
		GSTRate:         params.GSTRate,
		TCSAmount:       params.TCSAmount,
		AmountPaid:      params.AmountPaid,
		PaymentMode:     params.PaymentMode,
		PaymentDate:     params.PaymentDate,
		Notes:           params.Notes,
		CreatedBy:       audit.ActorFromContext(ctx),
	}
	sale.recompute(false)

	var settlement *Payment

	err := s.inTx(ctx, func(tx Tx) error {
		settlement = nil

		year := sale.InvoiceDate.Year()

		seq, err := tx.NextInvoiceSequence(ctx, s.prefix, year)
		if err != nil {
			return fmt.Errorf("allocating invoice number: %w", err)
		}

		sale.InvoiceNumber = FormatInvoiceNumber(s.prefix, year, seq)

		if err := tx.CreateSale(ctx, sale); err != nil {
			return err
		}

		if err := tx.Ledger().Post(ctx, saleEntry(sale, false)); err != nil {
			return fmt.Errorf("posting sale entry: %w", err)
		}

		if sale.AmountPaid.IsPositive() {
			settlement, err = s.postSettlement(ctx, tx, sale, sale.AmountPaid, noteSaleCreated)
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionCreate, entitySales, sale.ID, nil, *sale)

	if settlement != nil {
		s.recordPayments(ctx, []paymentEvent{created(settlement)})
	}

	return sale, nil
}

type CreateBillParams struct {
	BillNumber      string
	BillDate        time.Time
	CounterpartyID  int64
	CustomerName    string
	ItemDescription string
	ProcessType     string
	Quantity        decimal.Decimal
	Rate            decimal.Decimal
	GSTType         tax.GSTType
	GSTRate         decimal.Decimal
	TDSApplicable   bool
	TDSRate         decimal.Decimal
	TDSFileDate     *time.Time
	AmountPaid      decimal.Decimal
	PaymentMode     PaymentMode
	PaymentDate     *time.Time
	Notes           string
}

// CreateBill records a vendor bill under the vendor's own number. The bill is
// a payable, so its ledger entry is a credit and any settlement a debit.
func (s *Service) CreateBill(ctx context.Context, params CreateBillParams) (*Bill, error) {
	if params.BillNumber == "" {
		return nil, ErrBillNumberRequired
	}

	if _, err := s.counterparties.Get(ctx, params.CounterpartyID); err != nil {
		return nil, err
	}

	bill := &Bill{
		BillNumber:      params.BillNumber,
		BillDate:        params.BillDate,
		CounterpartyID:  params.CounterpartyID,
		CustomerName:    params.CustomerName,
		ItemDescription: params.ItemDescription,
		ProcessType:     params.ProcessType,
		Quantity:        params.Quantity,
		Rate:            params.Rate,
		GSTType:         params.GSTType,
		GSTRate:         params.GSTRate,
		TDSApplicable:   params.TDSApplicable,
		TDSRate:         params.TDSRate,
		TDSFileDate:     params.TDSFileDate,
		AmountPaid:      params.AmountPaid,
		PaymentMode:     params.PaymentMode,
		PaymentDate:     params.PaymentDate,
		Notes:           params.Notes,
		CreatedBy:       audit.ActorFromContext(ctx),
	}
	bill.recompute(false)

	var settlement *Payment

	err := s.inTx(ctx, func(tx Tx) error {
		settlement = nil

		taken, err := tx.BillNumberTaken(ctx, bill.BillNumber, 0)
		if err != nil {
			return fmt.Errorf("checking bill number: %w", err)
		}

		if taken {
			return ErrDuplicateBillNumber
		}

		if err := tx.CreateBill(ctx, bill); err != nil {
			return err
		}

		if err := tx.Ledger().Post(ctx, billEntry(bill, false)); err != nil {
			return fmt.Errorf("posting bill entry: %w", err)
		}

		if bill.AmountPaid.IsPositive() {
			settlement, err = s.postSettlement(ctx, tx, bill, bill.AmountPaid, noteBillCreated)
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionCreate, entityBilling, bill.ID, nil, *bill)

	if settlement != nil {
		s.recordPayments(ctx, []paymentEvent{created(settlement)})
	}

	return bill, nil
}

// postSettlement writes the settlement payment for doc and its ledger row.
// It does not touch doc's amount paid, which already includes amount.
func (s *Service) postSettlement(ctx context.Context, tx Tx, doc document, amount decimal.Decimal, notes string) (*Payment, error) {
	ref := doc.Reference()

	p := &Payment{
		Direction:      doc.settlementDirection(),
		CounterpartyID: doc.counterparty(),
		Amount:         amount,
		PaymentDate:    doc.settlementDate(),
		Mode:           doc.settlementMode(),
		Notes:          notes,
		Settlement:     true,
		CreatedBy:      audit.ActorFromContext(ctx),
	}

	switch ref.Kind {
	case ledger.KindSale:
		p.SaleID = &ref.ID
	case ledger.KindBill:
		p.BillID = &ref.ID
	}

	if err := tx.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	if err := tx.Ledger().Post(ctx, paymentEntry(p, settlementNarration(doc))); err != nil {
		return nil, fmt.Errorf("posting settlement entry: %w", err)
	}

	return p, nil
}

func saleNarration(sale *Sale, updated bool) string {
	head := "Invoice #" + sale.InvoiceNumber
	if updated {
		head += " (Updated)"
	}

	return withDescription(head, sale.ItemDescription)
}

func saleEntry(sale *Sale, updated bool) *ledger.Entry {
	return &ledger.Entry{
		CounterpartyID: sale.CounterpartyID,
		Date:           sale.InvoiceDate,
		Type:           ledger.TypeSale,
		Reference:      sale.Reference(),
		Debit:          sale.TotalAmount,
		Credit:         decimal.Zero,
		Narration:      saleNarration(sale, updated),
	}
}

func billNarration(bill *Bill, updated bool) string {
	head := "Bill #" + bill.BillNumber
	if updated {
		head += " (Updated)"
	}

	return withDescription(head, bill.ItemDescription)
}

func billEntry(bill *Bill, updated bool) *ledger.Entry {
	return &ledger.Entry{
		CounterpartyID: bill.CounterpartyID,
		Date:           bill.BillDate,
		Type:           ledger.TypePurchase,
		Reference:      bill.Reference(),
		Debit:          decimal.Zero,
		Credit:         bill.TotalAmount,
		Narration:      billNarration(bill, updated),
	}
}
