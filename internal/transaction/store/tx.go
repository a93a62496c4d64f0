package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	ledgerstore "github.com/akaza138/sktexcot-accounting-test/internal/ledger/store"
	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return conflictOr(t.tx.Commit()) }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Ledger() ledger.Store {
	return ledgerstore.New(t.tx)
}

// NextInvoiceSequence bumps the counter for the prefix/year scope. A scope
// seen for the first time is seeded from the highest number already issued
// in it, so numbering carries on across data loaded before the counter.
func (t *txStore) NextInvoiceSequence(ctx context.Context, prefix string, year int) (int, error) {
	scope := transaction.SequencePrefix(prefix, year)

	var next int

	err := t.tx.QueryRowContext(ctx, `
		UPDATE invoice_sequences
		SET last_value = last_value + 1
		WHERE prefix = $1
		RETURNING last_value
	`, scope).Scan(&next)
	if err == nil {
		return next, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, conflictOr(fmt.Errorf("bumping invoice sequence: %w", err))
	}

	existing, err := t.invoiceNumbers(ctx, scope)
	if err != nil {
		return 0, err
	}

	seed := transaction.NextSequence(existing, prefix, year)

	err = t.tx.QueryRowContext(ctx, `
		INSERT INTO invoice_sequences (prefix, last_value)
		VALUES ($1, $2)
		ON CONFLICT (prefix) DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value
	`, scope, seed).Scan(&next)
	if err != nil {
		return 0, conflictOr(fmt.Errorf("seeding invoice sequence: %w", err))
	}

	return next, nil
}

func (t *txStore) invoiceNumbers(ctx context.Context, scope string) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT invoice_number FROM sales WHERE starts_with(invoice_number, $1)`, scope)
	if err != nil {
		return nil, fmt.Errorf("listing invoice numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string

	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning invoice number: %w", err)
		}

		numbers = append(numbers, n)
	}

	return numbers, rows.Err()
}

func (t *txStore) CreateSale(ctx context.Context, s *transaction.Sale) error {
	query := `
		INSERT INTO sales (invoice_number, invoice_date, company_id, item_description, process_type,
			quantity, rate, gst_type, gst_rate, tcs_amount,
			base_amount, cgst_amount, sgst_amount, igst_amount, total_amount,
			amount_paid, amount_due, payment_status, payment_mode, payment_date,
			notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, NOW())
		RETURNING id, created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		s.InvoiceNumber, s.InvoiceDate, s.CounterpartyID, s.ItemDescription, s.ProcessType,
		s.Quantity, s.Rate, s.GSTType, s.GSTRate, s.TCSAmount,
		s.BaseAmount, s.CGSTAmount, s.SGSTAmount, s.IGSTAmount, s.TotalAmount,
		s.AmountPaid, s.AmountDue, s.PaymentStatus, nullString(string(s.PaymentMode)), s.PaymentDate,
		s.Notes, nullInt64(s.CreatedBy),
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return transaction.ErrDuplicateInvoiceNumber
		}

		return fmt.Errorf("creating sale: %w", err)
	}

	return nil
}

func (t *txStore) LockSale(ctx context.Context, id int64) (*transaction.Sale, error) {
	return getSale(ctx, t.tx, id, true)
}

func (t *txStore) UpdateSale(ctx context.Context, s *transaction.Sale) error {
	query := `
		UPDATE sales
		SET invoice_date = $1, item_description = $2, process_type = $3,
			quantity = $4, rate = $5, gst_type = $6, gst_rate = $7, tcs_amount = $8,
			base_amount = $9, cgst_amount = $10, sgst_amount = $11, igst_amount = $12, total_amount = $13,
			amount_paid = $14, amount_due = $15, payment_status = $16, payment_mode = $17, payment_date = $18,
			notes = $19, updated_at = NOW()
		WHERE id = $20
		RETURNING updated_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		s.InvoiceDate, s.ItemDescription, s.ProcessType,
		s.Quantity, s.Rate, s.GSTType, s.GSTRate, s.TCSAmount,
		s.BaseAmount, s.CGSTAmount, s.SGSTAmount, s.IGSTAmount, s.TotalAmount,
		s.AmountPaid, s.AmountDue, s.PaymentStatus, nullString(string(s.PaymentMode)), s.PaymentDate,
		s.Notes, s.ID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transaction.ErrSaleNotFound
		}

		return fmt.Errorf("updating sale: %w", err)
	}

	return nil
}

func (t *txStore) DeleteSale(ctx context.Context, id int64) error {
	return t.deleteRow(ctx, "sales", id, transaction.ErrSaleNotFound)
}

func (t *txStore) BillNumberTaken(ctx context.Context, number string, excludeID int64) (bool, error) {
	var taken bool

	err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM billing WHERE bill_number = $1 AND id <> $2)`,
		number, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, err
	}

	return taken, nil
}

func (t *txStore) CreateBill(ctx context.Context, b *transaction.Bill) error {
	query := `
		INSERT INTO billing (bill_number, bill_date, company_id, customer_name, item_description, process_type,
			quantity, rate, gst_type, gst_rate, tds_applicable, tds_rate, tds_file_date,
			base_amount, gst_amount, tds_amount, total_amount,
			amount_paid, amount_due, payment_status, payment_mode, payment_date,
			notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, NOW())
		RETURNING id, created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		b.BillNumber, b.BillDate, b.CounterpartyID, b.CustomerName, b.ItemDescription, b.ProcessType,
		b.Quantity, b.Rate, b.GSTType, b.GSTRate, b.TDSApplicable, b.TDSRate, b.TDSFileDate,
		b.BaseAmount, b.GSTAmount, b.TDSAmount, b.TotalAmount,
		b.AmountPaid, b.AmountDue, b.PaymentStatus, nullString(string(b.PaymentMode)), b.PaymentDate,
		b.Notes, nullInt64(b.CreatedBy),
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return transaction.ErrDuplicateBillNumber
		}

		return fmt.Errorf("creating bill: %w", err)
	}

	return nil
}

func (t *txStore) LockBill(ctx context.Context, id int64) (*transaction.Bill, error) {
	return getBill(ctx, t.tx, id, true)
}

func (t *txStore) UpdateBill(ctx context.Context, b *transaction.Bill) error {
	query := `
		UPDATE billing
		SET bill_number = $1, bill_date = $2, customer_name = $3, item_description = $4, process_type = $5,
			quantity = $6, rate = $7, gst_type = $8, gst_rate = $9,
			tds_applicable = $10, tds_rate = $11, tds_file_date = $12,
			base_amount = $13, gst_amount = $14, tds_amount = $15, total_amount = $16,
			amount_paid = $17, amount_due = $18, payment_status = $19, payment_mode = $20, payment_date = $21,
			notes = $22, updated_at = NOW()
		WHERE id = $23
		RETURNING updated_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		b.BillNumber, b.BillDate, b.CustomerName, b.ItemDescription, b.ProcessType,
		b.Quantity, b.Rate, b.GSTType, b.GSTRate,
		b.TDSApplicable, b.TDSRate, b.TDSFileDate,
		b.BaseAmount, b.GSTAmount, b.TDSAmount, b.TotalAmount,
		b.AmountPaid, b.AmountDue, b.PaymentStatus, nullString(string(b.PaymentMode)), b.PaymentDate,
		b.Notes, b.ID,
	).Scan(&b.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return transaction.ErrBillNotFound
		case isUniqueViolation(err):
			return transaction.ErrDuplicateBillNumber
		}

		return fmt.Errorf("updating bill: %w", err)
	}

	return nil
}

func (t *txStore) DeleteBill(ctx context.Context, id int64) error {
	return t.deleteRow(ctx, "billing", id, transaction.ErrBillNotFound)
}

func (t *txStore) CreatePayment(ctx context.Context, p *transaction.Payment) error {
	query := `
		INSERT INTO payments (payment_type, company_id, amount, payment_date, payment_mode,
			transaction_reference, bank_account, notes, sale_id, bill_id, is_settlement,
			created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		p.Direction, p.CounterpartyID, p.Amount, p.PaymentDate, p.Mode,
		p.TransactionReference, p.BankAccount, p.Notes, p.SaleID, p.BillID, p.Settlement,
		nullInt64(p.CreatedBy),
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating payment: %w", err)
	}

	return nil
}

func (t *txStore) LockPayment(ctx context.Context, id int64) (*transaction.Payment, error) {
	return getPayment(ctx, t.tx, id, true)
}

// UpdatePayment rewrites the mutable fields. Direction, counterparty and
// link are fixed at creation.
func (t *txStore) UpdatePayment(ctx context.Context, p *transaction.Payment) error {
	query := `
		UPDATE payments
		SET amount = $1, payment_date = $2, payment_mode = $3,
			transaction_reference = $4, bank_account = $5, notes = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		p.Amount, p.PaymentDate, p.Mode, p.TransactionReference, p.BankAccount, p.Notes, p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transaction.ErrPaymentNotFound
		}

		return fmt.Errorf("updating payment: %w", err)
	}

	return nil
}

func (t *txStore) DeletePayment(ctx context.Context, id int64) error {
	return t.deleteRow(ctx, "payments", id, transaction.ErrPaymentNotFound)
}

func (t *txStore) LinkedPayments(ctx context.Context, ref ledger.Reference) ([]*transaction.Payment, error) {
	var column string

	switch ref.Kind {
	case ledger.KindSale:
		column = "sale_id"
	case ledger.KindBill:
		column = "bill_id"
	default:
		return nil, fmt.Errorf("no payments link to %s", ref)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE ` + column + ` = $1 ORDER BY id ASC FOR UPDATE`

	return queryAll(ctx, t.tx, scanPayment, query, ref.ID)
}

// deleteRow removes one row by id from a table named by the caller, never by input.
func (t *txStore) deleteRow(ctx context.Context, table string, id int64, notFound error) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}

	if n == 0 {
		return notFound
	}

	return nil
}
