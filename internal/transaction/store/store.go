// Package store is the Postgres implementation of transaction.Repository.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akaza138/sktexcot-accounting-test/internal/tax"
	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
)

const (
	uniqueViolation      = "23505"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Begin opens a repeatable-read transaction; rows read through Lock* stay
// locked until it ends.
func (s *Store) Begin(ctx context.Context) (transaction.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &txStore{tx: dbTx}, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const saleColumns = `
	id, invoice_number, invoice_date, company_id, item_description, process_type,
	quantity, rate, gst_type, gst_rate, tcs_amount,
	base_amount, cgst_amount, sgst_amount, igst_amount, total_amount,
	amount_paid, amount_due, payment_status, payment_mode, payment_date,
	notes, created_by, created_at, updated_at
`

// scanSale reads columns in saleColumns order.
func scanSale(s scanner) (*transaction.Sale, error) {
	var sale transaction.Sale

	var gstType, status string

	var mode sql.NullString

	var createdBy sql.NullInt64

	if err := s.Scan(
		&sale.ID, &sale.InvoiceNumber, &sale.InvoiceDate, &sale.CounterpartyID, &sale.ItemDescription, &sale.ProcessType,
		&sale.Quantity, &sale.Rate, &gstType, &sale.GSTRate, &sale.TCSAmount,
		&sale.BaseAmount, &sale.CGSTAmount, &sale.SGSTAmount, &sale.IGSTAmount, &sale.TotalAmount,
		&sale.AmountPaid, &sale.AmountDue, &status, &mode, &sale.PaymentDate,
		&sale.Notes, &createdBy, &sale.CreatedAt, &sale.UpdatedAt,
	); err != nil {
		return nil, err
	}

	sale.GSTType = tax.GSTType(gstType)
	sale.PaymentStatus = transaction.PaymentStatus(status)
	sale.PaymentMode = transaction.PaymentMode(mode.String)
	sale.CreatedBy = createdBy.Int64

	return &sale, nil
}

const billColumns = `
	id, bill_number, bill_date, company_id, customer_name, item_description, process_type,
	quantity, rate, gst_type, gst_rate, tds_applicable, tds_rate, tds_file_date,
	base_amount, gst_amount, tds_amount, total_amount,
	amount_paid, amount_due, payment_status, payment_mode, payment_date,
	notes, created_by, created_at, updated_at
`

func scanBill(s scanner) (*transaction.Bill, error) {
	var bill transaction.Bill

	var gstType, status string

	var mode sql.NullString

	var createdBy sql.NullInt64

	if err := s.Scan(
		&bill.ID, &bill.BillNumber, &bill.BillDate, &bill.CounterpartyID, &bill.CustomerName,
		&bill.ItemDescription, &bill.ProcessType,
		&bill.Quantity, &bill.Rate, &gstType, &bill.GSTRate, &bill.TDSApplicable, &bill.TDSRate, &bill.TDSFileDate,
		&bill.BaseAmount, &bill.GSTAmount, &bill.TDSAmount, &bill.TotalAmount,
		&bill.AmountPaid, &bill.AmountDue, &status, &mode, &bill.PaymentDate,
		&bill.Notes, &createdBy, &bill.CreatedAt, &bill.UpdatedAt,
	); err != nil {
		return nil, err
	}

	bill.GSTType = tax.GSTType(gstType)
	bill.PaymentStatus = transaction.PaymentStatus(status)
	bill.PaymentMode = transaction.PaymentMode(mode.String)
	bill.CreatedBy = createdBy.Int64

	return &bill, nil
}

const paymentColumns = `
	id, payment_type, company_id, amount, payment_date, payment_mode,
	transaction_reference, bank_account, notes, sale_id, bill_id, is_settlement,
	created_by, created_at, updated_at
`

func scanPayment(s scanner) (*transaction.Payment, error) {
	var p transaction.Payment

	var direction, mode string

	var createdBy sql.NullInt64

	if err := s.Scan(
		&p.ID, &direction, &p.CounterpartyID, &p.Amount, &p.PaymentDate, &mode,
		&p.TransactionReference, &p.BankAccount, &p.Notes, &p.SaleID, &p.BillID, &p.Settlement,
		&createdBy, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Direction = transaction.Direction(direction)
	p.Mode = transaction.PaymentMode(mode)
	p.CreatedBy = createdBy.Int64

	return &p, nil
}

func (s *Store) GetSale(ctx context.Context, id int64) (*transaction.Sale, error) {
	return getSale(ctx, s.db, id, false)
}

func (s *Store) ListSales(ctx context.Context, filter transaction.SaleFilter) ([]*transaction.Sale, error) {
	var w where

	addPtr(&w, "company_id = $%d", filter.CounterpartyID)
	addPtr(&w, "invoice_date >= $%d", filter.StartDate)
	addPtr(&w, "invoice_date <= $%d", filter.EndDate)

	query := `SELECT ` + saleColumns + ` FROM sales` + w.String() +
		` ORDER BY invoice_date DESC, id DESC` + w.page(filter.Limit, filter.Offset)

	sales, err := queryAll(ctx, s.db, scanSale, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}

	return sales, nil
}

func (s *Store) GetBill(ctx context.Context, id int64) (*transaction.Bill, error) {
	return getBill(ctx, s.db, id, false)
}

func (s *Store) ListBills(ctx context.Context, filter transaction.BillFilter) ([]*transaction.Bill, error) {
	var w where

	addPtr(&w, "company_id = $%d", filter.CounterpartyID)
	addPtr(&w, "bill_date >= $%d", filter.StartDate)
	addPtr(&w, "bill_date <= $%d", filter.EndDate)

	query := `SELECT ` + billColumns + ` FROM billing` + w.String() +
		` ORDER BY bill_date DESC, id DESC` + w.page(filter.Limit, filter.Offset)

	bills, err := queryAll(ctx, s.db, scanBill, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}

	return bills, nil
}

func (s *Store) GetPayment(ctx context.Context, id int64) (*transaction.Payment, error) {
	return getPayment(ctx, s.db, id, false)
}

func (s *Store) ListPayments(ctx context.Context, filter transaction.PaymentFilter) ([]*transaction.Payment, error) {
	var w where

	addPtr(&w, "company_id = $%d", filter.CounterpartyID)
	addPtr(&w, "sale_id = $%d", filter.SaleID)
	addPtr(&w, "bill_id = $%d", filter.BillID)

	if filter.Direction != nil {
		w.add("payment_type = $%d", *filter.Direction)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments` + w.String() +
		` ORDER BY payment_date DESC, id DESC` + w.page(filter.Limit, filter.Offset)

	payments, err := queryAll(ctx, s.db, scanPayment, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}

	return payments, nil
}

func getSale(ctx context.Context, q querier, id int64, forUpdate bool) (*transaction.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1` + lockClause(forUpdate)

	sale, err := scanSale(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrSaleNotFound
		}

		return nil, conflictOr(fmt.Errorf("getting sale: %w", err))
	}

	return sale, nil
}

func getBill(ctx context.Context, q querier, id int64, forUpdate bool) (*transaction.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM billing WHERE id = $1` + lockClause(forUpdate)

	bill, err := scanBill(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrBillNotFound
		}

		return nil, conflictOr(fmt.Errorf("getting bill: %w", err))
	}

	return bill, nil
}

func getPayment(ctx context.Context, q querier, id int64, forUpdate bool) (*transaction.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1` + lockClause(forUpdate)

	p, err := scanPayment(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrPaymentNotFound
		}

		return nil, conflictOr(fmt.Errorf("getting payment: %w", err))
	}

	return p, nil
}

func queryAll[T any](
	ctx context.Context,
	q querier,
	scan func(scanner) (*T, error),
	query string,
	args ...any,
) ([]*T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*T

	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		out = append(out, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return out, nil
}

func lockClause(forUpdate bool) string {
	if forUpdate {
		return " FOR UPDATE"
	}

	return ""
}

// where accumulates AND-ed conditions with positional arguments. Each
// condition carries a single %d for its placeholder number.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(cond, len(w.args)))
}

func addPtr[T any](w *where, cond string, v *T) {
	if v != nil {
		w.add(cond, *v)
	}
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *where) page(limit, offset int) string {
	var out string

	if limit > 0 {
		out += fmt.Sprintf(" LIMIT %d", limit)
	}

	if offset > 0 {
		out += fmt.Sprintf(" OFFSET %d", offset)
	}

	return out
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// conflictOr marks err as transaction.ErrSerialization when Postgres aborted
// the transaction over a concurrent update, so the caller can run it again.
func conflictOr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case serializationFailure, deadlockDetected:
		return fmt.Errorf("%w: %w", transaction.ErrSerialization, err)
	}

	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
