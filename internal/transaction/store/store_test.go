package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akaza138/sktexcot-accounting-test/internal/apperrors"
	"github.com/akaza138/sktexcot-accounting-test/internal/database/dbtest"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/tax"
	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
	"github.com/akaza138/sktexcot-accounting-test/internal/transaction/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newSale(companyID int64, number string) *transaction.Sale {
	a := tax.ComputeSale(tax.SaleInput{
		Quantity: dec("1.5"), Rate: dec("1.25"),
		GSTType: tax.IntraState, GSTRate: dec("18"), TCSAmount: decimal.Zero,
	})

	return &transaction.Sale{
		InvoiceNumber:  number,
		InvoiceDate:    date(2025, time.April, 10),
		CounterpartyID: companyID,
		Quantity:       dec("1.5"),
		Rate:           dec("1.25"),
		GSTType:        tax.IntraState,
		GSTRate:        dec("18"),
		TCSAmount:      decimal.Zero,
		BaseAmount:     a.Base,
		CGSTAmount:     a.CGST,
		SGSTAmount:     a.SGST,
		IGSTAmount:     a.IGST,
		TotalAmount:    a.Total,
		AmountPaid:     decimal.Zero,
		AmountDue:      a.Total,
		PaymentStatus:  transaction.StatusUnpaid,
	}
}

// commit runs fn in its own unit of work.
func commit(t *testing.T, s *store.Store, fn func(tx transaction.Tx)) {
	t.Helper()

	tx, err := s.Begin(context.Background())
	require.NoError(t, err)

	fn(tx)

	require.NoError(t, tx.Commit())
}

func setup(t *testing.T) (*sql.DB, *store.Store, int64) {
	t.Helper()

	db := dbtest.Open(t)

	return db, store.New(db), dbtest.Company(t, db, "Acme Knits", true)
}

func TestStore_NextInvoiceSequence(t *testing.T) {
	ctx := context.Background()

	t.Run("SeedsFromIssuedNumbers", func(t *testing.T) {
		_, s, company := setup(t)

		commit(t, s, func(tx transaction.Tx) {
			require.NoError(t, tx.CreateSale(ctx, newSale(company, "SK/2025/0007")))
		})

		var got []int

		commit(t, s, func(tx transaction.Tx) {
			for range 2 {
				seq, err := tx.NextInvoiceSequence(ctx, "SK", 2025)
				require.NoError(t, err)

				got = append(got, seq)
			}

			seq, err := tx.NextInvoiceSequence(ctx, "SK", 2026)
			require.NoError(t, err)

			got = append(got, seq)
		})

		assert.Equal(t, []int{8, 9, 1}, got)
	})

	t.Run("RolledBackBumpIsReissued", func(t *testing.T) {
		_, s, _ := setup(t)

		tx, err := s.Begin(ctx)
		require.NoError(t, err)

		seq, err := tx.NextInvoiceSequence(ctx, "SK", 2025)
		require.NoError(t, err)
		assert.Equal(t, 1, seq)
		require.NoError(t, tx.Rollback())

		commit(t, s, func(tx transaction.Tx) {
			seq, err := tx.NextInvoiceSequence(ctx, "SK", 2025)
			require.NoError(t, err)
			assert.Equal(t, 1, seq)
		})
	})

	t.Run("ConcurrentBumpIsSerializationFailure", func(t *testing.T) {
		_, s, _ := setup(t)

		commit(t, s, func(tx transaction.Tx) {
			_, err := tx.NextInvoiceSequence(ctx, "SK", 2025)
			require.NoError(t, err)
		})

		first, err := s.Begin(ctx)
		require.NoError(t, err)
		defer first.Rollback()

		second, err := s.Begin(ctx)
		require.NoError(t, err)
		defer second.Rollback()

		// Take second's snapshot before first commits.
		_, err = second.BillNumberTaken(ctx, "none", 0)
		require.NoError(t, err)

		seq, err := first.NextInvoiceSequence(ctx, "SK", 2025)
		require.NoError(t, err)
		assert.Equal(t, 2, seq)
		require.NoError(t, first.Commit())

		_, err = second.NextInvoiceSequence(ctx, "SK", 2025)
		require.ErrorIs(t, err, transaction.ErrSerialization)
		require.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestStore_Sale(t *testing.T) {
	ctx := context.Background()
	_, s, company := setup(t)

	sale := newSale(company, "SK/2025/0001")

	commit(t, s, func(tx transaction.Tx) {
		require.NoError(t, tx.CreateSale(ctx, sale))
	})
	require.NotZero(t, sale.ID)

	got, err := s.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "SK/2025/0001", got.InvoiceNumber)
	assert.True(t, sale.InvoiceDate.Equal(got.InvoiceDate))
	assertDec(t, "1.5", got.Quantity)
	assertDec(t, "1.88", got.BaseAmount)
	assertDec(t, "0.17", got.CGSTAmount)
	assertDec(t, "0.17", got.SGSTAmount)
	assertDec(t, "2.22", got.TotalAmount)
	assert.Equal(t, transaction.StatusUnpaid, got.PaymentStatus)

	t.Run("DuplicateNumber", func(t *testing.T) {
		tx, err := s.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback()

		err = tx.CreateSale(ctx, newSale(company, "SK/2025/0001"))
		require.ErrorIs(t, err, transaction.ErrDuplicateInvoiceNumber)
	})

	t.Run("LockAndUpdate", func(t *testing.T) {
		commit(t, s, func(tx transaction.Tx) {
			locked, err := tx.LockSale(ctx, sale.ID)
			require.NoError(t, err)

			locked.AmountPaid = dec("1")
			locked.AmountDue = dec("1.22")
			locked.PaymentStatus = transaction.StatusPartial
			locked.PaymentMode = transaction.ModeUPI

			require.NoError(t, tx.UpdateSale(ctx, locked))
		})

		got, err := s.GetSale(ctx, sale.ID)
		require.NoError(t, err)
		assertDec(t, "1", got.AmountPaid)
		assertDec(t, "1.22", got.AmountDue)
		assert.Equal(t, transaction.StatusPartial, got.PaymentStatus)
		assert.Equal(t, transaction.ModeUPI, got.PaymentMode)
		assert.NotNil(t, got.UpdatedAt)
	})

	t.Run("ListFiltersByCounterparty", func(t *testing.T) {
		other := company + 1000

		sales, err := s.ListSales(ctx, transaction.SaleFilter{CounterpartyID: &company})
		require.NoError(t, err)
		assert.Len(t, sales, 1)

		sales, err = s.ListSales(ctx, transaction.SaleFilter{CounterpartyID: &other})
		require.NoError(t, err)
		assert.Empty(t, sales)
	})

	t.Run("Delete", func(t *testing.T) {
		commit(t, s, func(tx transaction.Tx) {
			require.NoError(t, tx.DeleteSale(ctx, sale.ID))
		})

		_, err := s.GetSale(ctx, sale.ID)
		require.ErrorIs(t, err, transaction.ErrSaleNotFound)

		tx, err := s.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback()

		require.ErrorIs(t, tx.DeleteSale(ctx, sale.ID), transaction.ErrSaleNotFound)
	})
}

func TestStore_Payments(t *testing.T) {
	ctx := context.Background()
	_, s, company := setup(t)

	sale := newSale(company, "SK/2025/0001")

	var settlement, extra *transaction.Payment

	commit(t, s, func(tx transaction.Tx) {
		require.NoError(t, tx.CreateSale(ctx, sale))

		settlement = &transaction.Payment{
			Direction: transaction.DirectionReceipt, CounterpartyID: company,
			Amount: dec("1"), PaymentDate: sale.InvoiceDate, Mode: transaction.ModeUPI,
			SaleID: &sale.ID, Settlement: true,
		}
		require.NoError(t, tx.CreatePayment(ctx, settlement))

		extra = &transaction.Payment{
			Direction: transaction.DirectionReceipt, CounterpartyID: company,
			Amount: dec("0.5"), PaymentDate: date(2025, time.April, 12), Mode: transaction.ModeBank,
			SaleID: &sale.ID,
		}
		require.NoError(t, tx.CreatePayment(ctx, extra))

		require.NoError(t, tx.Ledger().Post(ctx, &ledger.Entry{
			CounterpartyID: company, Date: extra.PaymentDate, Type: ledger.TypeReceipt,
			Reference: extra.Reference(), Debit: decimal.Zero, Credit: extra.Amount,
		}))
	})

	t.Run("LinkedOldestFirst", func(t *testing.T) {
		commit(t, s, func(tx transaction.Tx) {
			linked, err := tx.LinkedPayments(ctx, sale.Reference())
			require.NoError(t, err)
			require.Len(t, linked, 2)

			assert.Equal(t, settlement.ID, linked[0].ID)
			assert.True(t, linked[0].Settlement)
			assert.Equal(t, extra.ID, linked[1].ID)
			assert.False(t, linked[1].Settlement)
		})
	})

	t.Run("SecondSettlementRejected", func(t *testing.T) {
		tx, err := s.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback()

		err = tx.CreatePayment(ctx, &transaction.Payment{
			Direction: transaction.DirectionReceipt, CounterpartyID: company,
			Amount: dec("1"), PaymentDate: sale.InvoiceDate, Mode: transaction.ModeUPI,
			SaleID: &sale.ID, Settlement: true,
		})
		require.Error(t, err)
	})

	t.Run("UpdateAndFilter", func(t *testing.T) {
		commit(t, s, func(tx transaction.Tx) {
			p, err := tx.LockPayment(ctx, extra.ID)
			require.NoError(t, err)

			p.Amount = dec("0.75")
			p.Notes = "corrected"
			require.NoError(t, tx.UpdatePayment(ctx, p))
		})

		got, err := s.GetPayment(ctx, extra.ID)
		require.NoError(t, err)
		assertDec(t, "0.75", got.Amount)
		assert.Equal(t, "corrected", got.Notes)

		receipts := transaction.DirectionReceipt
		payments, err := s.ListPayments(ctx, transaction.PaymentFilter{SaleID: &sale.ID, Direction: &receipts})
		require.NoError(t, err)
		assert.Len(t, payments, 2)

		outgoing := transaction.DirectionPayment
		payments, err = s.ListPayments(ctx, transaction.PaymentFilter{Direction: &outgoing})
		require.NoError(t, err)
		assert.Empty(t, payments)
	})

	t.Run("LedgerSharesTheUnitOfWork", func(t *testing.T) {
		tx, err := s.Begin(ctx)
		require.NoError(t, err)

		n, err := tx.Ledger().DeleteByReference(ctx, extra.Reference())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		require.NoError(t, tx.DeletePayment(ctx, extra.ID))
		require.NoError(t, tx.Rollback())

		_, err = s.GetPayment(ctx, extra.ID)
		require.NoError(t, err)

		commit(t, s, func(tx transaction.Tx) {
			e, err := tx.Ledger().Find(ctx, extra.Reference(), nil)
			require.NoError(t, err)
			assertDec(t, "0.5", e.Credit)
		})
	})
}

func TestStore_BillNumberTaken(t *testing.T) {
	ctx := context.Background()
	_, s, company := setup(t)

	a := tax.ComputeBill(tax.BillInput{Quantity: dec("1"), Rate: dec("100"), GSTRate: dec("12")})

	bill := &transaction.Bill{
		BillNumber: "B-1", BillDate: date(2025, time.May, 3), CounterpartyID: company,
		Quantity: dec("1"), Rate: dec("100"), GSTType: tax.IntraState, GSTRate: dec("12"),
		TDSRate: decimal.Zero, BaseAmount: a.Base, GSTAmount: a.GST, TDSAmount: a.TDS,
		TotalAmount: a.Total, AmountPaid: decimal.Zero, AmountDue: a.Total,
		PaymentStatus: transaction.StatusUnpaid,
	}

	commit(t, s, func(tx transaction.Tx) {
		require.NoError(t, tx.CreateBill(ctx, bill))
	})

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	taken, err := tx.BillNumberTaken(ctx, "B-1", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = tx.BillNumberTaken(ctx, "B-1", bill.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a bill does not collide with itself")

	err = tx.CreateBill(ctx, &transaction.Bill{
		BillNumber: "B-1", BillDate: bill.BillDate, CounterpartyID: company,
		Quantity: bill.Quantity, Rate: bill.Rate, GSTType: bill.GSTType, GSTRate: bill.GSTRate,
		BaseAmount: a.Base, TotalAmount: a.Total, AmountDue: a.Total,
		PaymentStatus: transaction.StatusUnpaid,
	})
	require.ErrorIs(t, err, transaction.ErrDuplicateBillNumber)
}
