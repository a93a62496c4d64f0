package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akaza138/sktexcot-accounting-test/internal/database/dbtest"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func day(d int) time.Time {
	return time.Date(2025, time.April, d, 0, 0, 0, 0, time.UTC)
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	db := dbtest.Open(t)
	company := dbtest.Company(t, db, "Acme Knits", true)
	s := store.New(db)

	sale := ledger.Reference{Kind: ledger.KindSale, ID: 1}
	receipt := ledger.Reference{Kind: ledger.KindPayment, ID: 7}

	entries := []*ledger.Entry{
		{
			CounterpartyID: company, Date: day(10), Type: ledger.TypeSale, Reference: sale,
			Debit: dec("1180"), Credit: decimal.Zero, Narration: "Invoice #SK/2025/0001",
		},
		{
			CounterpartyID: company, Date: day(3), Type: ledger.TypeReceipt, Reference: receipt,
			Debit: decimal.Zero, Credit: dec("200.50"), Narration: "Receipt #7",
		},
		{
			CounterpartyID: company, Date: day(10), Type: ledger.TypeReceipt, Reference: sale,
			Debit: decimal.Zero, Credit: dec("80"),
		},
	}

	for _, e := range entries {
		require.NoError(t, s.Post(ctx, e))
		require.NotZero(t, e.ID)
	}

	t.Run("FindByType", func(t *testing.T) {
		typ := ledger.TypeReceipt

		got, err := s.Find(ctx, sale, &typ)
		require.NoError(t, err)
		assert.Equal(t, entries[2].ID, got.ID)
		assert.Empty(t, got.Narration)

		got, err = s.Find(ctx, sale, nil)
		require.NoError(t, err)
		assert.Equal(t, entries[0].ID, got.ID, "oldest row without a type")
		assert.True(t, day(10).Equal(got.Date))

		_, err = s.Find(ctx, ledger.Reference{Kind: ledger.KindBill, ID: 1}, nil)
		require.ErrorIs(t, err, ledger.ErrEntryNotFound)
	})

	t.Run("ListOrdersByDateThenID", func(t *testing.T) {
		got, err := s.List(ctx, company, nil, nil)
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, []int64{entries[1].ID, entries[0].ID, entries[2].ID},
			[]int64{got[0].ID, got[1].ID, got[2].ID})

		from, to := day(4), day(10)

		got, err = s.List(ctx, company, &from, &to)
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = s.List(ctx, company, nil, new(day(3)))
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("SumAmountsBefore", func(t *testing.T) {
		totals, err := s.SumAmounts(ctx, company, new(day(10)))
		require.NoError(t, err)
		assertDec(t, "0", totals.Debit)
		assertDec(t, "200.50", totals.Credit)

		totals, err = s.SumAmounts(ctx, company, nil)
		require.NoError(t, err)
		assertDec(t, "1180", totals.Debit)
		assertDec(t, "280.50", totals.Credit)
	})

	t.Run("UpdateAmount", func(t *testing.T) {
		require.NoError(t, s.UpdateAmount(ctx, entries[1].ID, decimal.Zero, dec("250"), day(5), "Receipt #7 (Updated)"))

		got, err := s.Find(ctx, receipt, nil)
		require.NoError(t, err)
		assertDec(t, "250", got.Credit)
		assert.True(t, day(5).Equal(got.Date))
		assert.Equal(t, "Receipt #7 (Updated)", got.Narration)

		err = s.UpdateAmount(ctx, 999_999, decimal.Zero, decimal.Zero, day(5), "")
		require.ErrorIs(t, err, ledger.ErrEntryNotFound)
	})

	t.Run("DeleteByReference", func(t *testing.T) {
		n, err := s.DeleteByReference(ctx, sale)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = s.DeleteByReference(ctx, sale)
		require.NoError(t, err)
		assert.Zero(t, n)

		got, err := s.List(ctx, company, nil, nil)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, entries[1].ID, got[0].ID)
	})
}
