package transaction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
)

func TestNextSequence(t *testing.T) {
	type testCase struct {
		name     string
		existing []string
		year     int
		want     int
	}

	tests := []testCase{
		{name: "EmptyScope", year: 2025, want: 1},
		{
			name:     "HighestNumericSuffix",
			existing: []string{"SK/2025/0002", "SK/2025/0010", "SK/2025/0009"},
			year:     2025,
			want:     11,
		},
		{
			name:     "OtherYearsIgnored",
			existing: []string{"SK/2024/0040", "SK/2025/0003"},
			year:     2025,
			want:     4,
		},
		{
			name:     "UnparsableIgnored",
			existing: []string{"SK/2025/draft", "XX/2025/0099", "SK/2025/0001"},
			year:     2025,
			want:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transaction.NextSequence(tt.existing, "SK", tt.year))
		})
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "SK/2025/0007", transaction.FormatInvoiceNumber("SK", 2025, 7))
	assert.Equal(t, "SK/2025/12345", transaction.FormatInvoiceNumber("SK", 2025, 12345))
}

func TestSettle(t *testing.T) {
	type testCase struct {
		name        string
		total, paid string
		floor       bool
		wantDue     string
		wantStatus  transaction.PaymentStatus
	}

	tests := []testCase{
		{name: "Unpaid", total: "1180", paid: "0", wantDue: "1180", wantStatus: transaction.StatusUnpaid},
		{name: "Partial", total: "1180", paid: "350", wantDue: "830", wantStatus: transaction.StatusPartial},
		{name: "Exact", total: "1180", paid: "1180", wantDue: "0", wantStatus: transaction.StatusPaid},
		{name: "OverpaidUnfloored", total: "1180", paid: "1200", wantDue: "-20", wantStatus: transaction.StatusPaid},
		{name: "OverpaidFloored", total: "1180", paid: "1200", floor: true, wantDue: "0", wantStatus: transaction.StatusPaid},
		{name: "ZeroTotal", total: "0", paid: "0", wantDue: "0", wantStatus: transaction.StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due, status := transaction.Settle(dec(tt.total), dec(tt.paid), tt.floor)

			assertDec(t, tt.wantDue, due)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}
