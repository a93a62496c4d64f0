package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/akaza138/sktexcot-accounting-test/internal/tax"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestComputeSale(t *testing.T) {
	type want struct {
		base, cgst, sgst, igst, total string
	}

	type testCase struct {
		name string
		in   tax.SaleInput
		want want
	}

	tests := []testCase{
		{
			name: "IntraStateSplitsGST",
			in: tax.SaleInput{
				Quantity: dec("10"), Rate: dec("100"),
				GSTType: tax.IntraState, GSTRate: dec("18"), TCSAmount: dec("0"),
			},
			want: want{base: "1000", cgst: "90", sgst: "90", igst: "0", total: "1180"},
		},
		{
			name: "InterStateBooksIGST",
			in: tax.SaleInput{
				Quantity: dec("10"), Rate: dec("100"),
				GSTType: tax.InterState, GSTRate: dec("18"), TCSAmount: dec("0"),
			},
			want: want{base: "1000", cgst: "0", sgst: "0", igst: "180", total: "1180"},
		},
		{
			name: "TCSAddedToTotal",
			in: tax.SaleInput{
				Quantity: dec("2.5"), Rate: dec("40"),
				GSTType: tax.IntraState, GSTRate: dec("5"), TCSAmount: dec("1.25"),
			},
			want: want{base: "100", cgst: "2.5", sgst: "2.5", igst: "0", total: "106.25"},
		},
		{
			name: "ZeroRate",
			in: tax.SaleInput{
				Quantity: dec("3"), Rate: dec("7"),
				GSTType: tax.InterState, GSTRate: dec("0"), TCSAmount: dec("0"),
			},
			want: want{base: "21", cgst: "0", sgst: "0", igst: "0", total: "21"},
		},
		{
			name: "NegativeInputsAcceptedArithmetically",
			in: tax.SaleInput{
				Quantity: dec("-1"), Rate: dec("100"),
				GSTType: tax.IntraState, GSTRate: dec("10"), TCSAmount: dec("0"),
			},
			want: want{base: "-100", cgst: "-5", sgst: "-5", igst: "0", total: "-110"},
		},
		{
			name: "FractionalGSTRoundedToPaise",
			in: tax.SaleInput{
				Quantity: dec("1"), Rate: dec("1.25"),
				GSTType: tax.IntraState, GSTRate: dec("18"), TCSAmount: dec("0"),
			},
			want: want{base: "1.25", cgst: "0.12", sgst: "0.11", igst: "0", total: "1.48"},
		},
		{
			name: "FractionalIGSTRoundedToPaise",
			in: tax.SaleInput{
				Quantity: dec("1"), Rate: dec("1.25"),
				GSTType: tax.InterState, GSTRate: dec("18"), TCSAmount: dec("0"),
			},
			want: want{base: "1.25", cgst: "0", sgst: "0", igst: "0.23", total: "1.48"},
		},
		{
			name: "FractionalQuantityBaseRounded",
			in: tax.SaleInput{
				Quantity: dec("0.333"), Rate: dec("10.01"),
				GSTType: tax.IntraState, GSTRate: dec("5"), TCSAmount: dec("0.05"),
			},
			want: want{base: "3.33", cgst: "0.09", sgst: "0.08", igst: "0", total: "3.55"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tax.ComputeSale(tt.in)

			assertAmount(t, tt.want.base, got.Base, "base")
			assertAmount(t, tt.want.cgst, got.CGST, "cgst")
			assertAmount(t, tt.want.sgst, got.SGST, "sgst")
			assertAmount(t, tt.want.igst, got.IGST, "igst")
			assertAmount(t, tt.want.total, got.Total, "total")

			sum := got.Base.Add(got.CGST).Add(got.SGST).Add(got.IGST).Add(tt.in.TCSAmount)
			assert.True(t, sum.Equal(got.Total), "total must equal its components")

			for _, d := range []decimal.Decimal{got.Base, got.CGST, got.SGST, got.IGST, got.Total} {
				assert.True(t, d.Equal(d.Round(2)), "%s has sub-paisa digits", d)
			}

			split := got.CGST.Add(got.SGST)
			assert.False(t, !split.IsZero() && !got.IGST.IsZero(), "only one GST form may be non-zero")
		})
	}
}

func TestComputeBill(t *testing.T) {
	type want struct {
		base, gst, tds, total string
	}

	type testCase struct {
		name string
		in   tax.BillInput
		want want
	}

	tests := []testCase{
		{
			name: "WithTDS",
			in: tax.BillInput{
				Quantity: dec("5"), Rate: dec("200"), GSTRate: dec("12"),
				TDSApplicable: true, TDSRate: dec("2"),
			},
			want: want{base: "1000", gst: "120", tds: "20", total: "1100"},
		},
		{
			name: "TDSRateIgnoredWhenNotApplicable",
			in: tax.BillInput{
				Quantity: dec("5"), Rate: dec("200"), GSTRate: dec("12"),
				TDSApplicable: false, TDSRate: dec("2"),
			},
			want: want{base: "1000", gst: "120", tds: "0", total: "1120"},
		},
		{
			name: "FractionalRates",
			in: tax.BillInput{
				Quantity: dec("1"), Rate: dec("333.33"), GSTRate: dec("18"),
				TDSApplicable: true, TDSRate: dec("1"),
			},
			want: want{base: "333.33", gst: "60", tds: "3.33", total: "390"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tax.ComputeBill(tt.in)

			assertAmount(t, tt.want.base, got.Base, "base")
			assertAmount(t, tt.want.gst, got.GST, "gst")
			assertAmount(t, tt.want.tds, got.TDS, "tds")
			assertAmount(t, tt.want.total, got.Total, "total")

			assert.True(t, got.Base.Add(got.GST).Sub(got.TDS).Equal(got.Total))

			for _, d := range []decimal.Decimal{got.Base, got.GST, got.TDS, got.Total} {
				assert.True(t, d.Equal(d.Round(2)), "%s has sub-paisa digits", d)
			}

			if !tt.in.TDSApplicable {
				assert.True(t, got.TDS.IsZero())
			}
		})
	}
}

func TestRounding(t *testing.T) {
	assertAmount(t, "0.13", tax.Amount(dec("0.125")), "amount")
	assertAmount(t, "-0.13", tax.Amount(dec("-0.125")), "negative amount")
	assertAmount(t, "1.235", tax.Quantity(dec("1.2345")), "quantity")
}

func TestGSTType_Valid(t *testing.T) {
	assert.True(t, tax.IntraState.Valid())
	assert.True(t, tax.InterState.Valid())
	assert.False(t, tax.GSTType("export").Valid())
}
