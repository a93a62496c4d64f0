// Package tax derives base, GST, TCS and TDS amounts for sales invoices and
// purchase bills. All functions are pure. Every derived amount is rounded to
// paise and totals are summed from the rounded parts.
package tax

import "github.com/shopspring/decimal"

// GSTType selects how GST is split between the central and state components.
type GSTType string

const (
	IntraState GSTType = "intra_state"
	InterState GSTType = "inter_state"
)

func (t GSTType) Valid() bool {
	return t == IntraState || t == InterState
}

// AmountScale and QuantityScale are the stored scales of money and quantity
// columns.
const (
	AmountScale   int32 = 2
	QuantityScale int32 = 3
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Amount rounds d to paise.
func Amount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}

// Quantity rounds d to the stored quantity scale.
func Quantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}

type SaleInput struct {
	Quantity  decimal.Decimal
	Rate      decimal.Decimal
	GSTType   GSTType
	GSTRate   decimal.Decimal
	TCSAmount decimal.Decimal
}

type SaleAmounts struct {
	Base  decimal.Decimal
	CGST  decimal.Decimal
	SGST  decimal.Decimal
	IGST  decimal.Decimal
	Total decimal.Decimal
}

// GST returns the combined GST of the sale.
func (a SaleAmounts) GST() decimal.Decimal {
	return a.CGST.Add(a.SGST).Add(a.IGST)
}

// ComputeSale splits GST evenly into CGST and SGST for intra-state supply and
// books it entirely as IGST otherwise. TCS is added on top of the taxed base.
// When the rounded GST has an odd paisa, CGST carries it.
func ComputeSale(in SaleInput) SaleAmounts {
	base := Amount(in.Quantity.Mul(in.Rate))
	gst := percentOf(base, in.GSTRate)
	tcs := Amount(in.TCSAmount)

	out := SaleAmounts{
		Base: base,
		CGST: decimal.Zero,
		SGST: decimal.Zero,
		IGST: decimal.Zero,
	}

	if in.GSTType == IntraState {
		out.CGST = Amount(gst.Div(two))
		out.SGST = gst.Sub(out.CGST)
	} else {
		out.IGST = gst
	}

	out.Total = base.Add(out.CGST).Add(out.SGST).Add(out.IGST).Add(tcs)

	return out
}

type BillInput struct {
	Quantity      decimal.Decimal
	Rate          decimal.Decimal
	GSTRate       decimal.Decimal
	TDSApplicable bool
	TDSRate       decimal.Decimal
}

type BillAmounts struct {
	Base  decimal.Decimal
	GST   decimal.Decimal
	TDS   decimal.Decimal
	Total decimal.Decimal
}

// ComputeBill withholds TDS from the payable total when it applies.
func ComputeBill(in BillInput) BillAmounts {
	base := Amount(in.Quantity.Mul(in.Rate))
	gst := percentOf(base, in.GSTRate)

	tds := decimal.Zero
	if in.TDSApplicable {
		tds = percentOf(base, in.TDSRate)
	}

	return BillAmounts{
		Base:  base,
		GST:   gst,
		TDS:   tds,
		Total: base.Add(gst).Sub(tds),
	}
}

func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return Amount(amount.Mul(rate).Div(hundred))
}
