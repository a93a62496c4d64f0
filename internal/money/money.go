// Package money renders amounts for people: rupee symbol, two decimals and
// Indian digit grouping.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Format renders d with grouping and exactly two decimals.
func Format(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// Rupees is Format with a ₹ prefix, keeping the sign in front.
func Rupees(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-₹" + Format(d.Neg())
	}

	return "₹" + Format(d)
}
