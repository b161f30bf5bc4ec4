package reporting

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders an amount as whole rupees with Indian digit grouping,
// e.g. 123456.7 becomes "₹1,23,457".
func FormatINR(amount decimal.Decimal) string {
	rounded := amount.Round(0).IntPart()
	if rounded < 0 {
		return "-₹" + inrPrinter.Sprintf("%d", -rounded)
	}
	return "₹" + inrPrinter.Sprintf("%d", rounded)
}

// Thousands scales an amount to thousands for chart axes.
func Thousands(amount decimal.Decimal) float64 {
	return amount.Div(decimal.NewFromInt(1000)).InexactFloat64()
}

func sumAmounts(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
