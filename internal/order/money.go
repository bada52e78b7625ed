package order

import "github.com/shopspring/decimal"

// FormatMoney renders d with exactly two decimal places, rounding half away
// from zero: 9.999 -> "10.00", 1.005 -> "1.01".
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// LineTotal is the exact quantity x unit price. Rounding happens only when the
// result is formatted.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
