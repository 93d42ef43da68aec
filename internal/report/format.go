// Package report renders calculations for terminals and chat messages.
package report

import (
	"github.com/shopspring/decimal"
)

// Money formats v with two decimals and the currency symbol, sign first: "-£16.59".
func Money(v float64, currency string) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-" + currency + d.Abs().StringFixed(2)
	}
	return currency + d.StringFixed(2)
}

// Percent formats a fraction as a percentage with two decimals: 0.02357 -> "2.36%".
func Percent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Shift(2).StringFixed(2) + "%"
}

// Price formats a price level without trailing zeros, capped at 8 decimals.
func Price(v float64) string {
	return decimal.NewFromFloat(v).Round(8).String()
}

// Ratio formats a risk/reward ratio with two decimals.
func Ratio(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
