package services

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// RoundMoney rounds amount half away from zero to cents. Totals are summed
// unrounded; this is only applied when an amount is presented.
func RoundMoney(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}

// FormatMoney formats amount with the currency symbol, thousands separators
// and exactly 2 decimal places, e.g. FormatMoney(1234.5, "$") = "$1,234.50".
func FormatMoney(amount float64, symbol string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	d := decimal.NewFromFloat(amount).Round(2)

	negative := d.IsNegative()
	d = d.Abs()

	// StringFixed always yields "<int>.<2 digits>".
	fixed := d.StringFixed(2)
	cents := fixed[len(fixed)-3:]

	result := symbol + humanize.Comma(d.IntPart()) + cents
	if negative {
		result = "-" + result
	}
	return result
}

// FormatPercent formats a markup percentage, dropping a zero fraction:
// 10 -> "10%", 12.5 -> "12.5%".
func FormatPercent(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("%.0f%%", p)
	}
	return humanize.Ftoa(p) + "%"
}
