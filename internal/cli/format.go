// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency code is configured.
const DefaultCurrency = money.BDT

// FormatCurrency formats amount in the currency with the given ISO code,
// rounded half away from zero to the currency's minor unit.
// e.g., 1234.5, "BDT" -> "BDT 1,234.50"; -100, "USD" -> "-USD 100.00"
//
// The code is used as the prefix rather than the currency glyph so the text
// renders in any font.
func FormatCurrency(amount float64, code string) string {
	if code == "" {
		code = DefaultCurrency
	}
	cur := money.New(0, code).Currency()
	minor := decimal.NewFromFloat(amount).Round(int32(cur.Fraction)).Shift(int32(cur.Fraction)).IntPart()
	f := money.NewFormatter(cur.Fraction, cur.Decimal, cur.Thousand, cur.Code+" ", "$1")
	return f.Format(minor)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a percentage with at most one decimal.
// e.g., 40.5 -> "40.5%", 10 -> "10%", -10 -> "-10%"
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(p).Round(1).String() + "%"
}

// FormatTotal formats the running total of an allocation table to one
// decimal. e.g., 99.95 -> "100.0%"
func FormatTotal(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(1) + "%"
}

// FormatDate renders a creation date the way project lists show it.
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
