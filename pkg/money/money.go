// Package money formats and parses monetary amounts.
// All values are displayed in Moroccan Dirham (MAD) with fr-MA style
// grouping (space as thousand separator).
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// Code is the display currency code.
	Code = "MAD"
	// Name is the full currency name.
	Name = "Dirham Marocain"
)

// Format renders an amount as a grouped integer (or two decimals when
// withDecimals is set) suffixed with the currency code, e.g. "1 200 MAD".
func Format(amount float64, withDecimals bool) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "0 " + Code
	}
	if withDecimals {
		return groupDigits(fmt.Sprintf("%.2f", amount)) + " " + Code
	}
	return groupDigits(fmt.Sprintf("%.0f", amount)) + " " + Code
}

// FormatCompact abbreviates large amounts for chart labels, e.g. "1.2K MAD".
func FormatCompact(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "0 " + Code
	}
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("%.1fM %s", amount/1_000_000, Code)
	case amount >= 1_000:
		return fmt.Sprintf("%.1fK %s", amount/1_000, Code)
	default:
		return fmt.Sprintf("%d %s", int64(math.Round(amount)), Code)
	}
}

// ParseAmount extracts a numeric amount from free-form input, dropping
// grouping spaces, currency text and anything else that is not part of a
// decimal number. Unparseable input yields 0.
func ParseAmount(input string) float64 {
	var b strings.Builder
	for _, r := range input {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// groupDigits inserts a space every three digits of the integer part.
// The input must be a plain %f-formatted number.
func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
