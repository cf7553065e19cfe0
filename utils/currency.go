package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid currency amount")

// FormatCurrencyBRL formats an amount as Brazilian Real.
// Example: 1234.5 -> "R$ 1.234,50"
func FormatCurrencyBRL(amount float64) string {
	return FormatDecimalBRL(decimal.NewFromFloat(amount))
}

func FormatDecimalBRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	formatted := amount.StringFixed(2)
	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	// thousands separator
	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return fmt.Sprintf("%sR$ %s,%s", sign, strings.Join(groups, "."), decimalPart)
}

// ParseCurrency reads a formatted amount such as "R$ 1.234,56", "12,5",
// "1,234.56" or "15.00". When both separators appear the last one is the
// decimal mark. A lone comma is always decimal (pt-BR); a lone dot followed
// by exactly three digits is a thousands separator.
func ParseCurrency(raw string) (decimal.Decimal, error) {
	var b strings.Builder
	negative := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			b.WriteRune(r)
		case r == '-':
			negative = true
		}
	}
	s := b.String()
	if s == "" || strings.Trim(s, ",.") == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	var normalized string
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			normalized = strings.ReplaceAll(s, ".", "")
			normalized = strings.Replace(normalized, ",", ".", 1)
		} else {
			normalized = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			normalized = strings.ReplaceAll(s, ",", "")
		} else {
			normalized = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			normalized = strings.ReplaceAll(s, ".", "")
		} else {
			normalized = s
		}
	default:
		normalized = s
	}

	if strings.Count(normalized, ".") > 1 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	value, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if negative {
		value = value.Neg()
	}
	return value, nil
}
