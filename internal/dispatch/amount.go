package dispatch

import (
	"math"
	"strconv"
	"strings"

	"nomorebugs-admin/internal/apperr"
)

// FormatAmount validates an admin-entered amount and renders it as
// "<amount> <currency>".
func FormatAmount(raw, currency string) (string, error) {
	s, err := ParseAmount(raw, currency)
	if err != nil {
		return "", err
	}
	if currency == "" {
		return s, nil
	}
	return s + " " + currency, nil
}

// ParseAmount returns the bare positive decimal in raw. A trailing currency
// code and thousands separators are accepted.
func ParseAmount(raw, currency string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", apperr.Validation("amount is required")
	}
	if currency != "" && len(s) > len(currency) && strings.EqualFold(s[len(s)-len(currency):], currency) {
		s = strings.TrimSpace(s[:len(s)-len(currency)])
	}
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !plainDecimal(s) || math.IsInf(v, 0) {
		return "", apperr.Validation("amount must be a number")
	}
	if v <= 0 {
		return "", apperr.Validation("amount must be greater than zero")
	}
	return s, nil
}

func plainDecimal(s string) bool {
	dots := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return dots <= 1
}
