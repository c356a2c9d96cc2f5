package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount caps any single submitted amount, in cents.
const MaxAmount int64 = 100_000_000_000_000

var (
	ErrAmountNotNumeric = errors.New("amount is not a number")
	ErrAmountPrecision  = errors.New("amount has more than two decimal places")
	ErrAmountOutOfRange = errors.New("amount is out of range")
	hundred             = decimal.NewFromInt(100)
	maxAmountDecimal    = decimal.NewFromInt(MaxAmount)
)

// ParseAmount converts a user-entered currency amount ("12", "12.5", "12.50")
// into cents. The sign is preserved; positivity is the caller's rule.
func ParseAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrAmountNotNumeric
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, ErrAmountNotNumeric
	}

	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return 0, ErrAmountPrecision
	}
	if cents.Abs().GreaterThan(maxAmountDecimal) {
		return 0, ErrAmountOutOfRange
	}

	return cents.IntPart(), nil
}

// FormatAmount renders cents as a two-decimal string
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
