package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Ledger amounts are NUMERIC(15,2).
const ledgerScale = 2

var maxLedgerAmount = decimal.RequireFromString("9999999999999.99")

// ParseAmount parses a decimal string such as "500.00".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrValidation)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount is not a decimal number", ErrValidation)
	}
	return d, nil
}

// ValidateAmount checks that d fits the ledger: at most two fractional digits,
// not above the column maximum, and positive (or non-negative when
// allowZero is set).
func ValidateAmount(d decimal.Decimal, allowZero bool) error {
	if allowZero && d.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	if !allowZero && !d.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !d.Equal(d.Truncate(ledgerScale)) {
		return fmt.Errorf("%w: amount has more than %d fractional digits", ErrValidation, ledgerScale)
	}
	if d.GreaterThan(maxLedgerAmount) {
		return fmt.Errorf("%w: amount exceeds ledger maximum", ErrValidation)
	}
	return nil
}
