package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 500.00 ")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(d))

	_, err = ParseAmount("")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseAmount("500; DROP TABLE accounts")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		allowZero bool
		wantErr   bool
	}{
		{"two decimals", "500.25", false, false},
		{"trailing zeros", "500.000", false, false},
		{"three decimals", "0.001", false, true},
		{"zero rejected", "0", false, true},
		{"zero allowed", "0", true, false},
		{"negative", "-1.00", false, true},
		{"negative with zero allowed", "-1.00", true, true},
		{"maximum", "9999999999999.99", false, false},
		{"over maximum", "10000000000000.00", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount), tt.allowZero)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
