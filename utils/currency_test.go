package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	cases := map[string]string{
		"0":          "$0.00",
		"5.5":        "$5.50",
		"999.999":    "$1,000.00",
		"1234.5":     "$1,234.50",
		"1234567.89": "$1,234,567.89",
		"-42.1":      "-$42.10",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatCurrency(decimal.RequireFromString(in)), in)
	}
}
