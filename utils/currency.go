package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency formats an amount in dollars with thousands separators.
// Example: 1234.5 -> "$1,234.50"
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.Sign() < 0 {
		sign = "-"
		amount = amount.Abs()
	}

	formatted := amount.StringFixed(2)
	parts := strings.Split(formatted, ".")
	integerPart := parts[0]

	// group digits by thousands
	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return sign + "$" + strings.Join(groups, ",") + "." + parts[1]
}
