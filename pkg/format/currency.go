// Package format renders monetary values for people rather than machines.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := message.NewPrinter(language.English).Sprintf("%.2f", math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Rate renders an exchange rate with four decimals and thousands separators (e.g., "1,234.5678").
func Rate(value float64) string {
	return message.NewPrinter(language.English).Sprintf("%.4f", value)
}
