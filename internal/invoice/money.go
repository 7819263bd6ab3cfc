package invoice

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount as rand currency with thousands separators
// and two decimals, e.g. "R1,234.50".
func FormatAmount(amount float64) string {
	return moneyPrinter.Sprintf("R%.2f", amount)
}
