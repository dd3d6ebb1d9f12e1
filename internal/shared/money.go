package shared

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var arPrinter = message.NewPrinter(language.MustParse("es-AR"))

// Round2 rounds a monetary amount to two decimals. Balances are kept
// unrounded internally, rounding happens at presentation time only.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatARS renders an amount as Argentine pesos for documents and
// exports, e.g. "$ 1.234,50".
func FormatARS(v float64) string {
	return arPrinter.Sprintf("$ %v", number.Decimal(Round2(v), number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
