// Package money formatea importes para documentos impresos (PDF, facturas).
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Format devuelve el importe con separador de miles y 2 decimales,
// precedido por el símbolo si no está vacío. Ej: Format("Tk", 1234.5) → "Tk 1,234.50".
func Format(symbol string, amount decimal.Decimal) string {
	s := printer.Sprint(number.Decimal(amount.Round(2).InexactFloat64(), number.Scale(2)))
	if symbol == "" {
		return s
	}
	return symbol + " " + s
}

// Integer cantidad entera con separador de miles. Ej: 1234 → "1,234".
func Integer(n int) string {
	return printer.Sprint(number.Decimal(n))
}
