// Package money holds the decimal helpers shared by pricing and display code.
//
// Amounts are carried as shopspring decimals at full precision. Rounding only
// happens when a value is formatted for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is used when no other currency can be determined.
const DefaultCurrency = "GBP"

var hundred = decimal.NewFromInt(100)

func init() {
	// Persisted and API payloads carry amounts as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Percent returns amount * rate / 100.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// NormalizeCurrency returns the upper-case ISO 4217 code, or false when the
// code is not a known currency.
func NormalizeCurrency(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", false
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", false
	}
	return unit.String(), true
}

// Formatter renders amounts for display.
type Formatter struct {
	fallback string
	printer  *message.Printer
}

// NewFormatter builds a formatter whose fallback currency is used for unknown
// codes. An invalid fallback degrades to DefaultCurrency.
func NewFormatter(fallback string) *Formatter {
	code, ok := NormalizeCurrency(fallback)
	if !ok {
		code = DefaultCurrency
	}
	return &Formatter{
		fallback: code,
		printer:  message.NewPrinter(language.English),
	}
}

func (f *Formatter) Fallback() string {
	return f.fallback
}

// Format rounds half away from zero to whole units and groups thousands,
// e.g. "USD 1,235".
func (f *Formatter) Format(amount decimal.Decimal, code string) string {
	normalized, ok := NormalizeCurrency(code)
	if !ok {
		normalized = f.fallback
	}
	whole := amount.Round(0).IntPart()
	return normalized + " " + f.printer.Sprintf("%d", whole)
}

var defaultFormatter = NewFormatter(DefaultCurrency)

// FormatMoney formats with DefaultCurrency as the fallback.
func FormatMoney(amount decimal.Decimal, code string) string {
	return defaultFormatter.Format(amount, code)
}
