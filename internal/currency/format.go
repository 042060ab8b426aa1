// Package currency formats monetary amounts for display.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Scale is the number of fraction digits shown for every currency
const Scale = 2

// symbols holds the narrow symbol for codes the form offers
var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"COP": "$",
	"MXN": "$",
	"ARS": "$",
	"GBP": "£",
	"JPY": "¥",
}

// Formatter renders amounts with a currency symbol and locale grouping
type Formatter struct {
	group   string
	decimal string
}

// NewFormatter creates a formatter for the given locale tag
func NewFormatter(tag language.Tag) *Formatter {
	group, dec := separators(message.NewPrinter(tag))
	return &Formatter{group: group, decimal: dec}
}

// separators reads the locale's grouping and decimal marks from a sample
// printed by x/text. Locales that do not print ASCII digits keep "," and ".".
func separators(p *message.Printer) (group, dec string) {
	group, dec = ",", "."
	sample := p.Sprint(number.Decimal(1234567.5, number.Scale(1)))

	if i := strings.Index(sample, "234"); strings.HasPrefix(sample, "1") && i >= 1 {
		group = sample[1:i]
	}
	if j := strings.LastIndex(sample, "567"); j >= 0 {
		if rest := sample[j+3:]; len(rest) > 1 && strings.HasSuffix(rest, "5") {
			dec = rest[:len(rest)-1]
		}
	}
	return group, dec
}

// NewDefaultFormatter creates an English formatter
func NewDefaultFormatter() *Formatter {
	return NewFormatter(language.English)
}

// ParseLocale parses a BCP 47 tag, falling back to English
func ParseLocale(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}

// Format renders amount for the given currency code, e.g. "$200.00".
// Codes without a known symbol are printed as a prefix: "CHF 200.00".
// Digits come from the exact decimal, rounded half away from zero.
func (f *Formatter) Format(amount decimal.Decimal, code string) string {
	text := amount.StringFixed(Scale)

	sign := ""
	if strings.HasPrefix(text, "-") {
		sign, text = "-", text[1:]
	}
	whole, frac, _ := strings.Cut(text, ".")

	return Prefix(code) + sign + f.groupDigits(whole) + f.decimal + frac
}

func (f *Formatter) groupDigits(whole string) string {
	if len(whole) <= 3 {
		return whole
	}
	var b strings.Builder
	head := len(whole) % 3
	if head > 0 {
		b.WriteString(whole[:head])
	}
	for i := head; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteString(f.group)
		}
		b.WriteString(whole[i : i+3])
	}
	return b.String()
}

// Prefix returns the text placed before the amount for a currency code
func Prefix(code string) string {
	if sym, ok := symbols[strings.ToUpper(code)]; ok {
		return sym
	}
	if unit, err := currency.ParseISO(code); err == nil {
		return unit.String() + " "
	}
	if code == "" {
		return ""
	}
	return code + " "
}
