// Package totals computes live line subtotals and the form total.
//
// Totals are lenient: text that does not parse contributes zero, so a total
// can be displayed while the form is still incomplete. Strict checks happen
// at submission time in the validate package.
package totals

import (
	"github.com/shopspring/decimal"

	dec "github.com/rezonia/invoice-composer/internal/decimal"
	"github.com/rezonia/invoice-composer/internal/model"
)

// Formatter renders an amount in a currency. Locale rules are the
// formatter's concern.
type Formatter interface {
	Format(amount decimal.Decimal, currencyCode string) string
}

// Subtotal returns quantity * price, treating unparsable text as zero
func Subtotal(item model.ItemDraft) decimal.Decimal {
	return dec.Mul(dec.ParseOrZero(item.Quantity), dec.ParseOrZero(item.Price))
}

// Total sums the subtotals of all items
func Total(items []model.ItemDraft) decimal.Decimal {
	subtotals := make([]decimal.Decimal, len(items))
	for i, item := range items {
		subtotals[i] = Subtotal(item)
	}
	return dec.Sum(subtotals)
}

// Line is a previewed line item
type Line struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Formatted string          `json:"formatted"`
}

// Summary is the live preview of a form
type Summary struct {
	Currency  string          `json:"currency"`
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	Formatted string          `json:"formatted_total"`
}

// Preview computes subtotals and total and formats them for display
func Preview(items []model.ItemDraft, currencyCode string, f Formatter) Summary {
	s := Summary{
		Currency: currencyCode,
		Lines:    make([]Line, 0, len(items)),
		Total:    Total(items),
	}
	for _, item := range items {
		sub := Subtotal(item)
		s.Lines = append(s.Lines, Line{Subtotal: sub, Formatted: f.Format(sub, currencyCode)})
	}
	s.Formatted = f.Format(s.Total, currencyCode)
	return s
}
