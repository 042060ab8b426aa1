// Package validate checks individual line item fields.
//
// Field is pure and deterministic; it is the single source of truth for
// item-level verdicts, both on blur and during full submission validation.
package validate

import (
	"strings"

	"github.com/rezonia/invoice-composer/internal/decimal"
)

// Kind identifies a line item field
type Kind string

const (
	Description Kind = "description"
	Quantity    Kind = "quantity"
	Price       Kind = "price"
)

// Kinds lists item fields in focus order. The first invalid field in this
// order is the one that receives focus.
var Kinds = []Kind{Description, Quantity, Price}

// Verdict is the outcome of validating one field
type Verdict int

const (
	Valid Verdict = iota
	Required
	InvalidNumber
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case Required:
		return "required"
	case InvalidNumber:
		return "invalid_number"
	default:
		return "unknown"
	}
}

// Message returns the user-facing error text, empty for Valid
func (v Verdict) Message() string {
	switch v {
	case Required:
		return "Required"
	case InvalidNumber:
		return "Invalid"
	default:
		return ""
	}
}

// IsNumeric reports whether the field holds a number
func (k Kind) IsNumeric() bool {
	return k == Quantity || k == Price
}

// Field validates raw form text for the given field kind.
func Field(kind Kind, raw string) Verdict {
	if strings.TrimSpace(raw) == "" {
		return Required
	}
	if !kind.IsNumeric() {
		return Valid
	}

	n, err := decimal.FromString(raw)
	if err != nil || !decimal.IsNonNegative(n) {
		return InvalidNumber
	}
	// Zero quantity is not a line item
	if kind == Quantity && !decimal.IsPositive(n) {
		return InvalidNumber
	}
	return Valid
}
