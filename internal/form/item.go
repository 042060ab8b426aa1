package form

import (
	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-composer/internal/model"
	"github.com/rezonia/invoice-composer/internal/totals"
	"github.com/rezonia/invoice-composer/internal/validate"
)

// FieldState is the display state of one item field
type FieldState int

const (
	Untouched FieldState = iota
	TouchedValid
	TouchedInvalid
)

func (s FieldState) String() string {
	switch s {
	case TouchedValid:
		return "touched_valid"
	case TouchedInvalid:
		return "touched_invalid"
	default:
		return "untouched"
	}
}

// ErrorDisplay decides when a field error becomes visible
type ErrorDisplay int

const (
	// DisplayOnBlur shows errors only after the field lost focus once
	DisplayOnBlur ErrorDisplay = iota
	// DisplayAlways validates live and shows errors on untouched fields too
	DisplayAlways
)

// Item tracks one line item draft and its validation state.
// It is not safe for concurrent use; Form serializes access.
type Item struct {
	id      string
	draft   model.ItemDraft
	verdict map[validate.Kind]validate.Verdict
	touched map[validate.Kind]bool
	display ErrorDisplay
}

func newItem(id string, draft model.ItemDraft, display ErrorDisplay) *Item {
	return &Item{
		id:      id,
		draft:   draft,
		verdict: make(map[validate.Kind]validate.Verdict, len(validate.Kinds)),
		touched: make(map[validate.Kind]bool, len(validate.Kinds)),
		display: display,
	}
}

// ID returns the stable item identifier
func (it *Item) ID() string {
	return it.id
}

// Draft returns the current field values
func (it *Item) Draft() model.ItemDraft {
	return it.draft
}

func (it *Item) value(kind validate.Kind) (*string, error) {
	switch kind {
	case validate.Description:
		return &it.draft.Description, nil
	case validate.Quantity:
		return &it.draft.Quantity, nil
	case validate.Price:
		return &it.draft.Price, nil
	default:
		return nil, model.ErrUnknownField
	}
}

// Change updates a field value. Verdicts are left alone until the next blur
// or full validation so errors do not flicker while typing.
func (it *Item) Change(kind validate.Kind, value string) error {
	v, err := it.value(kind)
	if err != nil {
		return err
	}
	*v = value
	return nil
}

// Blur marks the field touched and validates it
func (it *Item) Blur(kind validate.Kind) (validate.Verdict, error) {
	v, err := it.value(kind)
	if err != nil {
		return validate.Valid, err
	}
	verdict := validate.Field(kind, *v)
	it.touched[kind] = true
	it.verdict[kind] = verdict
	return verdict, nil
}

// ValidateAll validates every field regardless of touched state and marks
// all of them touched. It returns false and the first invalid field, in
// description, quantity, price order, when any field fails.
func (it *Item) ValidateAll() (bool, validate.Kind) {
	var first validate.Kind
	for _, kind := range validate.Kinds {
		v, _ := it.value(kind)
		verdict := validate.Field(kind, *v)
		it.verdict[kind] = verdict
		it.touched[kind] = true
		if verdict != validate.Valid && first == "" {
			first = kind
		}
	}
	return first == "", first
}

// Verdict returns the last stored verdict for a field
func (it *Item) Verdict(kind validate.Kind) validate.Verdict {
	return it.verdict[kind]
}

// State returns the display state of a field
func (it *Item) State(kind validate.Kind) FieldState {
	if !it.touched[kind] {
		return Untouched
	}
	if it.verdict[kind] == validate.Valid {
		return TouchedValid
	}
	return TouchedInvalid
}

// VisibleError returns the error text to show for a field under the
// configured display policy, or "" when nothing should be shown
func (it *Item) VisibleError(kind validate.Kind) string {
	if it.display == DisplayAlways {
		v, err := it.value(kind)
		if err != nil {
			return ""
		}
		return validate.Field(kind, *v).Message()
	}
	if !it.touched[kind] {
		return ""
	}
	return it.verdict[kind].Message()
}

// Subtotal is the live subtotal, zero for unparsable text
func (it *Item) Subtotal() decimal.Decimal {
	return totals.Subtotal(it.draft)
}

// FieldView is a read-only snapshot of a field
type FieldView struct {
	Value   string           `json:"value"`
	State   FieldState       `json:"-"`
	Verdict validate.Verdict `json:"-"`
	Error   string           `json:"error,omitempty"`
}

// ItemView is a read-only snapshot of an item
type ItemView struct {
	ID       string                      `json:"id"`
	Draft    model.ItemDraft             `json:"draft"`
	Fields   map[validate.Kind]FieldView `json:"fields"`
	Subtotal decimal.Decimal             `json:"subtotal"`
}

func (it *Item) view() ItemView {
	fields := make(map[validate.Kind]FieldView, len(validate.Kinds))
	for _, kind := range validate.Kinds {
		v, _ := it.value(kind)
		fields[kind] = FieldView{
			Value:   *v,
			State:   it.State(kind),
			Verdict: it.verdict[kind],
			Error:   it.VisibleError(kind),
		}
	}
	return ItemView{
		ID:       it.id,
		Draft:    it.draft,
		Fields:   fields,
		Subtotal: it.Subtotal(),
	}
}
