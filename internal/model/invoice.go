package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and form layout for the issue date
const DateLayout = "2006-01-02"

// DefaultCurrency is the currency a fresh form starts with
const DefaultCurrency = "USD"

// CurrencyOptions are the currency codes offered by the form UI.
// The core passes any code through unmodified.
var CurrencyOptions = []string{"USD", "EUR", "COP", "MXN", "ARS"}

// IDTypeOptions are the identification type labels offered by the form UI
var IDTypeOptions = []string{
	"Cédula de Ciudadanía",
	"NIT",
	"Cédula de Extranjería",
	"Pasaporte",
	"DNI",
	"RUC",
}

// ItemDraft is a line item as typed by the user. Values stay text until
// submission so intermediate states ("", "1.") are representable.
type ItemDraft struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
}

// HeaderDraft holds the client and invoice header fields
type HeaderDraft struct {
	ClientName string `json:"client_name"`
	IDType     string `json:"id_type"`
	IDNumber   string `json:"id_number"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	IssueDate  string `json:"date"`
	Currency   string `json:"currency"`
}

// Draft is a complete form snapshot, the shape accepted by the CLI and API
type Draft struct {
	HeaderDraft
	Items []ItemDraft `json:"items"`
}

// Client identifies the invoiced party
type Client struct {
	Name     string `json:"client_name"`
	IDType   string `json:"id_type"`
	IDNumber string `json:"id_number"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// LineItem is a validated invoice line
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Subtotal returns quantity * unit price
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Record is a validated, immutable invoice. Build it with NewRecord; the
// total is derived from the items and cannot be set independently.
type Record struct {
	id        string
	client    Client
	issueDate time.Time
	currency  string
	items     []LineItem
	total     decimal.Decimal
}

// NewRecord builds a record, computing the total from the items.
// The items slice is copied.
func NewRecord(id string, client Client, issueDate time.Time, currency string, items []LineItem) *Record {
	owned := make([]LineItem, len(items))
	copy(owned, items)

	total := decimal.Zero
	for _, item := range owned {
		total = total.Add(item.Subtotal())
	}

	y, m, d := issueDate.Date()
	return &Record{
		id:        id,
		client:    client,
		issueDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		currency:  currency,
		items:     owned,
		total:     total,
	}
}

func (r *Record) ID() string           { return r.id }
func (r *Record) Client() Client       { return r.client }
func (r *Record) IssueDate() time.Time { return r.issueDate }
func (r *Record) Currency() string     { return r.currency }

// Total is the sum of the line subtotals
func (r *Record) Total() decimal.Decimal { return r.total }

// Items returns a copy of the line items
func (r *Record) Items() []LineItem {
	out := make([]LineItem, len(r.items))
	copy(out, r.items)
	return out
}

type recordJSON struct {
	ID string `json:"id"`
	Client
	Date     string          `json:"date"`
	Currency string          `json:"currency"`
	Items    []LineItem      `json:"items"`
	Total    decimal.Decimal `json:"total"`
}

// MarshalJSON exposes the record read-only
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		ID:       r.id,
		Client:   r.client,
		Date:     r.issueDate.Format(DateLayout),
		Currency: r.currency,
		Items:    r.items,
		Total:    r.total,
	})
}

// SaveResult is the persistence service answer
type SaveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
