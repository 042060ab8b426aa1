// Package render turns an invoice record into a printable markup document.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/rezonia/invoice-composer/internal/model"
	"github.com/rezonia/invoice-composer/internal/totals"
)

// Labels are the fixed texts printed on a document
type Labels struct {
	Title          string
	Client         string
	Identification string
	Email          string
	Phone          string
	Date           string
	Currency       string
	Description    string
	Quantity       string
	UnitPrice      string
	Subtotal       string
	Total          string
}

// EnglishLabels is the default label set
var EnglishLabels = Labels{
	Title:          "Invoice",
	Client:         "Client",
	Identification: "Identification",
	Email:          "Email",
	Phone:          "Phone",
	Date:           "Date",
	Currency:       "Currency",
	Description:    "Description",
	Quantity:       "Quantity",
	UnitPrice:      "Unit price",
	Subtotal:       "Subtotal",
	Total:          "Total",
}

// SpanishLabels matches the original printed invoice
var SpanishLabels = Labels{
	Title:          "Factura",
	Client:         "Cliente",
	Identification: "Identificación",
	Email:          "Correo",
	Phone:          "Celular",
	Date:           "Fecha",
	Currency:       "Moneda",
	Description:    "Descripción",
	Quantity:       "Cantidad",
	UnitPrice:      "Precio",
	Subtotal:       "Subtotal",
	Total:          "Total",
}

// HeaderLine is one labelled header value
type HeaderLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Row is one rendered line item, all columns already formatted
type Row struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
}

// Document is the markup produced for a record. Rasterizers may use the
// HTML directly or lay out the structured parts themselves.
type Document struct {
	Title      string       `json:"title"`
	Header     []HeaderLine `json:"header"`
	Columns    [4]string    `json:"columns"`
	Rows       []Row        `json:"rows"`
	TotalLabel string       `json:"total_label"`
	TotalLine  string       `json:"total_line"`
	HTML       string       `json:"html"`
}

// Option configures a Renderer
type Option func(*Renderer)

// WithLabels sets the label set
func WithLabels(l Labels) Option {
	return func(r *Renderer) {
		r.labels = l
	}
}

// Renderer renders records. It holds no mutable state.
type Renderer struct {
	formatter totals.Formatter
	labels    Labels
}

// NewRenderer creates a renderer using f for every amount
func NewRenderer(f totals.Formatter, opts ...Option) *Renderer {
	r := &Renderer{
		formatter: f,
		labels:    EnglishLabels,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render builds the document for rec. The output depends only on rec and
// the renderer configuration.
func (r *Renderer) Render(rec *model.Record) Document {
	l := r.labels
	client := rec.Client()
	code := rec.Currency()

	doc := Document{
		Title: l.Title,
		Header: []HeaderLine{
			{Label: l.Client, Value: client.Name},
			{Label: l.Identification, Value: client.IDType + " " + client.IDNumber},
			{Label: l.Email, Value: client.Email},
			{Label: l.Phone, Value: client.Phone},
			{Label: l.Date, Value: rec.IssueDate().Format(model.DateLayout)},
			{Label: l.Currency, Value: code},
		},
		Columns:    [4]string{l.Description, l.Quantity, l.UnitPrice, l.Subtotal},
		TotalLabel: l.Total,
		TotalLine:  r.formatter.Format(rec.Total(), code),
	}

	items := rec.Items()
	doc.Rows = make([]Row, len(items))
	for i, item := range items {
		// recomputed per row, never taken from a stored subtotal
		sub := item.Quantity.Mul(item.UnitPrice)
		doc.Rows[i] = Row{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   r.formatter.Format(item.UnitPrice, code),
			Subtotal:    r.formatter.Format(sub, code),
		}
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, doc); err != nil {
		// the template and the document shape are fixed at compile time
		panic(fmt.Sprintf("render: invoice template: %v", err))
	}
	doc.HTML = buf.String()
	return doc
}

var documentTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: 'Montserrat', sans-serif; padding: 24px; color: #222222; background-color: #FFFFFF; }
h1 { color: #FFA726; font-size: 28px; margin-bottom: 8px; }
p { font-size: 14px; margin: 2px 0; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; font-size: 14px; }
th { background-color: #2979FF; color: #FFFFFF; padding: 10px; border: 1px solid #ccc; text-align: left; }
td { padding: 10px; border: 1px solid #ccc; }
td.num { text-align: right; }
.total { text-align: right; font-size: 18px; margin-top: 20px; font-weight: bold; color: #FFA726; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Header}}<p><strong>{{.Label}}:</strong> {{.Value}}</p>
{{end}}<table>
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{range .Rows}}<tr><td>{{.Description}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.Subtotal}}</td></tr>
{{end}}</tbody>
</table>
<p class="total">{{.TotalLabel}}: {{.TotalLine}}</p>
</body>
</html>
`))
