// Package invoicelib provides a public API for composing invoices.
//
// It exposes the draft and record types together with a Composer that
// validates drafts, computes totals, saves records and exports rendered
// documents.
//
// Example usage:
//
//	c := invoicelib.NewDefaultComposer()
//	rec, err := c.Submit(ctx, draft)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(c.FormatTotal(rec))
package invoicelib

import (
	"github.com/rezonia/invoice-composer/internal/export"
	"github.com/rezonia/invoice-composer/internal/form"
	"github.com/rezonia/invoice-composer/internal/model"
	"github.com/rezonia/invoice-composer/internal/render"
	"github.com/rezonia/invoice-composer/internal/totals"
)

// Re-export core types for public API
type (
	Draft       = model.Draft
	HeaderDraft = model.HeaderDraft
	ItemDraft   = model.ItemDraft
	Record      = model.Record
	Client      = model.Client
	LineItem    = model.LineItem
	SaveResult  = model.SaveResult
	Summary     = totals.Summary
	Document    = render.Document
	Labels      = render.Labels
	Form        = form.Form
)

// Re-export service interfaces
type (
	Store      = form.Store
	Rasterizer = export.Rasterizer
	Sink       = export.Sink
	Handle     = export.Handle
	ExportInfo = export.Result
)

// Re-export error types
type (
	ValidationError = model.ValidationError
	SubmissionError = model.SubmissionError
	ExportError     = model.ExportError
)

// Re-export error codes
const (
	ErrCodeRequired           = model.ErrCodeRequired
	ErrCodeInvalidNumber      = model.ErrCodeInvalidNumber
	ErrCodeInvalidDate        = model.ErrCodeInvalidDate
	ErrCodeInvalidFormat      = model.ErrCodeInvalidFormat
	ErrCodeNoItems            = model.ErrCodeNoItems
	ErrCodeSubmissionRejected = model.ErrCodeSubmissionRejected
	ErrCodeTransportFailure   = model.ErrCodeTransportFailure
	ErrCodeRenderFailed       = model.ErrCodeRenderFailed
	ErrCodeRasterizeFailed    = model.ErrCodeRasterizeFailed
	ErrCodeShareFailed        = model.ErrCodeShareFailed
)

// Re-export labels
var (
	EnglishLabels = render.EnglishLabels
	SpanishLabels = render.SpanishLabels
)
