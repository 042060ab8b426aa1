package server

import (
	"github.com/rezonia/invoice-composer/internal/form"
	"github.com/rezonia/invoice-composer/internal/model"
	"github.com/rezonia/invoice-composer/internal/totals"
)

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Field  string `json:"field,omitempty"`
	Item   *int   `json:"item,omitempty"`
	ItemID string `json:"item_id,omitempty"`
}

// ValidationResponse is the response for the validate endpoint
type ValidationResponse struct {
	Valid   bool            `json:"valid"`
	Error   *ErrorResponse  `json:"error,omitempty"`
	Items   []form.ItemView `json:"items"`
	Preview totals.Summary  `json:"preview"`
}

// SubmitResponse is the response for the submit endpoint
type SubmitResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Invoice *model.Record `json:"invoice,omitempty"`
}

// OptionsResponse lists the values offered by the form UI
type OptionsResponse struct {
	Currencies []string `json:"currencies"`
	IDTypes    []string `json:"id_types"`
	Formats    []string `json:"formats"`
}
