package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeRequired           = "REQUIRED"
	ErrCodeInvalidNumber      = "INVALID_NUMBER"
	ErrCodeInvalidDate        = "INVALID_DATE"
	ErrCodeInvalidFormat      = "INVALID_FORMAT"
	ErrCodeNoItems            = "NO_ITEMS"
	ErrCodeSubmissionRejected = "SUBMISSION_REJECTED"
	ErrCodeTransportFailure   = "TRANSPORT_FAILURE"
	ErrCodeRenderFailed       = "RENDER_FAILED"
	ErrCodeRasterizeFailed    = "RASTERIZE_FAILED"
	ErrCodeShareFailed        = "SHARE_FAILED"
)

// Header field names as reported in validation errors
const (
	FieldClientName = "client_name"
	FieldIDType     = "id_type"
	FieldIDNumber   = "id_number"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldIssueDate  = "issue_date"
	FieldCurrency   = "currency"
	FieldItems      = "items"
)

var (
	// ErrSubmitInFlight is returned when a submit arrives while another one
	// is still running on the same form
	ErrSubmitInFlight = errors.New("submission already in progress")

	// ErrItemNotFound is returned for operations on an unknown item id
	ErrItemNotFound = errors.New("item not found")

	// ErrUnknownField is returned for a field name the form does not have
	ErrUnknownField = errors.New("unknown field")
)

// ValidationError reports the first field that blocks submission.
// Item is -1 for header fields.
type ValidationError struct {
	Code    string
	Field   string
	Item    int
	ItemID  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Item >= 0 {
		return fmt.Sprintf("validation failed on item %d %s: %s (rule=%s)", e.Item+1, e.Field, e.Message, e.Code)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Code)
}

// NewHeaderError creates a validation error for a header field
func NewHeaderError(field, code, message string) *ValidationError {
	return &ValidationError{
		Code:    code,
		Field:   field,
		Item:    -1,
		Message: message,
	}
}

// NewItemError creates a validation error for a line item field
func NewItemError(index int, itemID, field, code, message string) *ValidationError {
	return &ValidationError{
		Code:    code,
		Field:   field,
		Item:    index,
		ItemID:  itemID,
		Message: message,
	}
}

// SubmissionError represents a failed save: rejected by the persistence
// service or the service could not be reached
type SubmissionError struct {
	Code    string
	Message string
	Cause   error
}

func (e *SubmissionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// Rejected reports whether the service answered with a failure
func (e *SubmissionError) Rejected() bool {
	return e.Code == ErrCodeSubmissionRejected
}

// ErrSubmissionRejected returns error when the persistence service refuses the record
func ErrSubmissionRejected(message string) *SubmissionError {
	if message == "" {
		message = "invoice was not saved"
	}
	return &SubmissionError{Code: ErrCodeSubmissionRejected, Message: message}
}

// ErrTransportFailure returns error when the persistence service is unreachable
func ErrTransportFailure(cause error) *SubmissionError {
	return &SubmissionError{Code: ErrCodeTransportFailure, Message: "could not connect to the server", Cause: cause}
}

// ExportError reports the pipeline stage that failed
type ExportError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export failed [%s]: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("export failed [%s]: %s", e.Code, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new export error
func NewExportError(code, message string, cause error) *ExportError {
	return &ExportError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
