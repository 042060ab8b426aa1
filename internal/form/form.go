// Package form implements the invoice authoring form: per-item validation,
// live totals, record assembly and the submit/reset lifecycle.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rezonia/invoice-composer/internal/currency"
	dec "github.com/rezonia/invoice-composer/internal/decimal"
	"github.com/rezonia/invoice-composer/internal/logging"
	"github.com/rezonia/invoice-composer/internal/model"
	"github.com/rezonia/invoice-composer/internal/totals"
	"github.com/rezonia/invoice-composer/internal/validate"
)

// State is the lifecycle state of a form
type State int

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	StateSubmitting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateSubmitting:
		return "submitting"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Store persists finished invoice records
type Store interface {
	Save(ctx context.Context, rec *model.Record) (model.SaveResult, error)
}

// Option configures a Form
type Option func(*Form)

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(f *Form) {
		f.logger = logger
	}
}

// WithClock sets the time source used for the default issue date
func WithClock(now func() time.Time) Option {
	return func(f *Form) {
		f.now = now
	}
}

// WithIDGenerator sets the generator for item and record ids
func WithIDGenerator(gen func() string) Option {
	return func(f *Form) {
		f.newID = gen
	}
}

// WithErrorDisplay sets when item field errors become visible
func WithErrorDisplay(d ErrorDisplay) Option {
	return func(f *Form) {
		f.display = d
	}
}

// WithContactCheck enables email and phone format checks on submit
func WithContactCheck(c *ContactChecker) Option {
	return func(f *Form) {
		f.contact = c
	}
}

// WithFormatter sets the currency formatter used for previews
func WithFormatter(fm totals.Formatter) Option {
	return func(f *Form) {
		f.formatter = fm
	}
}

// Form owns one invoice draft. All methods are safe for concurrent use;
// at most one submission runs at a time.
type Form struct {
	mu sync.Mutex

	store     Store
	logger    logrus.FieldLogger
	now       func() time.Time
	newID     func() string
	display   ErrorDisplay
	contact   *ContactChecker
	formatter totals.Formatter

	header  model.HeaderDraft
	items   []*Item
	state   State
	lastErr error
}

// NewForm creates a form with one empty item, USD and today's date
func NewForm(store Store, opts ...Option) *Form {
	f := &Form{
		store:     store,
		logger:    logging.Discard(),
		now:       time.Now,
		newID:     uuid.NewString,
		formatter: currency.NewDefaultFormatter(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.resetLocked()
	return f
}

func (f *Form) resetLocked() {
	f.header = model.HeaderDraft{
		IssueDate: f.now().Format(model.DateLayout),
		Currency:  model.DefaultCurrency,
	}
	f.items = []*Item{newItem(f.newID(), model.ItemDraft{}, f.display)}
	f.state = StateIdle
	f.lastErr = nil
}

// State returns the lifecycle state
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastError returns the error of the last failed validation or submission
func (f *Form) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Header returns the header draft
func (f *Form) Header() model.HeaderDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.header
}

// SetHeader replaces the header draft
func (f *Form) SetHeader(h model.HeaderDraft) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.header = h
}

// SetHeaderField updates one header field by its wire name
func (f *Form) SetHeaderField(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case model.FieldClientName:
		f.header.ClientName = value
	case model.FieldIDType:
		f.header.IDType = value
	case model.FieldIDNumber:
		f.header.IDNumber = value
	case model.FieldEmail:
		f.header.Email = value
	case model.FieldPhone:
		f.header.Phone = value
	case model.FieldIssueDate:
		f.header.IssueDate = value
	case model.FieldCurrency:
		f.header.Currency = value
	default:
		return model.ErrUnknownField
	}
	return nil
}

// AddItem appends an empty item and returns its id
func (f *Form) AddItem() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	it := newItem(f.newID(), model.ItemDraft{}, f.display)
	f.items = append(f.items, it)
	return it.id
}

// RemoveItem drops an item together with its validation state
func (f *Form) RemoveItem(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexLocked(id)
	if i < 0 {
		return model.ErrItemNotFound
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return nil
}

// ChangeItem updates an item field value
func (f *Form) ChangeItem(id string, kind validate.Kind, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	it, err := f.itemLocked(id)
	if err != nil {
		return err
	}
	return it.Change(kind, value)
}

// BlurItem marks an item field touched and validates it
func (f *Form) BlurItem(id string, kind validate.Kind) (validate.Verdict, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	it, err := f.itemLocked(id)
	if err != nil {
		return validate.Valid, err
	}
	return it.Blur(kind)
}

// ValidateItem runs full validation on one item and returns the first
// invalid field when it fails
func (f *Form) ValidateItem(id string) (bool, validate.Kind, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	it, err := f.itemLocked(id)
	if err != nil {
		return false, "", err
	}
	ok, first := it.ValidateAll()
	return ok, first, nil
}

// Item returns a view of one item
func (f *Form) Item(id string) (ItemView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	it, err := f.itemLocked(id)
	if err != nil {
		return ItemView{}, err
	}
	return it.view(), nil
}

// Items returns views of all items in display order
func (f *Form) Items() []ItemView {
	f.mu.Lock()
	defer f.mu.Unlock()

	views := make([]ItemView, len(f.items))
	for i, it := range f.items {
		views[i] = it.view()
	}
	return views
}

// Preview returns live subtotals and the total for the current drafts
func (f *Form) Preview() totals.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return totals.Preview(f.draftsLocked(), f.header.Currency, f.formatter)
}

// Snapshot returns a copy of the header and item drafts
func (f *Form) Snapshot() model.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.Draft{HeaderDraft: f.header, Items: f.draftsLocked()}
}

// Load replaces the whole draft. Items get fresh ids and clean state. A
// draft without a currency gets DefaultCurrency, as a fresh form does.
func (f *Form) Load(d model.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return model.ErrSubmitInFlight
	}
	f.header = d.HeaderDraft
	if strings.TrimSpace(f.header.Currency) == "" {
		f.header.Currency = model.DefaultCurrency
	}
	f.items = make([]*Item, 0, len(d.Items))
	for _, draft := range d.Items {
		f.items = append(f.items, newItem(f.newID(), draft, f.display))
	}
	f.state = StateIdle
	f.lastErr = nil
	return nil
}

// Reset restores the initial empty draft
func (f *Form) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return model.ErrSubmitInFlight
	}
	f.resetLocked()
	return nil
}

// Build validates the whole form and assembles the record without
// submitting it. The returned error is a *model.ValidationError.
func (f *Form) Build() (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return nil, model.ErrSubmitInFlight
	}
	f.state = StateValidating
	rec, err := f.buildLocked()
	if err != nil {
		f.state = StateInvalid
		f.lastErr = err
		return nil, err
	}
	f.state = StateIdle
	f.lastErr = nil
	return rec, nil
}

// Submit validates the form and saves the record. A submit arriving while
// another is in flight returns model.ErrSubmitInFlight and does nothing.
// On success the form is reset; on failure all drafts are kept for retry.
func (f *Form) Submit(ctx context.Context) (*model.Record, error) {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return nil, model.ErrSubmitInFlight
	}
	f.state = StateValidating
	rec, err := f.buildLocked()
	if err != nil {
		f.state = StateInvalid
		f.lastErr = err
		f.mu.Unlock()
		return nil, err
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	res, err := f.save(ctx, rec)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err == nil && !res.Success {
		err = model.ErrSubmissionRejected(res.Message)
	}
	if err != nil {
		var subErr *model.SubmissionError
		if !errors.As(err, &subErr) {
			err = model.ErrTransportFailure(err)
		}
		f.state = StateFailed
		f.lastErr = err
		logging.LogError(f.logger, "form", "Submit", rec.ID(), rec.Total().String(), err)
		return nil, err
	}

	f.logger.WithFields(logrus.Fields{
		"id":    rec.ID(),
		"total": rec.Total().String(),
		"items": len(rec.Items()),
	}).Info("invoice saved")
	f.resetLocked()
	return rec, nil
}

func (f *Form) save(ctx context.Context, rec *model.Record) (model.SaveResult, error) {
	if f.store == nil {
		return model.SaveResult{}, errors.New("no persistence service configured")
	}
	return f.store.Save(ctx, rec)
}

func (f *Form) buildLocked() (*model.Record, error) {
	h := f.header
	required := []struct {
		field string
		value string
	}{
		{model.FieldClientName, h.ClientName},
		{model.FieldIDType, h.IDType},
		{model.FieldIDNumber, h.IDNumber},
		{model.FieldEmail, h.Email},
		{model.FieldPhone, h.Phone},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, model.NewHeaderError(r.field, model.ErrCodeRequired, validate.Required.Message())
		}
	}

	if f.contact != nil {
		if verr := f.contact.Check(h.Email, h.Phone); verr != nil {
			return nil, verr
		}
	}

	issued := f.now()
	if raw := strings.TrimSpace(h.IssueDate); raw != "" {
		t, err := time.Parse(model.DateLayout, raw)
		if err != nil {
			return nil, model.NewHeaderError(model.FieldIssueDate, model.ErrCodeInvalidDate, "Invalid date")
		}
		issued = t
	}

	if len(f.items) == 0 {
		return nil, model.NewHeaderError(model.FieldItems, model.ErrCodeNoItems, "At least one item is required")
	}

	// every item is validated so all errors become visible, the first one wins
	var firstErr *model.ValidationError
	for i, it := range f.items {
		ok, kind := it.ValidateAll()
		if ok || firstErr != nil {
			continue
		}
		verdict := it.Verdict(kind)
		code := model.ErrCodeRequired
		if verdict == validate.InvalidNumber {
			code = model.ErrCodeInvalidNumber
		}
		firstErr = model.NewItemError(i, it.id, string(kind), code, verdict.Message())
	}
	if firstErr != nil {
		return nil, firstErr
	}

	lines := make([]model.LineItem, len(f.items))
	for i, it := range f.items {
		qty, _ := dec.FromString(it.draft.Quantity)
		price, _ := dec.FromString(it.draft.Price)
		lines[i] = model.LineItem{
			Description: strings.TrimSpace(it.draft.Description),
			Quantity:    qty,
			UnitPrice:   price,
		}
	}

	client := model.Client{
		Name:     strings.TrimSpace(h.ClientName),
		IDType:   strings.TrimSpace(h.IDType),
		IDNumber: strings.TrimSpace(h.IDNumber),
		Email:    strings.TrimSpace(h.Email),
		Phone:    strings.TrimSpace(h.Phone),
	}
	return model.NewRecord(f.newID(), client, issued, h.Currency, lines), nil
}

func (f *Form) draftsLocked() []model.ItemDraft {
	drafts := make([]model.ItemDraft, len(f.items))
	for i, it := range f.items {
		drafts[i] = it.draft
	}
	return drafts
}

func (f *Form) indexLocked(id string) int {
	for i, it := range f.items {
		if it.id == id {
			return i
		}
	}
	return -1
}

func (f *Form) itemLocked(id string) (*Item, error) {
	i := f.indexLocked(id)
	if i < 0 {
		return nil, model.ErrItemNotFound
	}
	return f.items[i], nil
}
