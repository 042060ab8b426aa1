package invoicelib

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/rezonia/invoice-composer/internal/currency"
	"github.com/rezonia/invoice-composer/internal/export"
	"github.com/rezonia/invoice-composer/internal/form"
	"github.com/rezonia/invoice-composer/internal/logging"
	"github.com/rezonia/invoice-composer/internal/render"
	"github.com/rezonia/invoice-composer/internal/store"
)

// ComposerOptions configures composer behavior
type ComposerOptions struct {
	// Formatting
	Locale string // BCP 47 tag used for amounts (default: en)
	Labels Labels // Document labels (default: EnglishLabels)

	// Export
	Format string // pdf, xlsx or html (default: pdf)

	// Contact checks
	StrictContact bool   // Check email and phone formats before saving
	PhoneRegion   string // Region for phone numbers without country code (default: CO)

	Logger logrus.FieldLogger
}

// DefaultComposerOptions returns default composer options
func DefaultComposerOptions() ComposerOptions {
	return ComposerOptions{
		Locale:      "en",
		Labels:      EnglishLabels,
		Format:      "pdf",
		PhoneRegion: form.DefaultPhoneRegion,
	}
}

// Composer validates, saves and exports invoice drafts
type Composer struct {
	store      Store
	formatter  *currency.Formatter
	renderer   *render.Renderer
	rasterizer Rasterizer
	options    ComposerOptions
	logger     logrus.FieldLogger
}

// NewComposer creates a composer saving to s
func NewComposer(s Store, opts ComposerOptions) (*Composer, error) {
	rasterizer, err := export.NewRasterizer(opts.Format)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	formatter := currency.NewFormatter(currency.ParseLocale(opts.Locale))
	labels := opts.Labels
	if labels == (Labels{}) {
		labels = EnglishLabels
	}

	return &Composer{
		store:      s,
		formatter:  formatter,
		renderer:   render.NewRenderer(formatter, render.WithLabels(labels)),
		rasterizer: rasterizer,
		options:    opts,
		logger:     logger,
	}, nil
}

// NewDefaultComposer creates a composer with default options backed by an
// in-memory store
func NewDefaultComposer() *Composer {
	c, err := NewComposer(store.NewMemoryStore(), DefaultComposerOptions())
	if err != nil {
		panic(err)
	}
	return c
}

// NewForm returns an empty interactive form bound to the composer's store
func (c *Composer) NewForm() *Form {
	opts := []form.Option{
		form.WithLogger(c.logger),
		form.WithFormatter(c.formatter),
	}
	if c.options.StrictContact {
		opts = append(opts, form.WithContactCheck(form.NewContactChecker(c.options.PhoneRegion)))
	}
	return form.NewForm(c.store, opts...)
}

func (c *Composer) load(d Draft) (*Form, error) {
	f := c.NewForm()
	if err := f.Load(d); err != nil {
		return nil, err
	}
	return f, nil
}

// Preview computes line subtotals and the total of d. Unparsable numbers
// count as zero.
func (c *Composer) Preview(d Draft) (Summary, error) {
	f, err := c.load(d)
	if err != nil {
		return Summary{}, err
	}
	return f.Preview(), nil
}

// Validate checks d and returns the record it would save
func (c *Composer) Validate(d Draft) (*Record, error) {
	f, err := c.load(d)
	if err != nil {
		return nil, err
	}
	return f.Build()
}

// Submit validates d and saves it to the store
func (c *Composer) Submit(ctx context.Context, d Draft) (*Record, error) {
	f, err := c.load(d)
	if err != nil {
		return nil, err
	}
	return f.Submit(ctx)
}

// Render produces the document of a validated record
func (c *Composer) Render(rec *Record) Document {
	return c.renderer.Render(rec)
}

// FormatTotal formats the record total in its currency
func (c *Composer) FormatTotal(rec *Record) string {
	return c.formatter.Format(rec.Total(), rec.Currency())
}

// Export renders rec, rasterizes it and hands it to sink
func (c *Composer) Export(ctx context.Context, rec *Record, sink Sink) (*ExportInfo, error) {
	return export.NewPipeline(c.renderer, c.rasterizer, sink, c.logger).Export(ctx, rec)
}

// ExportTo writes the document of rec to w
func (c *Composer) ExportTo(ctx context.Context, rec *Record, w io.Writer) (*ExportInfo, error) {
	return c.Export(ctx, rec, export.NewWriterSink(w))
}

// ExportBatch validates and exports multiple drafts concurrently. Results
// keep the input order; a failed draft leaves a nil entry and the first
// error is returned. sink must be safe for concurrent use.
func (c *Composer) ExportBatch(ctx context.Context, drafts []Draft, sink Sink) ([]*ExportInfo, error) {
	results := make([]*ExportInfo, len(drafts))
	errCh := make(chan error, len(drafts))

	for i, d := range drafts {
		go func(idx int, d Draft) {
			rec, err := c.Validate(d)
			if err != nil {
				errCh <- err
				return
			}
			res, err := c.Export(ctx, rec, sink)
			if err != nil {
				errCh <- err
				return
			}
			results[idx] = res
			errCh <- nil
		}(i, d)
	}

	// Wait for all goroutines
	var firstErr error
	for range drafts {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return results, firstErr
}

// NewMemoryStore returns a store that keeps records in memory
func NewMemoryStore() Store {
	return store.NewMemoryStore()
}

// NewRemoteStore returns a store that posts records to a remote backend
func NewRemoteStore(baseURL string) Store {
	return store.NewRemoteStore(baseURL, store.DefaultTimeout, logging.Discard())
}

// NewFileSink returns a sink that writes documents into dir
func NewFileSink(dir string) Sink {
	return export.NewFileSink(dir)
}
