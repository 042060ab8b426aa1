// Package app wires configuration into the composer services shared by the
// CLI and the HTTP server.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/rezonia/invoice-composer/internal/config"
	"github.com/rezonia/invoice-composer/internal/currency"
	"github.com/rezonia/invoice-composer/internal/export"
	"github.com/rezonia/invoice-composer/internal/form"
	"github.com/rezonia/invoice-composer/internal/render"
	"github.com/rezonia/invoice-composer/internal/store"
)

// App holds the long-lived services
type App struct {
	Config    config.Config
	Logger    logrus.FieldLogger
	Store     form.Store
	Formatter *currency.Formatter
	Renderer  *render.Renderer

	closers []io.Closer
}

// New builds the services described by cfg
func New(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*App, error) {
	a := &App{
		Config:    cfg,
		Logger:    logger,
		Formatter: currency.NewFormatter(currency.ParseLocale(cfg.Locale)),
	}

	labels := render.EnglishLabels
	if cfg.Labels == "es" {
		labels = render.SpanishLabels
	}
	a.Renderer = render.NewRenderer(a.Formatter, render.WithLabels(labels))

	switch cfg.Store {
	case config.StoreRemote:
		a.Store = store.NewRemoteStore(cfg.RemoteURL, cfg.RemoteTimeout, logger)
	case config.StoreSQLite:
		db, err := store.OpenSQLite(cfg.SQLiteDSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s, err := store.NewSQLStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		a.Store = s
		a.closers = append(a.closers, s)
	default:
		a.Store = store.NewMemoryStore()
	}

	return a, nil
}

// Close releases the store
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewForm creates an empty form bound to the configured store
func (a *App) NewForm() *form.Form {
	opts := []form.Option{
		form.WithLogger(a.Logger),
		form.WithFormatter(a.Formatter),
	}
	if a.Config.ErrorDisplay == "always" {
		opts = append(opts, form.WithErrorDisplay(form.DisplayAlways))
	}
	if a.Config.StrictContact {
		opts = append(opts, form.WithContactCheck(form.NewContactChecker(a.Config.PhoneRegion)))
	}
	return form.NewForm(a.Store, opts...)
}

// Pipeline builds an export pipeline for format delivering to sink
func (a *App) Pipeline(format string, sink export.Sink) (*export.Pipeline, error) {
	r, err := export.NewRasterizer(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, format)
	}
	return export.NewPipeline(a.Renderer, r, sink, a.Logger), nil
}

// ConfiguredSink returns the sink named in the configuration. The caller
// must close the returned closer when it is not nil.
func (a *App) ConfiguredSink(ctx context.Context) (export.Sink, io.Closer, error) {
	if a.Config.Sink != config.SinkGCS {
		return export.NewFileSink(a.Config.OutputDir), nil, nil
	}
	client, err := export.NewGCSClient(ctx, a.Config.GCSCredentialsJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("create gcs client: %w", err)
	}
	return export.NewGCSSink(client, a.Config.GCSBucket, a.Config.GCSPrefix), client, nil
}
