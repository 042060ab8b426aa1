package app_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-composer/internal/app"
	"github.com/rezonia/invoice-composer/internal/config"
	"github.com/rezonia/invoice-composer/internal/export"
	"github.com/rezonia/invoice-composer/internal/logging"
	"github.com/rezonia/invoice-composer/internal/model"
	"github.com/rezonia/invoice-composer/internal/store"
)

func baseConfig() config.Config {
	return config.Config{
		Store:        config.StoreMemory,
		Locale:       "en",
		Labels:       "es",
		ErrorDisplay: "blur",
		ExportFormat: "pdf",
		Sink:         config.SinkFile,
		PhoneRegion:  "CO",
	}
}

func draft() model.Draft {
	return model.Draft{
		HeaderDraft: model.HeaderDraft{
			ClientName: "Acme", IDType: "NIT", IDNumber: "1", Email: "a@b.co", Phone: "3001234567",
			IssueDate: "2024-03-01", Currency: "USD",
		},
		Items: []model.ItemDraft{{Description: "Design", Quantity: "2", Price: "100"}},
	}
}

func TestNew_MemoryStoreRoundTrip(t *testing.T) {
	a, err := app.New(context.Background(), baseConfig(), logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	f := a.NewForm()
	require.NoError(t, f.Load(draft()))
	rec, err := f.Submit(context.Background())
	require.NoError(t, err)

	mem, ok := a.Store.(*store.MemoryStore)
	require.True(t, ok)
	_, err = mem.Get(context.Background(), rec.ID())
	assert.NoError(t, err)
}

func TestNew_SQLiteStore(t *testing.T) {
	cfg := baseConfig()
	cfg.Store = config.StoreSQLite
	cfg.SQLiteDSN = ":memory:"

	a, err := app.New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	_, ok := a.Store.(*store.SQLStore)
	assert.True(t, ok)
}

func TestNewForm_StrictContact(t *testing.T) {
	cfg := baseConfig()
	cfg.StrictContact = true
	a, err := app.New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	f := a.NewForm()
	d := draft()
	d.Email = "nope"
	require.NoError(t, f.Load(d))

	_, err = f.Submit(context.Background())
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, model.ErrCodeInvalidFormat, verr.Code)
}

func TestPipeline_SpanishHTML(t *testing.T) {
	a, err := app.New(context.Background(), baseConfig(), logging.Discard())
	require.NoError(t, err)

	f := a.NewForm()
	require.NoError(t, f.Load(draft()))
	rec, err := f.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	p, err := a.Pipeline("html", export.NewWriterSink(&buf))
	require.NoError(t, err)
	_, err = p.Export(context.Background(), rec)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Factura")
	assert.Contains(t, buf.String(), "$200.00")

	_, err = a.Pipeline("docx", export.NewWriterSink(&buf))
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestConfiguredSink_File(t *testing.T) {
	cfg := baseConfig()
	cfg.OutputDir = t.TempDir()
	a, err := app.New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	sink, closer, err := a.ConfiguredSink(context.Background())
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.IsType(t, &export.FileSink{}, sink)
}
