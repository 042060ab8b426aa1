package invoicelib_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-composer/pkg/invoicelib"
)

func validDraft() invoicelib.Draft {
	return invoicelib.Draft{
		HeaderDraft: invoicelib.HeaderDraft{
			ClientName: "Acme SAS",
			IDType:     "NIT",
			IDNumber:   "900123456",
			Email:      "billing@acme.test",
			Phone:      "+1 650-253-0000",
			IssueDate:  "2024-03-01",
			Currency:   "USD",
		},
		Items: []invoicelib.ItemDraft{
			{Description: "Design", Quantity: "2", Price: "100"},
			{Description: "Hosting", Quantity: "1", Price: "15"},
		},
	}
}

func TestDefaultComposerOptions(t *testing.T) {
	opts := invoicelib.DefaultComposerOptions()

	assert.Equal(t, "en", opts.Locale)
	assert.Equal(t, "pdf", opts.Format)
	assert.Equal(t, "CO", opts.PhoneRegion)
	assert.Equal(t, invoicelib.EnglishLabels, opts.Labels)
	assert.False(t, opts.StrictContact)
}

func TestNewComposer_UnknownFormat(t *testing.T) {
	opts := invoicelib.DefaultComposerOptions()
	opts.Format = "docx"

	_, err := invoicelib.NewComposer(invoicelib.NewMemoryStore(), opts)
	assert.Error(t, err)
}

func TestComposer_Preview(t *testing.T) {
	c := invoicelib.NewDefaultComposer()

	d := validDraft()
	d.Items = append(d.Items, invoicelib.ItemDraft{Description: "Draft", Quantity: "abc", Price: "10"})

	summary, err := c.Preview(d)
	require.NoError(t, err)
	assert.Len(t, summary.Lines, 3)
	assert.Equal(t, "$215.00", summary.Formatted)
}

func TestComposer_Validate(t *testing.T) {
	c := invoicelib.NewDefaultComposer()

	rec, err := c.Validate(validDraft())
	require.NoError(t, err)
	assert.Equal(t, "$215.00", c.FormatTotal(rec))

	d := validDraft()
	d.Items[1].Price = "-1"
	_, err = c.Validate(d)

	var verr *invoicelib.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, invoicelib.ErrCodeInvalidNumber, verr.Code)
	assert.Equal(t, 1, verr.Item)
}

func TestComposer_SubmitStrictContact(t *testing.T) {
	opts := invoicelib.DefaultComposerOptions()
	opts.StrictContact = true
	c, err := invoicelib.NewComposer(invoicelib.NewMemoryStore(), opts)
	require.NoError(t, err)

	d := validDraft()
	d.Email = "not-an-email"
	_, err = c.Submit(context.Background(), d)

	var verr *invoicelib.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, invoicelib.ErrCodeInvalidFormat, verr.Code)

	rec, err := c.Submit(context.Background(), validDraft())
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID())
}

func TestComposer_RenderSpanish(t *testing.T) {
	opts := invoicelib.DefaultComposerOptions()
	opts.Labels = invoicelib.SpanishLabels
	c, err := invoicelib.NewComposer(invoicelib.NewMemoryStore(), opts)
	require.NoError(t, err)

	rec, err := c.Validate(validDraft())
	require.NoError(t, err)

	doc := c.Render(rec)
	assert.Equal(t, "Factura", doc.Title)
	assert.Equal(t, "$215.00", doc.TotalLine)
}

func TestComposer_ExportTo(t *testing.T) {
	c := invoicelib.NewDefaultComposer()

	rec, err := c.Validate(validDraft())
	require.NoError(t, err)

	var buf bytes.Buffer
	info, err := c.ExportTo(context.Background(), rec, &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, buf.Len(), info.Size)
	assert.Equal(t, 1, info.Pages)
}

func TestComposer_ExportBatch(t *testing.T) {
	opts := invoicelib.DefaultComposerOptions()
	opts.Format = "html"
	c, err := invoicelib.NewComposer(invoicelib.NewMemoryStore(), opts)
	require.NoError(t, err)

	dir := t.TempDir()
	bad := validDraft()
	bad.ClientName = ""

	results, err := c.ExportBatch(context.Background(), []invoicelib.Draft{validDraft(), bad, validDraft()}, invoicelib.NewFileSink(dir))
	require.Error(t, err)
	require.Len(t, results, 3)

	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.NotNil(t, results[2])
	assert.NotEqual(t, results[0].Name, results[2].Name)

	data, err := os.ReadFile(filepath.Join(dir, results[0].Name))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Acme SAS")
}
