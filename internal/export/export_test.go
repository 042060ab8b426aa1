package export_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"

	"github.com/rezonia/invoice-composer/internal/currency"
	"github.com/rezonia/invoice-composer/internal/export"
	"github.com/rezonia/invoice-composer/internal/model"
	"github.com/rezonia/invoice-composer/internal/render"
)

func sampleRecord(items int) *model.Record {
	lines := make([]model.LineItem, items)
	for i := range lines {
		lines[i] = model.LineItem{
			Description: "Diseño gráfico",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.RequireFromString("100.5"),
		}
	}
	client := model.Client{Name: "Acme SAS", IDType: "NIT", IDNumber: "900123456", Email: "a@acme.test", Phone: "+573001234567"}
	return model.NewRecord("rec-1", client, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "EUR", lines)
}

func newRenderer() *render.Renderer {
	return render.NewRenderer(currency.NewDefaultFormatter())
}

type fakeRasterizer struct {
	handle *export.Handle
	err    error
	calls  int
}

func (r *fakeRasterizer) Rasterize(_ context.Context, doc render.Document) (*export.Handle, error) {
	r.calls++
	if r.err != nil || r.handle != nil {
		return r.handle, r.err
	}
	return &export.Handle{Name: "doc.txt", MIMEType: "text/plain", Data: []byte(doc.TotalLine)}, nil
}

type fakeSink struct {
	result export.ShareResult
	err    error
	shared []*export.Handle
}

func (s *fakeSink) Share(_ context.Context, h *export.Handle) (export.ShareResult, error) {
	s.shared = append(s.shared, h)
	return s.result, s.err
}

func TestPipeline_Success(t *testing.T) {
	sink := &fakeSink{result: export.ShareResult{Success: true, Location: "mem://1"}}
	p := export.NewPipeline(newRenderer(), &fakeRasterizer{}, sink, nil)

	res, err := p.Export(context.Background(), sampleRecord(1))
	require.NoError(t, err)
	assert.Equal(t, "invoice-rec-1.txt", res.Name)
	assert.Equal(t, "mem://1", res.Location)
	require.Len(t, sink.shared, 1)
	assert.Equal(t, "€201.00", string(sink.shared[0].Data))
}

func TestPipeline_RasterizeFailureStopsShare(t *testing.T) {
	tests := []struct {
		name string
		r    export.Rasterizer
	}{
		{"error", &fakeRasterizer{err: errors.New("out of memory")}},
		{"nil handle", nilRasterizer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{result: export.ShareResult{Success: true}}
			p := export.NewPipeline(newRenderer(), tt.r, sink, nil)

			_, err := p.Export(context.Background(), sampleRecord(1))
			assertExportCode(t, err, model.ErrCodeRasterizeFailed)
			assert.Empty(t, sink.shared)
		})
	}
}

type nilRasterizer struct{}

func (nilRasterizer) Rasterize(context.Context, render.Document) (*export.Handle, error) {
	return nil, nil
}

func TestPipeline_ShareFailure(t *testing.T) {
	sinks := map[string]*fakeSink{
		"error":    {err: errors.New("denied")},
		"rejected": {result: export.ShareResult{Success: false}},
	}

	for name, sink := range sinks {
		t.Run(name, func(t *testing.T) {
			p := export.NewPipeline(newRenderer(), &fakeRasterizer{}, sink, nil)
			res, err := p.Export(context.Background(), sampleRecord(1))
			assert.Nil(t, res)
			assertExportCode(t, err, model.ErrCodeShareFailed)
		})
	}
}

func assertExportCode(t *testing.T, err error, code string) {
	t.Helper()
	var exportErr *model.ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, code, exportErr.Code)
}

func TestPDFRasterizer(t *testing.T) {
	r := export.NewPDFRasterizer()
	doc := newRenderer().Render(sampleRecord(3))

	h, err := r.Rasterize(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, export.MIMETypePDF, h.MIMEType)
	assert.True(t, bytes.HasPrefix(h.Data, []byte("%PDF-")))
	assert.Equal(t, 1, h.Pages)

	again, err := r.Rasterize(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, h.Data, again.Data)
}

func TestPDFRasterizer_Paginates(t *testing.T) {
	r := export.NewPDFRasterizer()

	h, err := r.Rasterize(context.Background(), newRenderer().Render(sampleRecord(80)))
	require.NoError(t, err)
	assert.Greater(t, h.Pages, 1)
}

func TestPDFRasterizer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := export.NewPDFRasterizer().Rasterize(ctx, newRenderer().Render(sampleRecord(1)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestXLSXRasterizer(t *testing.T) {
	doc := newRenderer().Render(sampleRecord(2))

	h, err := export.NewXLSXRasterizer().Rasterize(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, export.MIMETypeXLSX, h.MIMEType)

	f, err := excelize.OpenReader(bytes.NewReader(h.Data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Invoice", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Invoice", title)

	rows, err := f.GetRows("Invoice")
	require.NoError(t, err)
	last := rows[len(rows)-1]
	assert.Equal(t, []string{"", "", "Total", doc.TotalLine}, last)
}

func TestHTMLRasterizer(t *testing.T) {
	doc := newRenderer().Render(sampleRecord(1))

	h, err := export.HTMLRasterizer{}.Rasterize(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, doc.HTML, string(h.Data))
}

func TestNewRasterizer(t *testing.T) {
	for _, format := range export.Formats {
		r, err := export.NewRasterizer(format)
		require.NoError(t, err, format)
		assert.NotNil(t, r)
	}
	_, err := export.NewRasterizer("docx")
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := export.NewFileSink(dir)

	res, err := sink.Share(context.Background(), &export.Handle{Name: "../invoice-1.pdf", Data: []byte("data")})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, filepath.Join(dir, "invoice-1.pdf"), res.Location)

	data, err := os.ReadFile(res.Location)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	res, err := export.NewWriterSink(&buf).Share(context.Background(), &export.Handle{Data: []byte("abc")})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "abc", buf.String())
}

func TestGCSSink_ObjectName(t *testing.T) {
	assert.Equal(t, "invoices/a.pdf", export.NewGCSSink(nil, "b", "/invoices/").ObjectName("a.pdf"))
	assert.Equal(t, "a.pdf", export.NewGCSSink(nil, "b", "").ObjectName("a.pdf"))
}

func TestGCSSink_UnreachableFailsPipeline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := export.NewGCSClient(ctx, "",
		option.WithEndpoint("http://127.0.0.1:1/storage/v1/"),
		option.WithoutAuthentication())
	require.NoError(t, err)
	defer client.Close()

	p := export.NewPipeline(newRenderer(), export.HTMLRasterizer{}, export.NewGCSSink(client, "invoices", ""), nil)
	_, err = p.Export(ctx, sampleRecord(1))
	assertExportCode(t, err, model.ErrCodeShareFailed)
}
