package export

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/rezonia/invoice-composer/internal/render"
)

// MIME types of the supported formats
const (
	MIMETypePDF  = "application/pdf"
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMETypeHTML = "text/html; charset=utf-8"
)

var pdfcpuOnce sync.Once

// PDFRasterizer lays the document out on A4 pages with gofpdf and checks the
// result with pdfcpu
type PDFRasterizer struct {
	created time.Time
	conf    *model.Configuration
}

// NewPDFRasterizer creates a PDF rasterizer. Every document carries the
// same creation date so equal input gives equal bytes.
func NewPDFRasterizer() *PDFRasterizer {
	pdfcpuOnce.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFRasterizer{
		created: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		conf:    conf,
	}
}

var pdfColumnWidths = [4]float64{80, 30, 40, 40}

// Rasterize implements Rasterizer
func (r *PDFRasterizer) Rasterize(ctx context.Context, doc render.Document) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(r.created)
	pdf.SetCatalogSort(true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(doc.Title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0xFF, 0xA7, 0x26)
	pdf.CellFormat(0, 12, tr(doc.Title), "", 1, "L", false, 0, "")

	pdf.SetTextColor(0x22, 0x22, 0x22)
	for _, line := range doc.Header {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(40, 6, tr(line.Label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 6, tr(line.Value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(0x29, 0x79, 0xFF)
	pdf.SetTextColor(0xFF, 0xFF, 0xFF)
	for i, col := range doc.Columns {
		pdf.CellFormat(pdfColumnWidths[i], 8, tr(col), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(0x22, 0x22, 0x22)
	for _, row := range doc.Rows {
		pdf.CellFormat(pdfColumnWidths[0], 8, tr(row.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(pdfColumnWidths[1], 8, tr(row.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(pdfColumnWidths[2], 8, tr(row.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(pdfColumnWidths[3], 8, tr(row.Subtotal), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0xFF, 0xA7, 0x26)
	pdf.CellFormat(0, 10, tr(doc.TotalLabel+": "+doc.TotalLine), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	data := buf.Bytes()
	pages, err := api.PageCount(bytes.NewReader(data), r.conf)
	if err != nil {
		return nil, fmt.Errorf("check pdf: %w", err)
	}

	return &Handle{
		Name:     "invoice.pdf",
		MIMEType: MIMETypePDF,
		Data:     data,
		Pages:    pages,
	}, nil
}
