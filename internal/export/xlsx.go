package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rezonia/invoice-composer/internal/render"
)

const xlsxSheet = "Invoice"

// XLSXRasterizer writes the document as a single-sheet workbook
type XLSXRasterizer struct{}

// NewXLSXRasterizer creates a spreadsheet rasterizer
func NewXLSXRasterizer() *XLSXRasterizer {
	return &XLSXRasterizer{}
}

// Rasterize implements Rasterizer
func (r *XLSXRasterizer) Rasterize(ctx context.Context, doc render.Document) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, err
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: doc.Title, Creator: "invoice-composer"}); err != nil {
		return nil, err
	}

	row := 1
	if err := f.SetCellValue(xlsxSheet, cell(1, row), doc.Title); err != nil {
		return nil, err
	}
	row += 2

	for _, line := range doc.Header {
		if err := f.SetSheetRow(xlsxSheet, cell(1, row), &[]any{line.Label, line.Value}); err != nil {
			return nil, err
		}
		row++
	}
	row++

	header := []any{doc.Columns[0], doc.Columns[1], doc.Columns[2], doc.Columns[3]}
	if err := f.SetSheetRow(xlsxSheet, cell(1, row), &header); err != nil {
		return nil, err
	}
	row++

	for _, item := range doc.Rows {
		values := []any{item.Description, item.Quantity, item.UnitPrice, item.Subtotal}
		if err := f.SetSheetRow(xlsxSheet, cell(1, row), &values); err != nil {
			return nil, err
		}
		row++
	}

	if err := f.SetSheetRow(xlsxSheet, cell(3, row), &[]any{doc.TotalLabel, doc.TotalLine}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}

	return &Handle{
		Name:     "invoice.xlsx",
		MIMEType: MIMETypeXLSX,
		Data:     buf.Bytes(),
		Pages:    1,
	}, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
