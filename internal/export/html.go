package export

import (
	"context"

	"github.com/rezonia/invoice-composer/internal/render"
)

// HTMLRasterizer passes the markup through unchanged, for sinks that print
// or display HTML themselves
type HTMLRasterizer struct{}

// Rasterize implements Rasterizer
func (HTMLRasterizer) Rasterize(ctx context.Context, doc render.Document) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Handle{
		Name:     "invoice.html",
		MIMEType: MIMETypeHTML,
		Data:     []byte(doc.HTML),
		Pages:    1,
	}, nil
}

// Formats lists the names accepted by NewRasterizer
var Formats = []string{"pdf", "xlsx", "html"}

// NewRasterizer returns the rasterizer for a format name
func NewRasterizer(format string) (Rasterizer, error) {
	switch format {
	case "", "pdf":
		return NewPDFRasterizer(), nil
	case "xlsx":
		return NewXLSXRasterizer(), nil
	case "html":
		return HTMLRasterizer{}, nil
	default:
		return nil, ErrUnknownFormat
	}
}
