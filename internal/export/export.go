// Package export runs a rendered invoice through a rasterizer and hands the
// resulting binary document to a share sink.
package export

import (
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/rezonia/invoice-composer/internal/logging"
	"github.com/rezonia/invoice-composer/internal/model"
	"github.com/rezonia/invoice-composer/internal/render"
)

// Handle is a rasterized document
type Handle struct {
	Name     string
	MIMEType string
	Data     []byte
	Pages    int
}

// Rasterizer turns a markup document into a binary document
type Rasterizer interface {
	Rasterize(ctx context.Context, doc render.Document) (*Handle, error)
}

// ShareResult is the answer of a sink
type ShareResult struct {
	Success  bool   `json:"success"`
	Location string `json:"location,omitempty"`
}

// Sink delivers a binary document to the user
type Sink interface {
	Share(ctx context.Context, h *Handle) (ShareResult, error)
}

// Result describes a completed export
type Result struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
	Pages    int    `json:"pages,omitempty"`
	Location string `json:"location,omitempty"`
}

// Pipeline sequences render, rasterize and share. A failing stage stops
// the remaining ones.
type Pipeline struct {
	renderer   *render.Renderer
	rasterizer Rasterizer
	sink       Sink
	logger     logrus.FieldLogger
}

// NewPipeline creates an export pipeline
func NewPipeline(renderer *render.Renderer, rasterizer Rasterizer, sink Sink, logger logrus.FieldLogger) *Pipeline {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		renderer:   renderer,
		rasterizer: rasterizer,
		sink:       sink,
		logger:     logger,
	}
}

// Export renders rec, rasterizes it and shares the result. Errors are
// *model.ExportError with code RASTERIZE_FAILED or SHARE_FAILED.
func (p *Pipeline) Export(ctx context.Context, rec *model.Record) (*Result, error) {
	doc := p.renderer.Render(rec)

	h, err := p.rasterizer.Rasterize(ctx, doc)
	if err == nil && h == nil {
		err = errNoDocument
	}
	if err != nil {
		exportErr := model.NewExportError(model.ErrCodeRasterizeFailed, "could not generate the document", err)
		logging.LogError(p.logger, "export", "Export", rec.ID(), "rasterize", exportErr)
		return nil, exportErr
	}
	h.Name = "invoice-" + rec.ID() + filepath.Ext(h.Name)

	res, err := p.sink.Share(ctx, h)
	if err == nil && !res.Success {
		err = errNotShared
	}
	if err != nil {
		exportErr := model.NewExportError(model.ErrCodeShareFailed, "could not share the document", err)
		logging.LogError(p.logger, "export", "Export", rec.ID(), h.Name, exportErr)
		return nil, exportErr
	}

	p.logger.WithFields(logrus.Fields{
		"id":       rec.ID(),
		"name":     h.Name,
		"size":     len(h.Data),
		"location": res.Location,
	}).Info("invoice exported")

	return &Result{
		Name:     h.Name,
		MIMEType: h.MIMEType,
		Size:     len(h.Data),
		Pages:    h.Pages,
		Location: res.Location,
	}, nil
}
