package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileSink writes documents into a directory
type FileSink struct {
	dir string
}

// NewFileSink creates a sink writing to dir
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Share implements Sink
func (s *FileSink) Share(ctx context.Context, h *Handle) (ShareResult, error) {
	if err := ctx.Err(); err != nil {
		return ShareResult{}, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return ShareResult{}, fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(s.dir, filepath.Base(h.Name))
	if err := os.WriteFile(path, h.Data, 0o644); err != nil {
		return ShareResult{}, fmt.Errorf("write %s: %w", path, err)
	}
	return ShareResult{Success: true, Location: path}, nil
}

// WriterSink streams documents to a writer such as stdout or an HTTP body
type WriterSink struct {
	w io.Writer
}

// NewWriterSink creates a sink writing to w
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Share implements Sink
func (s *WriterSink) Share(ctx context.Context, h *Handle) (ShareResult, error) {
	if err := ctx.Err(); err != nil {
		return ShareResult{}, err
	}
	if _, err := s.w.Write(h.Data); err != nil {
		return ShareResult{}, err
	}
	return ShareResult{Success: true}, nil
}
