package export

import "errors"

var (
	errNoDocument = errors.New("rasterizer returned no document")
	errNotShared  = errors.New("sink reported failure")

	// ErrUnknownFormat is returned for an output format with no rasterizer
	ErrUnknownFormat = errors.New("unknown export format")
)
