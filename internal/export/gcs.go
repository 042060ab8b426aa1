package export

import (
	"context"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a storage client. An explicit credentials JSON wins
// over application default credentials.
func NewGCSClient(ctx context.Context, credentialsJSON string, opts ...option.ClientOption) (*storage.Client, error) {
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	return storage.NewClient(ctx, opts...)
}

// GCSSink uploads documents to a Cloud Storage bucket
type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSSink creates a sink writing objects under prefix in bucket
func NewGCSSink(client *storage.Client, bucket, prefix string) *GCSSink {
	return &GCSSink{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// ObjectName returns the object key used for a document name
func (s *GCSSink) ObjectName(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Share implements Sink
func (s *GCSSink) Share(ctx context.Context, h *Handle) (ShareResult, error) {
	object := s.ObjectName(h.Name)

	wc := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	wc.ContentType = h.MIMEType
	if _, err := wc.Write(h.Data); err != nil {
		_ = wc.Close()
		return ShareResult{}, fmt.Errorf("upload %s: %w", object, err)
	}
	if err := wc.Close(); err != nil {
		return ShareResult{}, fmt.Errorf("upload %s: %w", object, err)
	}

	return ShareResult{
		Success:  true,
		Location: fmt.Sprintf("gs://%s/%s", s.bucket, object),
	}, nil
}
