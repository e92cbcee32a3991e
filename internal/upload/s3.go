package upload

import (
	"context"
	"strings"

	"github.com/pawonsalam/restosuite/internal/cloudwriter"
)

// S3Store uploads through a cloud writer. URLs are built from the public base
// URL of the bucket.
type S3Store struct {
	factory cloudwriter.CloudWriterFactory
	bucket  string
	baseURL string
}

func NewS3Store(factory cloudwriter.CloudWriterFactory, bucket, publicBaseURL string) *S3Store {
	return &S3Store{factory: factory, bucket: bucket, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *S3Store) Save(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	key := strings.TrimPrefix(PublicPrefix, "/") + name
	w, err := s.factory.NewWriter(ctx, s.bucket, key, mimeType)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return s.baseURL + "/" + key, nil
}
