package cloudwriter

import "context"

// CloudWriter buffers an object and uploads it on Close.
type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(ctx context.Context, bucket, objectPath, contentType string) (CloudWriter, error)
}
