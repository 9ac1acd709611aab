package ports

import (
	"context"
	"io"
)

// ObjectStorage stores blobs and returns a stable reference to them.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error)
	Delete(ctx context.Context, bucket, objectName string) error
}
