package ports

import (
	"context"
	"io"
)

// BlobStore almacenamiento de respaldos (directorio local o bucket S3).
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
