package storage

import (
	"context"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/pkg/config"
)

// New elige el adaptador según STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig) (ports.BlobStore, error) {
	if cfg.Driver == "s3" {
		return NewS3Storage(ctx, cfg)
	}
	return NewLocalStorage(cfg.LocalDir)
}
