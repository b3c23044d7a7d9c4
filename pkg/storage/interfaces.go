package storage

import (
	"context"
	"io"
)

// ObjectStorage is the surface services depend on; tests substitute a stub.
type ObjectStorage interface {
	UploadPDF(ctx context.Context, ownerID uint, filename string, src io.Reader, size int64, contentType string) (url string, key string, err error)
	UploadAsset(ctx context.Context, ownerID uint, filename string, src io.Reader, size int64, contentType string) (url string, key string, err error)
	DeletePDF(ctx context.Context, key string) error
	DeleteAsset(ctx context.Context, key string) error
}
