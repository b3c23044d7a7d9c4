package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxPDFSize caps the originals bucket at ~100MB per object.
	MaxPDFSize = 100 << 20
	// MaxAssetSize caps logos and other image assets at ~5MB.
	MaxAssetSize = 5 << 20
)

var assetMIMETypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// ValidatePDFUpload runs the size and MIME checks that must reject a bad
// file before any network call is made.
func ValidatePDFUpload(size int64, contentType string) error {
	if size <= 0 {
		return fmt.Errorf("empty file")
	}
	if size > MaxPDFSize {
		return fmt.Errorf("file exceeds the %dMB limit", MaxPDFSize>>20)
	}
	if contentType != "application/pdf" {
		return fmt.Errorf("only PDF files are accepted, got %q", contentType)
	}
	return nil
}

// ValidateAssetUpload is the image-bucket counterpart of ValidatePDFUpload.
func ValidateAssetUpload(size int64, contentType string) error {
	if size <= 0 {
		return fmt.Errorf("empty file")
	}
	if size > MaxAssetSize {
		return fmt.Errorf("file exceeds the %dMB limit", MaxAssetSize>>20)
	}
	if !assetMIMETypes[contentType] {
		return fmt.Errorf("unsupported image type %q", contentType)
	}
	return nil
}

// ObjectKey builds an owner-prefixed key: the first path segment is the
// owning user's id, which is what the bucket write policy checks.
func ObjectKey(ownerID uint, filename string) string {
	name := strings.ReplaceAll(filename, "/", "_")
	name = strings.ReplaceAll(name, "..", "_")
	return fmt.Sprintf("%d/%s-%s", ownerID, uuid.NewString(), name)
}
