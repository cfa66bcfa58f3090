package storage

import (
	"context"
	"errors"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrObjectNotFound = errors.New("object not found in storage")

// ObjectStorage reads catalog objects and hands out temporary links to them.
type ObjectStorage interface {
	// GetObject downloads the whole object. A missing key yields ErrObjectNotFound.
	GetObject(ctx context.Context, objectKey string) ([]byte, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}
