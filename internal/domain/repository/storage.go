package repository

import (
	"context"
	"io"
	"time"
)

// ObjectStorage defines the interface for object storage operations.
// Implementations are provided by the infrastructure layer (e.g., MinIO).
type ObjectStorage interface {
	// GeneratePresignedUploadURL creates a write-only presigned URL for
	// direct client upload of the given key, valid for expiry.
	GeneratePresignedUploadURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Upload stores an object. Used for writing processed segments.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Download retrieves an object. Caller closes the returned ReadCloser.
	// Returns ErrObjectNotFound if the key does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object from the storage.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists in the storage.
	Exists(ctx context.Context, key string) (bool, error)
}
