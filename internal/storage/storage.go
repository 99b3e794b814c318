// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO, AWS S3).
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrStorage wraps every backend failure of the gateway. Callers match it
// with errors.Is; the underlying cause is retained in the message only.
var ErrStorage = errors.New("storage operation failed")

// ErrInvalidReference is returned when a stored reference cannot be
// resolved to an object key.
var ErrInvalidReference = errors.New("invalid reference format")

// Storage is the interface for uploading and retrieving objects.
//
// References returned by Upload and accepted by PresignedURL and Delete are
// either bare object keys ("folder/file") or fully-qualified access URLs;
// implementations resolve both forms.
type Storage interface {
	// Upload streams data to the store under folder/<unique>_<filename>
	// and returns the fully-qualified access URL of the stored object.
	Upload(ctx context.Context, folder, filename string, reader io.Reader, size int64, contentType string) (string, error)
	// PresignedURL issues a time-limited URL granting read access to the
	// object behind the reference. URLs are never cached.
	PresignedURL(ctx context.Context, ref string) (string, error)
	// Delete removes the object behind the reference.
	Delete(ctx context.Context, ref string) error
}
