// Package blob stores the inter-stage JSON artifacts by logical key,
// on the local filesystem or in an S3-compatible object store.
package blob

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no object exists for a key.
	ErrNotFound = errors.New("object not found")
	// ErrAuth is returned when the backend rejects the credentials.
	ErrAuth = errors.New("storage access denied")
)

// Store reads and writes whole JSON artifacts. Implementations never
// return partial reads.
type Store interface {
	// GetJSON returns the raw object for key.
	GetJSON(ctx context.Context, key string) ([]byte, error)
	// PutJSON atomically replaces the object for key.
	PutJSON(ctx context.Context, key string, data []byte) error
	// Exists reports whether an object exists for key.
	Exists(ctx context.Context, key string) (bool, error)
}
