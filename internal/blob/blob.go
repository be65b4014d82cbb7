// Package blob stores document payloads. Keys are namespaced per owner:
// the stored object for (owner, key) lives at owner/key, and no call can
// reach outside the calling owner's namespace.
package blob

import (
	"context"
	"io"
	"time"
)

// Info describes one stored object.
type Info struct {
	// Owner is the namespace segment of the object key.
	Owner string
	// Key is the object key within the owner's namespace.
	Key string
	// Size is the object size in bytes.
	Size int64
	// ModTime is when the object was last written.
	ModTime time.Time
}

// Store is the blob storage contract. Implementations must treat the
// owner as a hard namespace boundary.
type Store interface {
	// Put writes the object, replacing any previous content.
	Put(ctx context.Context, owner, key string, r io.Reader) (Info, error)
	// Open returns a reader over the object's content.
	Open(ctx context.Context, owner, key string) (io.ReadCloser, Info, error)
	// Delete removes the object. Deleting a missing object is an error
	// so callers can surface partial cleanup failures.
	Delete(ctx context.Context, owner, key string) error
	// List enumerates every stored object across owners.
	List(ctx context.Context) ([]Info, error)
}
