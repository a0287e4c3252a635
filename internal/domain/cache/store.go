package cache

import (
	"context"
	"errors"
)

// ErrStoreFull is wrapped by drivers when a write fails because the
// underlying storage is out of quota or disk space.
var ErrStoreFull = errors.New("store full")

// Store defines the raw persistence contract the cache layer runs on.
// Implementations hold opaque bytes per key; expiry, namespacing and
// serialization all live above this interface.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
