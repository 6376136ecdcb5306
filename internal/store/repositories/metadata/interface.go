// Package metadata persists non-secret, store-level parameters such as the
// key-derivation function and its salt.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyStoreID   = "store_id"
	KeyKDF       = "kdf"
	KeyKDFSalt   = "kdf_salt"
	KeyCreatedAt = "created_at"
)

type Repository interface {
	// Available reports whether the metadata table exists. Stores created
	// before it was introduced have none.
	Available(ctx context.Context) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	List(ctx context.Context) (map[string][]byte, error)
}
