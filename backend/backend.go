// Package backend defines the storage capability consumed by fncache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no prepended
// metadata, no re-encoding, no mutation). If a store performs internal
// transforms (e.g., compression), they MUST be fully reversed so that the
// bytes returned by Get are identical to the bytes provided to Set.
//
// fncache composes keys as namespace:identifier:hash, so a namespace is
// equivalently a key prefix "namespace:"; Clear relies on that shape.
package backend

import (
	"context"
	"time"
)

// Backend is a minimal byte store with TTLs. Must be safe for concurrent
// use. The core never assumes transactional guarantees beyond what each
// individual call promises.
type Backend interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. Non-positive TTLs mean the
	// backend's default retention.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key (best-effort; absent keys are not an error).
	Delete(ctx context.Context, key string) error

	// Clear removes every key under the namespace scope, or every key
	// owned by this cache instance when namespace is empty.
	Clear(ctx context.Context, namespace string) error
}
