package fncache

import "errors"

// Configuration and decoration errors. These are the only cache-side
// failures a caller ever sees; backend IO trouble degrades to cache-miss
// behavior instead.
var (
	// ErrNotInitialized reports use of the process-wide registry before Init.
	ErrNotInitialized = errors.New("fncache: registry not initialized; call fncache.Init at startup")

	// ErrAlreadyInitialized reports a second Init. The registry is
	// single-assignment; there is no runtime backend swapping.
	ErrAlreadyInitialized = errors.New("fncache: registry already initialized")

	// ErrNilBackend reports registry construction without a backend.
	ErrNilBackend = errors.New("fncache: backend is required")

	// ErrNilOperation reports wrapping a nil operation.
	ErrNilOperation = errors.New("fncache: operation is required")

	// ErrMissingNamespace reports a wrapper configured without the
	// namespace it needs (Cacheable, CachePut, and single-key CacheEvict).
	ErrMissingNamespace = errors.New("fncache: namespace is required")
)
