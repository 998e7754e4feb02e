// Package fncache wraps context-accepting operations with read-through,
// write-through, and eviction caching against a pluggable key-value
// backend, in the style of annotation-driven caching from enterprise
// frameworks.
//
// Components:
//   - backend.Backend: byte store with TTL (Redis, BigCache, in-memory).
//   - serde: type-preserving serialization; json/msgpack/cbor carry a
//     tagged canonical structure, gob is the trusted-only native format.
//   - keys: deterministic key derivation from an operation's bound
//     arguments (namespace:identifier:sha256).
//   - Registry: the active backend plus defaults; one per process via
//     Init, or constructed explicitly and passed to the wrappers.
//
// Keys:
//
//	<namespace>:<identifier>:<hex sha-256 over canonical args>
//
// Failure policy: only configuration/decoration errors and the wrapped
// operation's own errors reach the caller. Backend IO failures on the
// read, write, and evict paths are logged and absorbed, so under backend
// trouble every call behaves as if caching were disabled.
//
// Concurrency: there is no cross-call coordination. Two concurrent calls
// that miss on the same key both execute the underlying operation and
// both write the cache, last write wins at the backend. That is an
// accepted limitation of the design, not a bug; add request coalescing in
// front of the wrapper if duplicate upstream work matters.
package fncache
