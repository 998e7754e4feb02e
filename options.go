package fncache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/fncache/keys"
	"github.com/unkn0wn-root/fncache/serde"
)

// DefaultTTL applies when a wrapper's TTL is zero.
const DefaultTTL = time.Hour

// Operation is the unit of work the wrappers intercept: context-accepting,
// suspendable, and free to produce side effects. The context parameter is
// what makes an operation wrappable; plain synchronous functions have no
// place here by construction.
type Operation[I, O any] func(ctx context.Context, in I) (O, error)

// Predicate guards caching based on the call's input. Predicates may block
// on ctx; their errors propagate to the caller and are never swallowed.
type Predicate[I any] func(ctx context.Context, in I) (bool, error)

// ResultPredicate guards storage based on the operation's result.
type ResultPredicate[O any] func(ctx context.Context, out O) (bool, error)

// CacheableOptions configures read-through wrapping.
type CacheableOptions[I, O any] struct {
	// Namespace scopes the key and namespace-wide eviction. Required.
	Namespace string

	// Key overrides the operation identity segment of the cache key.
	// Leave empty to use the operation's runtime function name.
	Key string

	// TTL for stored entries. Zero means DefaultTTL; negative means the
	// backend's default retention.
	TTL time.Duration

	// Condition skips caching entirely when false: the operation runs and
	// its result is returned uncached. Defaults to always true.
	Condition Predicate[I]

	// Unless skips storing the result when true. Defaults to always false.
	Unless ResultPredicate[O]

	// KeyBuilder replaces the default key composition. Builder failures
	// log and fall back to the default key; they never abort the call.
	KeyBuilder keys.Builder

	// Exclusions are argument names stripped before hashing. Nil applies
	// keys.DefaultExclusions; an empty non-nil slice excludes nothing.
	Exclusions []string

	// Format overrides the registry's default serialization format.
	Format serde.Format
}

// PutOptions configures write-through wrapping. Fields mirror
// CacheableOptions; the difference is purely behavioral: the operation
// always executes and the cache is refreshed from its result.
type PutOptions[I, O any] struct {
	Namespace  string
	Key        string
	TTL        time.Duration
	Condition  Predicate[I]
	Unless     ResultPredicate[O]
	KeyBuilder keys.Builder
	Exclusions []string
	Format     serde.Format
}

// EvictOptions configures eviction wrapping.
type EvictOptions[I any] struct {
	// Namespace scopes the eviction. Required for single-key eviction;
	// optional with AllEntries, where empty clears every key this cache
	// instance owns.
	Namespace string

	// Key overrides the operation identity segment of the derived key.
	Key string

	// AllEntries clears the whole namespace instead of one derived key.
	AllEntries bool

	// BeforeInvocation evicts before the operation runs; otherwise
	// eviction happens strictly after it completes successfully.
	BeforeInvocation bool

	// Condition skips eviction when false; the operation still executes.
	Condition Predicate[I]

	KeyBuilder keys.Builder
	Exclusions []string
}
