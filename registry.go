package fncache

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/unkn0wn-root/fncache/backend"
	"github.com/unkn0wn-root/fncache/serde"
)

// Registry holds the active backend and the defaults the wrappers use.
// Construct one explicitly and pass it to the wrappers, or install a
// process-wide instance with Init and pass nil.
type Registry struct {
	backend backend.Backend
	format  serde.Format
	log     Logger
	hooks   Hooks
}

type Option func(*Registry)

// WithDefaultFormat sets the serialization format used when a wrapper does
// not override it.
func WithDefaultFormat(f serde.Format) Option {
	return func(r *Registry) { r.format = f }
}

func WithLogger(l Logger) Option {
	return func(r *Registry) { r.log = l }
}

func WithHooks(h Hooks) Option {
	return func(r *Registry) { r.hooks = h }
}

// New builds a Registry around a backend. A nil backend and an unknown
// default format are configuration errors.
func New(b backend.Backend, opts ...Option) (*Registry, error) {
	if b == nil {
		return nil, ErrNilBackend
	}
	r := &Registry{
		backend: b,
		format:  serde.Default(),
		log:     NopLogger{},
		hooks:   NopHooks{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if !serde.Known(r.format) {
		return nil, fmt.Errorf("%w: %q", serde.ErrUnknownFormat, r.format)
	}
	if r.log == nil {
		r.log = NopLogger{}
	}
	if r.hooks == nil {
		r.hooks = NopHooks{}
	}
	return r, nil
}

func (r *Registry) Backend() backend.Backend { return r.backend }

func (r *Registry) DefaultFormat() serde.Format { return r.format }

func (r *Registry) selfHeal(ctx context.Context, key, reason string) {
	_ = r.backend.Delete(ctx, key)
	r.hooks.SelfHeal(key, reason)
}

// The process-wide registry is single-assignment: Init is its only mutation
// point, so steady-state reads need no locking.
var current atomic.Pointer[Registry]

// Init installs the process-wide registry. It MUST be called once at
// application startup; a second call fails with ErrAlreadyInitialized.
// The default format also becomes the serde process default, matching
// what direct serde.Encode/Decode callers see.
func Init(b backend.Backend, opts ...Option) error {
	r, err := New(b, opts...)
	if err != nil {
		return err
	}
	if !current.CompareAndSwap(nil, r) {
		return ErrAlreadyInitialized
	}
	_ = serde.SetDefault(r.format) // format validated by New
	return nil
}

// Current returns the process-wide registry installed by Init.
func Current() (*Registry, error) {
	r := current.Load()
	if r == nil {
		return nil, ErrNotInitialized
	}
	return r, nil
}

// Initialized reports whether Init has run.
func Initialized() bool { return current.Load() != nil }

// Reset clears the process-wide registry. Test teardown only; production
// code has no reason to call it.
func Reset() { current.Store(nil) }
