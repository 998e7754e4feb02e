package fncache

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/fncache/serde"
)

// CachePut wraps op with write-through caching: the operation always
// executes, and on success its result refreshes the cache entry. Caching
// is a side effect of the call, never a substitute for it.
func CachePut[I, O any](reg *Registry, op Operation[I, O], opts PutOptions[I, O]) (Operation[I, O], error) {
	if op == nil {
		return nil, ErrNilOperation
	}
	if opts.Namespace == "" {
		return nil, ErrMissingNamespace
	}
	if opts.Format != "" && !serde.Known(opts.Format) {
		return nil, fmt.Errorf("%w: %q", serde.ErrUnknownFormat, opts.Format)
	}

	b := binding{
		namespace:  opts.Namespace,
		identity:   operationName(op),
		key:        opts.Key,
		builder:    opts.KeyBuilder,
		exclusions: opts.Exclusions,
	}
	ttl := effectiveTTL(opts.TTL)

	return func(ctx context.Context, in I) (O, error) {
		r, err := resolve(reg)
		if err != nil {
			var zero O
			return zero, err
		}

		out, err := op(ctx, in)
		if err != nil {
			return out, err
		}

		if opts.Condition != nil {
			ok, cerr := opts.Condition(ctx, in)
			if cerr != nil {
				var zero O
				return zero, cerr
			}
			if !ok {
				return out, nil
			}
		}
		if opts.Unless != nil {
			skip, uerr := opts.Unless(ctx, out)
			if uerr != nil {
				var zero O
				return zero, uerr
			}
			if skip {
				return out, nil
			}
		}

		store(ctx, r, opts.Namespace, b.deriveKey(r, in), out, opts.Format, ttl)
		return out, nil
	}, nil
}
