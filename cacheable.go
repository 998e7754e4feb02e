package fncache

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/fncache/serde"
)

// Cacheable wraps op with read-through caching: cache first, compute and
// store on miss. The wrapped operation's own errors always propagate;
// backend trouble degrades to running uncached.
//
// Pass reg explicitly, or nil to use the process-wide registry installed
// by Init (resolved per call, so wrappers may be built before Init runs).
func Cacheable[I, O any](reg *Registry, op Operation[I, O], opts CacheableOptions[I, O]) (Operation[I, O], error) {
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

		if opts.Condition != nil {
			ok, cerr := opts.Condition(ctx, in)
			if cerr != nil {
				var zero O
				return zero, cerr
			}
			if !ok {
				return op(ctx, in)
			}
		}

		key := b.deriveKey(r, in)
		if v, ok := lookup(ctx, r, opts.Namespace, key); ok {
			if out, ok := asResult[O](v); ok {
				return out, nil
			}
			// the entry decodes but not to O; almost certainly a foreign
			// writer or a type change across deploys
			r.selfHeal(ctx, key, "type_mismatch")
		}

		out, err := op(ctx, in)
		if err != nil {
			return out, err
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

		store(ctx, r, opts.Namespace, key, out, opts.Format, ttl)
		return out, nil
	}, nil
}
