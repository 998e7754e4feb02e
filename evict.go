package fncache

import "context"

// CacheEvict wraps op so that a successful call removes cache state:
// either the single entry matching this call's derived key, or the whole
// namespace with AllEntries. Eviction failures are logged and never block
// the operation's execution or result.
//
// Single-key eviction requires a namespace; that is checked here, at
// decoration time, not on the call path.
func CacheEvict[I, O any](reg *Registry, op Operation[I, O], opts EvictOptions[I]) (Operation[I, O], error) {
	if op == nil {
		return nil, ErrNilOperation
	}
	if !opts.AllEntries && opts.Namespace == "" {
		return nil, ErrMissingNamespace
	}

	b := binding{
		namespace:  opts.Namespace,
		identity:   operationName(op),
		key:        opts.Key,
		builder:    opts.KeyBuilder,
		exclusions: opts.Exclusions,
	}

	evict := func(ctx context.Context, r *Registry, in I) {
		if opts.AllEntries {
			if err := r.backend.Clear(ctx, opts.Namespace); err != nil {
				r.log.Warn("cache clear failed", Fields{"namespace": opts.Namespace, "err": err})
				r.hooks.BackendError("clear", opts.Namespace, err)
				return
			}
			r.hooks.Evict(opts.Namespace, "")
			return
		}
		key := b.deriveKey(r, in)
		if err := r.backend.Delete(ctx, key); err != nil {
			r.log.Warn("cache delete failed", Fields{"key": key, "err": err})
			r.hooks.BackendError("delete", key, err)
			return
		}
		r.hooks.Evict(opts.Namespace, key)
	}

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

		if opts.BeforeInvocation {
			evict(ctx, r, in)
		}

		out, err := op(ctx, in)
		if err != nil {
			return out, err
		}

		if !opts.BeforeInvocation {
			evict(ctx, r, in)
		}
		return out, nil
	}, nil
}
