package fncache

import (
	"context"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/unkn0wn-root/fncache/internal/wire"
	"github.com/unkn0wn-root/fncache/keys"
	"github.com/unkn0wn-root/fncache/serde"
)

// binding is the per-wrapper key derivation state, fixed at decoration time.
type binding struct {
	namespace  string
	identity   string
	key        string
	builder    keys.Builder
	exclusions []string
}

func (b binding) deriveKey(r *Registry, in any) string {
	return keys.Derive(keys.Spec{
		Namespace:  b.namespace,
		Identity:   b.identity,
		Key:        b.key,
		Args:       keys.ArgsOf(in),
		Exclusions: b.exclusions,
		Builder:    b.builder,
		Logger:     r.log,
	})
}

// operationName resolves a stable identity for a wrapped function: its
// fully-qualified runtime name, the same for every call through the same
// wrapper.
func operationName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "operation"
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return "operation"
	}
	// method values carry a -fm suffix
	return strings.TrimSuffix(rf.Name(), "-fm")
}

func resolve(r *Registry) (*Registry, error) {
	if r != nil {
		return r, nil
	}
	return Current()
}

// lookup reads and decodes one entry. Backend errors, corrupt framing and
// undecodable payloads all degrade to a miss; unreadable entries are
// best-effort deleted so the next write starts clean.
func lookup(ctx context.Context, r *Registry, namespace, key string) (any, bool) {
	raw, ok, err := r.backend.Get(ctx, key)
	if err != nil {
		r.log.Warn("cache get failed; treating as miss", Fields{"key": key, "err": err})
		r.hooks.BackendError("get", key, err)
		return nil, false
	}
	if !ok {
		r.hooks.Miss(namespace, key)
		return nil, false
	}
	format, payload, err := wire.Decode(raw)
	if err != nil {
		r.selfHeal(ctx, key, "corrupt")
		return nil, false
	}
	v, err := serde.Decode(payload, serde.Format(format))
	if err != nil {
		r.log.Warn("cache value decode failed; treating as miss", Fields{"key": key, "format": format, "err": err})
		r.selfHeal(ctx, key, "value_decode")
		return nil, false
	}
	r.hooks.Hit(namespace, key)
	return v, true
}

// store encodes and writes one entry. Failures are logged and swallowed:
// a result that cannot be cached is still a result.
func store(ctx context.Context, r *Registry, namespace, key string, v any, f serde.Format, ttl time.Duration) {
	if f == "" {
		f = r.format
	}
	payload, err := serde.Encode(v, f)
	if err != nil {
		r.log.Error("cache encode failed; skipping store", Fields{"key": key, "format": f, "err": err})
		return
	}
	raw := wire.Encode(string(f), payload)
	if err := r.backend.Set(ctx, key, raw, ttl); err != nil {
		r.log.Warn("cache set failed; skipping store", Fields{"key": key, "err": err})
		r.hooks.BackendError("set", key, err)
		return
	}
	r.hooks.Store(namespace, key, len(raw))
}

func effectiveTTL(ttl time.Duration) time.Duration {
	switch {
	case ttl == 0:
		return DefaultTTL
	case ttl < 0:
		return 0 // backend default retention
	default:
		return ttl
	}
}

// asResult converts a decoded value to the operation's result type.
// Decoded numbers arrive as int64/uint64/float64 and are converted to the
// caller's numeric kind; everything else must assert directly.
func asResult[O any](v any) (O, bool) {
	if out, ok := v.(O); ok {
		return out, true
	}
	var zero O
	rt := reflect.TypeOf((*O)(nil)).Elem()
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || !convertibleKinds(rv.Kind(), rt.Kind()) || !rv.Type().ConvertibleTo(rt) {
		return zero, false
	}
	out, ok := rv.Convert(rt).Interface().(O)
	return out, ok
}

func convertibleKinds(from, to reflect.Kind) bool {
	return kindClass(from) != 0 && kindClass(from) == kindClass(to)
}

func kindClass(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return 1
	case reflect.Float32, reflect.Float64:
		return 2
	case reflect.String:
		return 3
	default:
		return 0
	}
}
