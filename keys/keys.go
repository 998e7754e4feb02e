// Package keys derives deterministic cache keys from an operation's bound
// arguments.
//
// A key is composed as namespace:identifier:hash, where the hash is a
// SHA-256 digest over a canonical JSON encoding of the filtered arguments.
// Two calls with equal filtered arguments always hash identically: the
// canonical encoding sorts map keys and uses no insignificant whitespace,
// so argument order never leaks into the key.
package keys

import (
	"crypto/sha256"
	"encoding"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultExclusions are argument names stripped before hashing. They carry
// non-identity state (connections, framework context) and must never
// affect the key.
var DefaultExclusions = []string{"request", "response", "db", "session", "self"}

// Logger receives the failure when a custom Builder errors. The zero field
// set of fncache's Logger satisfies it.
type Logger interface {
	Error(msg string, fields map[string]any)
}

// Builder is a custom key strategy. On success its return value is the
// cache key verbatim, overriding the default composition. A Builder error
// never aborts the call: Derive logs it and falls back to the default key.
type Builder interface {
	Build(identity string, args map[string]any) (string, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(identity string, args map[string]any) (string, error)

func (f BuilderFunc) Build(identity string, args map[string]any) (string, error) {
	return f(identity, args)
}

// Arger lets an operation input declare its own bound-argument mapping.
type Arger interface {
	CacheArgs() map[string]any
}

// Spec carries everything Derive needs for one key.
type Spec struct {
	Namespace  string
	Identity   string // stable per operation, not per call
	Key        string // explicit identifier override; empty keeps Identity
	Args       map[string]any
	Exclusions []string // nil means DefaultExclusions; empty slice means none
	Builder    Builder
	Logger     Logger
}

// Derive produces the cache key for one invocation.
func Derive(s Spec) string {
	filtered := Filter(s.Args, s.Exclusions)

	if s.Builder != nil {
		k, err := s.Builder.Build(s.Identity, filtered)
		if err == nil {
			return k
		}
		if s.Logger != nil {
			s.Logger.Error("custom key builder failed; using default key", map[string]any{
				"identity": s.Identity,
				"err":      err,
			})
		}
	}

	id := s.Key
	if id == "" {
		id = s.Identity
	}
	return s.Namespace + ":" + id + ":" + Hash(filtered)
}

// Filter removes excluded argument names. A nil exclusion slice applies
// DefaultExclusions.
func Filter(args map[string]any, exclusions []string) map[string]any {
	if exclusions == nil {
		exclusions = DefaultExclusions
	}
	drop := make(map[string]struct{}, len(exclusions))
	for _, name := range exclusions {
		drop[name] = struct{}{}
	}
	out := make(map[string]any, len(args))
	for name, v := range args {
		if _, skip := drop[name]; skip {
			continue
		}
		out[name] = v
	}
	return out
}

// Hash returns the hex SHA-256 of the canonical encoding of args.
func Hash(args map[string]any) string {
	c := Canonical(args)
	raw, err := json.Marshal(c) // sorted keys, compact separators
	if err != nil {
		raw = []byte(fmt.Sprint(c))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Canonical reduces v to primitives, ordered sequences and string-keyed
// mappings. Rich types map to a fixed primitive form; unknown types fall
// back to their textual representation rather than failing.
func Canonical(v any) any {
	switch x := v.(type) {
	case nil, bool, string, int64, uint64, float64:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case time.Duration:
		return int64(x)
	case uuid.UUID:
		return x.String()
	case decimal.Decimal:
		return x.String()
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		// opaque structs (*big.Int, netip.Addr and friends) carry their
		// value in unexported fields; reflecting those yields an empty map
		// that collides every value onto one key. Take their textual form
		// before the deref drops pointer-receiver methods.
		if rv.Kind() == reflect.Pointer && isOpaqueStruct(rv.Type().Elem()) {
			return textual(v)
		}
		return Canonical(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 && rv.Kind() == reflect.Slice {
			return base64.StdEncoding.EncodeToString(rv.Bytes())
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Canonical(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Canonical(iter.Value().Interface())
		}
		return out
	case reflect.Struct:
		if isOpaqueStruct(rv.Type()) {
			return textual(v)
		}
		return structArgs(rv)
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	default:
		if s, ok := v.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprint(v)
	}
}

// ArgsOf resolves an operation input to its bound-argument mapping:
// an Arger's own mapping, a string-keyed map as-is, a struct's exported
// fields, and anything else as a single "arg" entry.
func ArgsOf(in any) map[string]any {
	switch x := in.(type) {
	case nil:
		return map[string]any{}
	case Arger:
		return x.CacheArgs()
	case map[string]any:
		return x
	}

	rv := reflect.ValueOf(in)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return map[string]any{}
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		rt := rv.Type()
		out := make(map[string]any, rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			out[f.Name] = rv.Field(i).Interface()
		}
		return out
	}
	return map[string]any{"arg": in}
}

// isOpaqueStruct reports whether st exposes no exported fields, so the
// field-by-field canonical form would be empty regardless of value.
func isOpaqueStruct(st reflect.Type) bool {
	if st.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < st.NumField(); i++ {
		if st.Field(i).IsExported() {
			return false
		}
	}
	return true
}

// textual reduces v through its own marshaling, preferring the stable
// encoding.TextMarshaler form over Stringer output.
func textual(v any) any {
	if tm, ok := v.(encoding.TextMarshaler); ok {
		if b, err := tm.MarshalText(); err == nil {
			return string(b)
		}
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

func structArgs(rv reflect.Value) any {
	rt := rv.Type()
	out := make(map[string]any, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		out[f.Name] = Canonical(rv.Field(i).Interface())
	}
	return out
}
