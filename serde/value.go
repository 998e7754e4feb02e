package serde

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wire representation of a rich value inside the canonical structure:
//
//	{"__type__": <tag>, "value": <payload>}
//
// Records additionally carry {"name": <registered name>} so decode can
// rebuild the concrete type.
const (
	tagKey = "__type__"
	valKey = "value"

	tagTime     = "time"
	tagDuration = "duration"
	tagUUID     = "uuid"
	tagDecimal  = "decimal"
	tagBytes    = "bytes"
	tagRecord   = "record"
	recNameKey  = "name"
)

var (
	recordsMu     sync.RWMutex
	recordsByName = map[string]reflect.Type{}
	namesByType   = map[reflect.Type]string{}
)

// RegisterType binds a struct type to a stable record name so encoded
// values of that type decode back to T instead of a generic map. Like
// gob.Register, conflicting registrations panic; registering the same
// pair twice is a no-op.
func RegisterType[T any](name string) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("serde: RegisterType requires a struct type, got %s", t))
	}
	recordsMu.Lock()
	defer recordsMu.Unlock()
	if prev, ok := recordsByName[name]; ok && prev != t {
		panic(fmt.Sprintf("serde: record name %q already bound to %s", name, prev))
	}
	if prev, ok := namesByType[t]; ok && prev != name {
		panic(fmt.Sprintf("serde: type %s already bound to record name %q", t, prev))
	}
	recordsByName[name] = t
	namesByType[t] = name
}

func recordName(t reflect.Type) (string, bool) {
	recordsMu.RLock()
	name, ok := namesByType[t]
	recordsMu.RUnlock()
	return name, ok
}

func recordType(name string) (reflect.Type, bool) {
	recordsMu.RLock()
	t, ok := recordsByName[name]
	recordsMu.RUnlock()
	return t, ok
}

func tagged(tag string, payload any) map[string]any {
	return map[string]any{tagKey: tag, valKey: payload}
}

// ToTagged reduces v to the canonical structure: nil, bool, int64, uint64,
// float64, string, []any, map[string]any, with rich types rewritten to
// tagged maps. The reduction is deterministic and side-effect free; types
// outside the closed set fall back to their textual representation.
func ToTagged(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool, string, int64, uint64, float64:
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
		return tagged(tagTime, x.Format(time.RFC3339Nano))
	case time.Duration:
		return tagged(tagDuration, int64(x))
	case uuid.UUID:
		return tagged(tagUUID, x.String())
	case decimal.Decimal:
		return tagged(tagDecimal, x.String())
	case []byte:
		return tagged(tagBytes, base64.StdEncoding.EncodeToString(x))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return ToTagged(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return tagged(tagBytes, base64.StdEncoding.EncodeToString(rv.Bytes()))
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = ToTagged(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[mapKeyString(iter.Key())] = ToTagged(iter.Value().Interface())
		}
		return out
	case reflect.Struct:
		tree, err := structTree(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		if name, ok := recordName(rv.Type()); ok {
			m := tagged(tagRecord, tree)
			m[recNameKey] = name
			return m
		}
		return tree
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
		// chan, func, complex and friends carry no cacheable identity
		return fmt.Sprint(v)
	}
}

// FromTagged is the inverse of ToTagged over a decoded tree. Tagged maps
// revive to their rich type; unregistered record names revive to the plain
// payload map.
func FromTagged(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		if tag, ok := x[tagKey].(string); ok {
			return reviveTagged(tag, x)
		}
		out := make(map[string]any, len(x))
		for k, mv := range x {
			rv, err := FromTagged(mv)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, mv := range x {
			rv, err := FromTagged(mv)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = rv
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, ev := range x {
			rv, err := FromTagged(ev)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	case json.Number:
		return numberValue(x), nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		return uint64(x), nil
	case uint8:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case float32:
		return float64(x), nil
	default:
		return x, nil
	}
}

func reviveTagged(tag string, m map[string]any) (any, error) {
	payload := m[valKey]
	switch tag {
	case tagTime:
		s, ok := payload.(string)
		if !ok {
			return nil, fmt.Errorf("serde: time payload is %T, want string", payload)
		}
		return time.Parse(time.RFC3339Nano, s)
	case tagDuration:
		n, err := asInt64(payload)
		if err != nil {
			return nil, fmt.Errorf("serde: duration payload: %w", err)
		}
		return time.Duration(n), nil
	case tagUUID:
		s, ok := payload.(string)
		if !ok {
			return nil, fmt.Errorf("serde: uuid payload is %T, want string", payload)
		}
		return uuid.Parse(s)
	case tagDecimal:
		s, ok := payload.(string)
		if !ok {
			return nil, fmt.Errorf("serde: decimal payload is %T, want string", payload)
		}
		return decimal.NewFromString(s)
	case tagBytes:
		s, ok := payload.(string)
		if !ok {
			return nil, fmt.Errorf("serde: bytes payload is %T, want string", payload)
		}
		return base64.StdEncoding.DecodeString(s)
	case tagRecord:
		tree, err := FromTagged(payload)
		if err != nil {
			return nil, err
		}
		name, _ := m[recNameKey].(string)
		rt, ok := recordType(name)
		if !ok {
			// unknown record kind: hand back the raw fields
			return tree, nil
		}
		return reviveRecord(rt, tree)
	default:
		return nil, fmt.Errorf("serde: unknown value tag %q", tag)
	}
}

func reviveRecord(rt reflect.Type, tree any) (any, error) {
	raw, err := json.Marshal(tree)
	if err != nil {
		return nil, err
	}
	pv := reflect.New(rt)
	if err := json.Unmarshal(raw, pv.Interface()); err != nil {
		return nil, err
	}
	return pv.Elem().Interface(), nil
}

// structTree flattens a struct to a plain tree by round-tripping through
// its JSON representation, honoring the type's own marshaling.
func structTree(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeJSONTree(raw)
}

// decodeJSONTree parses JSON preserving integer values as int64 rather
// than float64.
func decodeJSONTree(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return normalizeNumbers(tree), nil
}

func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		return numberValue(x)
	case map[string]any:
		for k, mv := range x {
			x[k] = normalizeNumbers(mv)
		}
		return x
	case []any:
		for i, ev := range x {
			x[i] = normalizeNumbers(ev)
		}
		return x
	default:
		return x
	}
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return f
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}

func mapKeyString(k reflect.Value) string {
	if s, ok := k.Interface().(string); ok {
		return s
	}
	return fmt.Sprint(k.Interface())
}
