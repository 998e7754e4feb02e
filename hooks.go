package fncache

// Hooks lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking.
// The wrappers call them on hot paths.
type Hooks interface {
	// A read-through lookup found a usable entry.
	Hit(namespace, key string)

	// A read-through lookup found nothing.
	Miss(namespace, key string)

	// An entry was written; size is the stored byte length.
	Store(namespace, key string, size int)

	// An entry (key != "") or a whole namespace (key == "") was evicted.
	Evict(namespace, key string)

	// The backend failed on an IO path. op is one of "get", "set",
	// "delete", "clear".
	BackendError(op, key string, err error)

	// An unreadable entry was deleted by the cache on read. reason is one
	// of "corrupt", "value_decode", "type_mismatch".
	SelfHeal(key, reason string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string, string)                 {}
func (NopHooks) Miss(string, string)                {}
func (NopHooks) Store(string, string, int)          {}
func (NopHooks) Evict(string, string)               {}
func (NopHooks) BackendError(string, string, error) {}
func (NopHooks) SelfHeal(string, string)            {}
