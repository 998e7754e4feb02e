// Package memory provides an in-process map-backed Backend. It is the
// simplest backend for tests and single-process deployments.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type Memory struct {
	mu sync.RWMutex
	m  map[string]entry
}

func New() *Memory {
	return &Memory{m: make(map[string]entry)}
}

func (b *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	e, ok := b.m[key]
	b.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		b.mu.Lock()
		delete(b.m, key)
		b.mu.Unlock()
		return nil, false, nil
	}
	out := make([]byte, len(e.v))
	copy(out, e.v)
	return out, true, nil
}

func (b *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	v := make([]byte, len(value))
	copy(v, value)
	b.mu.Lock()
	b.m[key] = entry{v: v, exp: exp}
	b.mu.Unlock()
	return nil
}

func (b *Memory) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	delete(b.m, key)
	b.mu.Unlock()
	return nil
}

func (b *Memory) Clear(_ context.Context, namespace string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if namespace == "" {
		b.m = make(map[string]entry)
		return nil
	}
	prefix := namespace + ":"
	for k := range b.m {
		if strings.HasPrefix(k, prefix) {
			delete(b.m, k)
		}
	}
	return nil
}

// Len reports the number of live entries; expired but unswept entries
// count until their next Get.
func (b *Memory) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.m)
}
