// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/fncache"
//	asynchook "github.com/unkn0wn-root/fncache/hooks/async"
//	"github.com/unkn0wn-root/fncache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    HitEvery:  100, // sample logs: ~every 100th hit
//	    MissEvery: 10,
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
// err := fncache.Init(backend, fncache.WithHooks(hooks)) // or `raw` if you don’t want async
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/fncache"
)

type Hooks struct {
	inner fncache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ fncache.Hooks = (*Hooks)(nil)

func New(inner fncache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Hit(ns, k string)        { h.try(func() { h.inner.Hit(ns, k) }) }
func (h *Hooks) Miss(ns, k string)       { h.try(func() { h.inner.Miss(ns, k) }) }
func (h *Hooks) Store(ns, k string, n int) { h.try(func() { h.inner.Store(ns, k, n) }) }
func (h *Hooks) Evict(ns, k string)      { h.try(func() { h.inner.Evict(ns, k) }) }
func (h *Hooks) BackendError(op, k string, err error) {
	h.try(func() { h.inner.BackendError(op, k, err) })
}
func (h *Hooks) SelfHeal(k, reason string) { h.try(func() { h.inner.SelfHeal(k, reason) }) }
