// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    MissEvery: 10, // sample logs: ~every 10th miss
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := dscache.New[Role](dscache.Options[Role]{
//	    Prefix:   "RolesPermissionsCache:",
//	    Provider: provider,
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/dscache"
)

type Hooks struct {
	inner   dscache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ dscache.Hooks = (*Hooks)(nil)

func New(inner dscache.Hooks, workers, qlen int) *Hooks {
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

// Close delivers queued events and stops the workers. Events after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped counts events lost to a full queue or a closed hook.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(k string)                { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) StaleHit(k string)           { h.try(func() { h.inner.StaleHit(k) }) }
func (h *Hooks) Miss(k string, attempt int)  { h.try(func() { h.inner.Miss(k, attempt) }) }
func (h *Hooks) Exhausted(k, outcome string) { h.try(func() { h.inner.Exhausted(k, outcome) }) }
func (h *Hooks) CorruptRecord(k string, err error) {
	h.try(func() { h.inner.CorruptRecord(k, err) })
}
func (h *Hooks) PopulateError(k string, err error) {
	h.try(func() { h.inner.PopulateError(k, err) })
}
func (h *Hooks) RevalidateError(k string, err error) {
	h.try(func() { h.inner.RevalidateError(k, err) })
}
func (h *Hooks) ClearError(k string, err error) {
	h.try(func() { h.inner.ClearError(k, err) })
}
