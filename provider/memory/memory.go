// Package memory is an in-process Provider. It backs tests and single-process
// deployments that still want the dscache population semantics.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gobwas/glob"

	pr "github.com/unkn0wn-root/dscache/provider"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type Memory struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

var _ pr.Provider = (*Memory)(nil)

func New() *Memory {
	return &Memory{m: make(map[string]entry), now: time.Now}
}

// NewWithClock uses now for TTL checks.
func NewWithClock(now func() time.Time) *Memory {
	return &Memory{m: make(map[string]entry), now: now}
}

func (p *Memory) expired(e entry) bool {
	return !e.exp.IsZero() && !p.now().Before(e.exp)
}

func (p *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	e, ok := p.m[key]
	p.mu.RUnlock()
	if !ok || p.expired(e) {
		return nil, false, nil
	}
	out := make([]byte, len(e.v))
	copy(out, e.v)
	return out, true, nil
}

func (p *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = p.now().Add(ttl)
	}
	v := make([]byte, len(value))
	copy(v, value)
	p.mu.Lock()
	p.m[key] = entry{v: v, exp: exp}
	p.mu.Unlock()
	return nil
}

func (p *Memory) Del(_ context.Context, key string) (bool, error) {
	p.mu.Lock()
	e, ok := p.m[key]
	delete(p.m, key)
	p.mu.Unlock()
	return ok && !p.expired(e), nil
}

func (p *Memory) Keys(_ context.Context, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("memory provider: bad pattern %q: %w", pattern, err)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []string
	for k, e := range p.m {
		if p.expired(e) {
			continue
		}
		if g.Match(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Len reports the number of live entries.
func (p *Memory) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, e := range p.m {
		if !p.expired(e) {
			n++
		}
	}
	return n
}

func (p *Memory) Close(_ context.Context) error { return nil }
