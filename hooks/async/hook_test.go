package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unkn0wn-root/dscache"
)

type countHooks struct {
	dscache.NopHooks
	mu     sync.Mutex
	misses int
	errs   []error
}

func (c *countHooks) Miss(string, int) {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

func (c *countHooks) PopulateError(_ string, err error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}

func TestDeliversBeforeClose(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 2, 64)
	for i := 0; i < 10; i++ {
		h.Miss("k", i)
	}
	h.PopulateError("k", errors.New("boom"))
	h.Close()

	assert.Equal(t, 10, inner.misses)
	assert.Len(t, inner.errs, 1)
	assert.Zero(t, h.Dropped())
}

func TestDropsAfterClose(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 1, 4)
	h.Close()
	h.Close()

	assert.NotPanics(t, func() { h.Miss("k", 0) })
	assert.Equal(t, uint64(1), h.Dropped())
	assert.Zero(t, inner.misses)
}

func TestDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	inner := &blockingHooks{block: block}
	h := New(inner, 1, 1)

	h.Hit("first") // taken by the worker, which then blocks
	inner.wait()
	h.Hit("queued")
	h.Hit("dropped")
	close(block)
	h.Close()

	assert.Equal(t, uint64(1), h.Dropped())
}

type blockingHooks struct {
	dscache.NopHooks
	block   chan struct{}
	started sync.Once
	ready   chan struct{}
	initMu  sync.Mutex
}

func (b *blockingHooks) readyCh() chan struct{} {
	b.initMu.Lock()
	defer b.initMu.Unlock()
	if b.ready == nil {
		b.ready = make(chan struct{})
	}
	return b.ready
}

func (b *blockingHooks) wait() { <-b.readyCh() }

func (b *blockingHooks) Hit(string) {
	b.started.Do(func() { close(b.readyCh()) })
	<-b.block
}
