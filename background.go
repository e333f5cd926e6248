package dscache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/singleflight"
)

// supervisor owns every goroutine the cache starts on behalf of a reader
// that has already returned. Each task runs to completion; its error, or a
// recovered panic, goes to the onErr sink passed with it.
type supervisor struct {
	mu     sync.RWMutex
	closed bool

	wg      sync.WaitGroup
	pending atomic.Int64

	// nil unless Options.Coalesce is set
	sf *singleflight.Group
}

// launch starts fn in the background. It returns false once the supervisor
// is closed.
func (s *supervisor) launch(key string, fn func() error, onErr func(error)) bool {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return false
	}
	s.wg.Add(1)
	s.pending.Add(1)
	s.mu.RUnlock()

	go func() {
		defer s.wg.Done()
		defer s.pending.Add(-1)
		s.run(key, fn, onErr)
	}()
	return true
}

func (s *supervisor) run(key string, fn func() error, onErr func(error)) {
	work := func() {
		if err := catch(fn); err != nil {
			onErr(err)
		}
	}
	if s.sf == nil {
		work()
		return
	}
	// the leader reports; callers that joined an in-flight run report nothing
	_, _, _ = s.sf.Do(key, func() (any, error) {
		work()
		return nil, nil
	})
}

func catch(fn func() error) (err error) {
	var pc panics.Catcher
	pc.Try(func() { err = fn() })
	if r := pc.Recovered(); r != nil {
		return r.AsError()
	}
	return err
}

// drain waits for running tasks or ctx, whichever ends first.
func (s *supervisor) drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops new launches and drains.
func (s *supervisor) close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.drain(ctx)
}

func (s *supervisor) inFlight() int64 { return s.pending.Load() }
