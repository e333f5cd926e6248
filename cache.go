package dscache

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/dscache/age"
	c "github.com/unkn0wn-root/dscache/codec"
	"github.com/unkn0wn-root/dscache/internal/keyspace"
	pr "github.com/unkn0wn-root/dscache/provider"
)

type cache[V any] struct {
	space    keyspace.Space
	provider pr.Provider
	codec    c.Codec[V]
	framing  Framing
	log      Logger
	hooks    Hooks
	clock    clock.Clock
	verbose  bool

	maxAgeMs        int64
	grace           time.Duration
	maxTries        int
	deleteOnExpire  bool
	def             []byte // codec-encoded Options.Default
	hasDef          bool
	filter          func(V) V
	populator       Populator
	recordTTL       time.Duration
	populateTimeout time.Duration

	bg        supervisor
	closeOnce sync.Once
	closeErr  error
	// set once background work has drained; the provider is closed after it
	closed atomic.Bool
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Prefix == "" {
		return nil, &ConfigError{Field: "Prefix", Err: errors.New("cannot be an empty string")}
	}
	if opts.Provider == nil {
		return nil, &ConfigError{Field: "Provider", Err: errors.New("is required")}
	}
	if opts.MaxTries < 0 {
		return nil, &ConfigError{Field: "MaxTries", Err: fmt.Errorf("must be >= 0, got %d", opts.MaxTries)}
	}
	if opts.Framing > FramingBinary {
		return nil, &ConfigError{Field: "Framing", Err: fmt.Errorf("unknown framing %d", opts.Framing)}
	}
	maxAgeMs, graceMs, err := resolveAges(opts.MaxAge, opts.GraceTime)
	if err != nil {
		return nil, err
	}

	ch := &cache[V]{
		provider:        opts.Provider,
		framing:         opts.Framing,
		verbose:         opts.Verbose,
		maxAgeMs:        maxAgeMs,
		grace:           ms(graceMs),
		deleteOnExpire:  opts.DeleteOnExpire,
		filter:          opts.Filter,
		populator:       opts.Populator,
		recordTTL:       opts.RecordTTL,
		populateTimeout: opts.PopulateTimeout,
	}

	// defaults
	ch.codec = coalesce[c.Codec[V]](opts.Codec, c.JSON[V]{})
	ch.log = coalesce[Logger](opts.Logger, NopLogger{})
	ch.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	ch.clock = coalesce[clock.Clock](opts.Clock, clock.New())
	ch.maxTries = coalesce(opts.MaxTries, defaultMaxTries)

	with := keyspace.DefaultReplacement
	if opts.KeyReplacement != nil {
		with = *opts.KeyReplacement
	}
	ch.space = keyspace.Space{
		Prefix:  opts.Prefix,
		Pattern: coalesce[*regexp.Regexp](opts.KeyPattern, keyspace.DefaultPattern),
		With:    with,
	}

	if opts.Default != nil {
		raw, err := ch.codec.Encode(*opts.Default)
		if err != nil {
			return nil, &ConfigError{Field: "Default", Err: err}
		}
		ch.def, ch.hasDef = raw, true
	}

	if opts.Coalesce {
		ch.bg.sf = new(singleflight.Group)
	}
	return ch, nil
}

func (c *cache[V]) StorageKey(key string) string { return c.space.Key(key) }
func (c *cache[V]) Prefix() string               { return c.space.Prefix }

func (c *cache[V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		drainErr := c.bg.close(ctx)
		c.closed.Store(true)
		c.closeErr = errors.Join(drainErr, c.provider.Close(ctx))
	})
	return c.closeErr
}

// Get runs the read state machine:
//
//	FETCH -> HIT  -> fresh: return
//	              -> stale: return, revalidate in background
//	      -> MISS -> attempts left: populate, wait grace time, FETCH
//	              -> exhausted: default | absent | PopulationTimeoutError
func (c *cache[V]) Get(ctx context.Context, key string) (Record[V], bool, error) {
	if c.closed.Load() {
		return Record[V]{}, false, ErrClosed
	}
	k := c.space.Key(key)
	c.trace("getCache called", Fields{"key": key})

	for attempt := 0; ; attempt++ {
		rec, ok, err := c.read(ctx, k)
		if err != nil {
			return Record[V]{}, false, err
		}
		if ok {
			if age.IsStale(rec.UpdatedAt.UnixMilli(), c.maxAgeMs, c.clock.Now()) {
				c.hooks.StaleHit(k)
				c.trace("getCache age check too old", Fields{"key": key, "updatedAt": rec.UpdatedAt.UnixMilli()})
				c.revalidate(ctx, key, k)
			} else {
				c.hooks.Hit(k)
				c.trace("getCache hit", Fields{"key": key})
			}
			return rec, true, nil
		}

		c.hooks.Miss(k, attempt)
		c.trace("getCache null", Fields{"key": key, "fetchAttempt": attempt})
		if attempt >= c.maxTries || c.deleteOnExpire {
			return c.exhausted(key, k, attempt)
		}

		c.trace("getCache call to populate called", Fields{"key": key, "fetchAttempt": attempt + 1})
		c.populate(ctx, key, k)
		if err := c.pause(ctx); err != nil {
			return Record[V]{}, false, err
		}
	}
}

func (c *cache[V]) Set(ctx context.Context, key string, value V) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.write(ctx, c.space.Key(key), value); err != nil {
		return err
	}
	c.trace("setCache", Fields{"key": key})
	return nil
}

func (c *cache[V]) exhausted(key, storageKey string, attempts int) (Record[V], bool, error) {
	if c.hasDef {
		c.hooks.Exhausted(storageKey, OutcomeDefault)
		c.trace("getCache returning default value", Fields{"key": key})
		// decoded per call so callers never share the default's slices or maps
		v, err := c.codec.Decode(c.def)
		if err != nil {
			return Record[V]{}, false, fmt.Errorf("dscache: decode default: %w", err)
		}
		return Record[V]{Value: v}, true, nil
	}
	if c.deleteOnExpire {
		c.hooks.Exhausted(storageKey, OutcomeAbsent)
		c.trace("getCache returning absent", Fields{"key": key})
		return Record[V]{}, false, nil
	}
	c.hooks.Exhausted(storageKey, OutcomeTimeout)
	c.log.Warn("rejecting: cache not generated in time", Fields{"key": storageKey, "attempts": attempts, "graceTime": c.grace})
	return Record[V]{}, false, &PopulationTimeoutError{Key: key, GraceTime: c.grace, Attempts: attempts}
}

// populate starts the populator without waiting for it. Its context is
// detached from the reader so a reader giving up does not abort population.
func (c *cache[V]) populate(ctx context.Context, key, storageKey string) {
	pctx := context.WithoutCancel(ctx)
	launched := c.bg.launch(storageKey, func() error {
		return c.runPopulator(pctx, key)
	}, func(err error) {
		c.hooks.PopulateError(storageKey, err)
		c.log.Error("cache populator failed", Fields{"key": storageKey, "err": err})
	})
	if !launched {
		c.log.Warn("cache closed, populate skipped", Fields{"key": storageKey})
	}
}

// revalidate deletes a stale record and, unless DeleteOnExpire is set,
// repopulates it. Nothing it does reaches the reader that saw the stale value.
func (c *cache[V]) revalidate(ctx context.Context, key, storageKey string) {
	rctx := context.WithoutCancel(ctx)
	launched := c.bg.launch(storageKey, func() error {
		if _, err := c.provider.Del(rctx, storageKey); err != nil {
			return fmt.Errorf("delete stale record: %w", err)
		}
		if c.deleteOnExpire {
			c.trace("stale record deleted", Fields{"key": key})
			return nil
		}
		return c.runPopulator(rctx, key)
	}, func(err error) {
		c.hooks.RevalidateError(storageKey, err)
		c.log.Error("error validating and refreshing the cache", Fields{"key": storageKey, "err": err})
	})
	if !launched {
		c.log.Warn("cache closed, revalidation skipped", Fields{"key": storageKey})
	}
}

func (c *cache[V]) runPopulator(ctx context.Context, key string) error {
	if c.populator == nil {
		return nil
	}
	if c.populateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.populateTimeout)
		defer cancel()
	}
	return c.populator(ctx, key)
}

// pause waits one grace time, or returns early with the reader's ctx error.
func (c *cache[V]) pause(ctx context.Context) error {
	t := c.clock.Timer(c.grace)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *cache[V]) trace(msg string, f Fields) {
	if !c.verbose {
		return
	}
	f["prefix"] = c.space.Prefix
	c.log.Debug(msg, f)
}
