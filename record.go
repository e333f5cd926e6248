package dscache

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/dscache/internal/wire"
)

func (c *cache[V]) encode(v V, updatedAt int64) ([]byte, error) {
	payload, err := c.codec.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.framing == FramingBinary {
		return wire.EncodeRecord(updatedAt, payload), nil
	}
	return wire.EncodeJSON(updatedAt, payload)
}

func (c *cache[V]) decode(raw []byte) (Record[V], error) {
	var (
		updatedAt int64
		payload   []byte
		err       error
	)
	if c.framing == FramingBinary {
		updatedAt, payload, err = wire.DecodeRecord(raw)
	} else {
		updatedAt, payload, err = wire.DecodeJSON(raw)
	}
	if err != nil {
		return Record[V]{}, err
	}
	v, err := c.codec.Decode(payload)
	if err != nil {
		return Record[V]{}, fmt.Errorf("%s decode: %w", c.codec.Name(), err)
	}
	return Record[V]{Value: v, UpdatedAt: time.UnixMilli(updatedAt)}, nil
}

// write filters, stamps and stores v.
func (c *cache[V]) write(ctx context.Context, storageKey string, v V) error {
	if c.filter != nil {
		v = c.filter(v)
	}
	b, err := c.encode(v, c.clock.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("dscache: encode %q: %w", storageKey, err)
	}
	return c.provider.Set(ctx, storageKey, b, c.recordTTL)
}

// read returns ok=false on a miss and on a value without a readable
// timestamp; only store errors are returned.
func (c *cache[V]) read(ctx context.Context, storageKey string) (Record[V], bool, error) {
	raw, ok, err := c.provider.Get(ctx, storageKey)
	if err != nil || !ok {
		return Record[V]{}, false, err
	}
	rec, err := c.decode(raw)
	if err != nil {
		c.hooks.CorruptRecord(storageKey, err)
		c.log.Warn("unreadable record treated as absent", Fields{"key": storageKey, "err": err})
		return Record[V]{}, false, nil
	}
	return rec, true, nil
}

func (c *cache[V]) Peek(ctx context.Context, key string) (Record[V], bool, error) {
	if c.closed.Load() {
		return Record[V]{}, false, ErrClosed
	}
	return c.read(ctx, c.space.Key(key))
}

func (c *cache[V]) Delete(ctx context.Context, key string) (bool, error) {
	if c.closed.Load() {
		return false, ErrClosed
	}
	k := c.space.Key(key)
	existed, err := c.provider.Del(ctx, k)
	if err != nil {
		return false, err
	}
	c.trace("record cleared", Fields{"key": key, "existed": existed})
	return existed, nil
}

func (c *cache[V]) Keys(ctx context.Context) ([]string, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return c.provider.Keys(ctx, c.space.Match())
}

// Clear deletes keys one at a time. A failed delete is recorded and the rest
// are still attempted.
func (c *cache[V]) Clear(ctx context.Context) error {
	keys, err := c.Keys(ctx)
	if err != nil {
		return err
	}
	var ce ClearError
	for _, k := range keys {
		if _, err := c.provider.Del(ctx, k); err != nil {
			c.hooks.ClearError(k, err)
			ce.Failed = append(ce.Failed, k)
			ce.Errs = append(ce.Errs, err)
		}
	}
	c.trace("all records cleared", Fields{"keys": len(keys), "failed": len(ce.Failed)})
	if len(ce.Failed) > 0 {
		return &ce
	}
	return nil
}
