package memory

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := New()

	in := []byte("value")
	require.NoError(t, p.Set(ctx, "k", in, 0))
	in[0] = 'X' // caller mutation must not leak into the store

	got, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	existed, err := p.Del(ctx, "k")
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = p.Del(ctx, "k")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	p := NewWithClock(func() time.Time { return now })

	require.NoError(t, p.Set(ctx, "k", []byte("v"), time.Second))
	_, ok, _ := p.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = p.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, p.Len())

	keys, err := p.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryKeysGlob(t *testing.T) {
	ctx := context.Background()
	p := New()
	for _, k := range []string{"P:a/b", "P:c", "P*:d", "Q:a"} {
		require.NoError(t, p.Set(ctx, k, []byte("x"), 0))
	}

	keys, err := p.Keys(ctx, "P:*")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"P:a/b", "P:c"}, keys)

	keys, err = p.Keys(ctx, `P\*:*`)
	require.NoError(t, err)
	assert.Equal(t, []string{"P*:d"}, keys)
}
