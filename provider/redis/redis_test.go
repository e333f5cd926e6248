package redis

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	p, err := New(Config{
		Client:      goredis.NewClient(&goredis.Options{Addr: mr.Addr()}),
		CloseClient: true,
		ScanCount:   2, // force several SCAN round trips
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p, mr
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, ErrNilClient)
}

func TestGetSetDel(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)

	_, ok, err := p.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, p.Set(ctx, "k", []byte("v"), 0))
	b, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	existed, err := p.Del(ctx, "k")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = p.Del(ctx, "k")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestSetTTL(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t)

	require.NoError(t, p.Set(ctx, "short", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := p.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeysScansWholePrefix(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t)

	for _, k := range []string{"Roles:a", "Roles:b", "Roles:c", "Roles:d", "Users:a"} {
		require.NoError(t, mr.Set(k, "x"))
	}

	keys, err := p.Keys(ctx, "Roles:*")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"Roles:a", "Roles:b", "Roles:c", "Roles:d"}, keys)

	none, err := p.Keys(ctx, "Nope:*")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNewFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	p, err := NewFromURL("redis://"+mr.Addr()+"/0", 0)
	require.NoError(t, err)
	defer p.Close(context.Background())

	require.NoError(t, p.Set(context.Background(), "a", []byte("1"), 0))
	got, err := mr.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	_, err = NewFromURL("::not a url", 0)
	require.Error(t, err)
}
