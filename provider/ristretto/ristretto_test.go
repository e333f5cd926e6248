package ristretto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsZeroConfig(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestRistrettoProvider(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})
	require.NoError(t, err)
	defer p.Close(ctx)

	require.NoError(t, p.Set(ctx, "P:a", []byte("1"), 0))
	v, ok, err := p.Get(ctx, "P:a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	keys, err := p.Keys(ctx, "P:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"P:a"}, keys)

	existed, err := p.Del(ctx, "P:a")
	require.NoError(t, err)
	assert.True(t, existed)

	keys, err = p.Keys(ctx, "P:*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
