package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistdb/kvlite/internal/core/domain"
)

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Set(ctx, "foo", "bar"))

	value, err := store.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "bar", value)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	value, err = store.GetDefault(ctx, "missing", "D")
	require.NoError(t, err)
	assert.Equal(t, "D", value)
}

func TestKeyNormalization(t *testing.T) {
	ctx := context.Background()
	store := New()

	// int and int64 address the same slot, as with the durable adapter.
	require.NoError(t, store.Set(ctx, 42, "first"))
	require.NoError(t, store.Set(ctx, int64(42), "second"))

	value, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "second", value)

	require.NoError(t, store.Set(ctx, []byte{0x01}, "blob"))
	value, err = store.Get(ctx, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, "blob", value)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{int64(42), []byte{0x01}}, keys)
}

func TestUnsupportedKey(t *testing.T) {
	ctx := context.Background()
	store := New()

	assert.ErrorIs(t, store.Set(ctx, struct{}{}, "v"), domain.ErrUnsupportedKey)
	_, err := store.Get(ctx, true)
	assert.ErrorIs(t, err, domain.ErrUnsupportedKey)
}

func TestSetMany_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := New()

	err := store.SetMany(ctx, []domain.Pair{
		{Key: "good", Value: "v"},
		{Key: struct{}{}, Value: "v"},
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedKey)

	exists, err := store.Exists(ctx, "good")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.SetMap(ctx, map[string]any{"a": 1, "b": 2}))
	count, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPopAndDelete(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Set(ctx, "x", "y"))

	value, err := store.Pop(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "y", value)

	_, err = store.Pop(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	value, err = store.PopDefault(ctx, "x", "D")
	require.NoError(t, err)
	assert.Equal(t, "D", value)

	require.NoError(t, store.Delete(ctx, "x"))
	require.NoError(t, store.Delete(ctx, "x"))
}

func TestClearPreservesAbout(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.SetAbout(ctx, "scratch space"))
	require.NoError(t, store.Set(ctx, "k", "v"))
	require.NoError(t, store.Clear(ctx))

	count, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	about, err := store.About(ctx)
	require.NoError(t, err)
	assert.Equal(t, "scratch space", about)
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Set(ctx, "k", "v"))
	require.NoError(t, store.Close())

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrClosed)
	assert.ErrorIs(t, store.Set(ctx, "k", "v"), domain.ErrClosed)
	_, err = store.Keys(ctx)
	assert.ErrorIs(t, err, domain.ErrClosed)
	assert.ErrorIs(t, store.Vacuum(ctx), domain.ErrClosed)
}

func TestConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := New()

	const goroutines = 8
	const writes = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				_ = store.Set(ctx, fmt.Sprintf("g%d_k%d", id, i), i)
			}
		}(g)
	}
	wg.Wait()

	count, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, goroutines*writes, count)
}
