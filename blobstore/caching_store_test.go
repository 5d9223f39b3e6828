package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingStore_FetchOnce(t *testing.T) {
	inner := newMockStore()
	ctx := context.Background()
	data := pattern(300)
	require.NoError(t, inner.Put(ctx, "languages.db", data))

	cs := NewCachingStore(inner, t.TempDir(), WithChunkSize(100))

	for i := 0; i < 3; i++ {
		got, closer, err := Load(ctx, cs, "languages.db")
		require.NoError(t, err)
		assert.Equal(t, data, got)
		require.NoError(t, closer.Close())
	}

	assert.Equal(t, 1, inner.opens)
	hits, misses := cs.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCachingStore_PutInvalidates(t *testing.T) {
	inner := newMockStore()
	ctx := context.Background()
	require.NoError(t, inner.Put(ctx, "db", []byte("old")))

	cs := NewCachingStore(inner, t.TempDir())

	got, closer, err := Load(ctx, cs, "db")
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
	require.NoError(t, closer.Close())

	require.NoError(t, cs.Put(ctx, "db", []byte("new")))

	got, closer, err = Load(ctx, cs, "db")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	require.NoError(t, closer.Close())
}

func TestCachingStore_Delete(t *testing.T) {
	inner := newMockStore()
	ctx := context.Background()
	require.NoError(t, inner.Put(ctx, "db", []byte("x")))

	cs := NewCachingStore(inner, t.TempDir())
	b, err := cs.Open(ctx, "db")
	require.NoError(t, err)
	require.NoError(t, b.Close())

	require.NoError(t, cs.Delete(ctx, "db"))

	_, err = cs.Open(ctx, "db")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := cs.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
