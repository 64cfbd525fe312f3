package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Names []string `json:"names"`
	Count int      `json:"count"`
}

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPutGetOverwrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := openTestCache(t)
	c.now = func() time.Time { return time.Unix(1_760_000_000, 0) }

	var got snapshot
	ok, err := c.Get(ctx, "engine", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "engine", snapshot{Names: []string{"Ren"}, Count: 1}))
	require.NoError(t, c.Put(ctx, "engine", snapshot{Names: []string{"Ren", "Mio"}, Count: 2}))

	ok, err = c.Get(ctx, "engine", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snapshot{Names: []string{"Ren", "Mio"}, Count: 2}, got)

	at, ok, err := c.UpdatedAt(ctx, "engine")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1_760_000_000), at.Unix())

	require.NoError(t, c.Delete(ctx, "engine"))
	ok, err = c.Get(ctx, "engine", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, "k", map[string]int{"a": 1}))
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()
	var got map[string]int
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, got["a"])
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()
	_, err := Open("  ")
	assert.Error(t, err)
}
