package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrapps/appdaloja/pkg/cache/cacheerr"
)

func setupCache(t *testing.T) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session", "store.db")
	c, err := NewCache(&Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, path
}

func TestNewCache_Validation(t *testing.T) {
	_, err := NewCache(nil)
	assert.Error(t, err)

	_, err = NewCache(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestCache_GetSetDelete(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, cacheerr.ErrKeyNotFound)

	require.NoError(t, c.Set(ctx, "k", "v1", -1))
	require.NoError(t, c.Set(ctx, "k", "v2", -1))

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", val)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, cacheerr.ErrKeyNotFound)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestCache_TypedValues(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		value interface{}
		want  interface{}
	}{
		{name: "string", value: "hello", want: "hello"},
		{name: "bytes", value: []byte("raw"), want: "raw"},
		{name: "bool", value: true, want: true},
		{name: "int", value: 42, want: int64(42)},
		{name: "int64", value: int64(1700000000000), want: int64(1700000000000)},
		{name: "float", value: 1.5, want: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, tt.name, tt.value, -1))
			got, err := c.Get(ctx, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	err := c.Set(ctx, "struct", struct{}{}, -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported value type")
}

func TestCache_Expiration(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", "v", time.Minute))
	require.NoError(t, c.Set(ctx, "forever", "v", -1))

	now = now.Add(2 * time.Minute)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, cacheerr.ErrKeyNotFound)
	_, err = c.Get(ctx, "forever")
	assert.NoError(t, err)

	got, err := c.GetByPattern(ctx, "*")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"forever": "v"}, got)
}

func TestCache_GetByPattern(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ns:ads-1", "a", -1))
	require.NoError(t, c.Set(ctx, "ns:ads-2", "b", -1))
	require.NoError(t, c.Set(ctx, "ns:adsUpdatedAt-1", "c", -1))

	got, err := c.GetByPattern(ctx, "ns:ads-*")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"ns:ads-1": "a", "ns:ads-2": "b"}, got)
}

func TestCache_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	first, err := NewCache(&Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "ns:uniqueId", `"device-1"`, -1))
	require.NoError(t, first.Close())

	second, err := NewCache(&Config{Path: path})
	require.NoError(t, err)
	defer second.Close()

	val, err := second.Get(ctx, "ns:uniqueId")
	require.NoError(t, err)
	assert.Equal(t, `"device-1"`, val)
}

func TestCache_InMemoryDatabase(t *testing.T) {
	c, err := NewCache(&Config{Path: ":memory:"})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", "v", -1))
	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestCache_PragmasOnEveryConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	c, err := NewCache(&Config{Path: path, BusyTimeout: 1500 * time.Millisecond})
	require.NoError(t, err)
	defer c.Close()

	// drop idle connections so each query runs on a freshly opened one
	c.db.SetMaxIdleConns(0)

	for i := 0; i < 2; i++ {
		var synchronous, busyTimeout int
		var journalMode string
		require.NoError(t, c.db.QueryRow("PRAGMA synchronous").Scan(&synchronous))
		require.NoError(t, c.db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
		require.NoError(t, c.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))

		assert.Equal(t, 2, synchronous, "synchronous=FULL")
		assert.Equal(t, 1500, busyTimeout)
		assert.Equal(t, "wal", journalMode)
	}
}
