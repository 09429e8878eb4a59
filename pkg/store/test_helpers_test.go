package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrapps/appdaloja/pkg/cache"
	"github.com/mrapps/appdaloja/pkg/cache/inmemory"
	"github.com/mrapps/appdaloja/pkg/codec"
	"github.com/mrapps/appdaloja/pkg/keys"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := inmemory.NewCache(&inmemory.Config{
		DefaultExpiration: 300,
		CleanupInterval:   600,
	})
	require.NoError(t, err)
	return c
}

func setupStore(t *testing.T) (*Store, cache.Cache) {
	t.Helper()
	c := newTestCache(t)
	return New(c, keys.Default()), c
}

// BlobTestCase defines a test case shared by every whole-value sub-store
type BlobTestCase struct {
	Name       string
	SetupFunc  func(t *testing.T, store BlobStoreInterface, c cache.Cache)
	Want       any
	WantStatus codec.Status
}

// RunBlobTests runs table-driven Lookup/Get tests against every blob domain
func RunBlobTests(t *testing.T, tests []BlobTestCase) {
	for _, domain := range BlobDomains() {
		for _, tt := range tests {
			t.Run(string(domain)+"/"+tt.Name, func(t *testing.T) {
				s, c := setupStore(t)
				blob, ok := s.Blob(domain)
				require.True(t, ok)
				tt.SetupFunc(t, blob, c)

				res := blob.Lookup(testContext(t))
				assert.Equal(t, tt.WantStatus, res.Status)
				assert.Equal(t, tt.Want, blob.Get(testContext(t)))
			})
		}
	}
}
