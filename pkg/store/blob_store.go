package store

import (
	"context"

	"github.com/mrapps/appdaloja/pkg/cache"
	"github.com/mrapps/appdaloja/pkg/codec"
	"github.com/mrapps/appdaloja/pkg/keys"
)

// BlobStore handles one whole-value JSON document, e.g. "<ns>:global"
// Writes replace the document; nothing is merged.
type BlobStore struct {
	cache  cache.Cache
	key    string
	domain keys.Domain
}

// newBlobStore creates a new BlobStore instance for domain
func newBlobStore(c cache.Cache, registry keys.Registry, domain keys.Domain) *BlobStore {
	return &BlobStore{
		cache:  c,
		key:    registry.Key(domain),
		domain: domain,
	}
}

// Key returns the storage key
func (s *BlobStore) Key() string {
	return s.key
}

// Get returns the decoded document or nil
func (s *BlobStore) Get(ctx context.Context) any {
	return s.Lookup(ctx).Get()
}

// Lookup returns the explicit decode result
func (s *BlobStore) Lookup(ctx context.Context) codec.Result {
	return lookupHelper(ctx, s.cache, s.key, s.domain, codec.Decode)
}

// Decode unmarshals the document into out. out may be partially filled when
// the stored value is corrupt.
func (s *BlobStore) Decode(ctx context.Context, out any) bool {
	return lookupHelper(ctx, s.cache, s.key, s.domain, func(raw any) codec.Result {
		return codec.DecodeInto(raw, out)
	}).OK()
}

// Set replaces the document with value
func (s *BlobStore) Set(ctx context.Context, value any) error {
	return setJSONHelper(ctx, s.cache, s.key, s.domain, value)
}

// Delete removes the document
func (s *BlobStore) Delete(ctx context.Context) error {
	return s.cache.Delete(ctx, s.key)
}
