package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mrapps/appdaloja/pkg/cache"
	"github.com/mrapps/appdaloja/pkg/codec"
	"github.com/mrapps/appdaloja/pkg/keys"
)

// AdsStore handles the per-store ads cache
// Key format: "<ns>:ads-<id>" for the ads, "<ns>:adsUpdatedAt-<id>" for the freshness timestamp
// The two keys are written independently: after an interrupted refresh the ads
// may be newer than the timestamp, or have none at all.
type AdsStore struct {
	cache    cache.Cache
	registry keys.Registry
}

// newAdsStore creates a new AdsStore instance
func newAdsStore(c cache.Cache, registry keys.Registry) *AdsStore {
	return &AdsStore{
		cache:    c,
		registry: registry,
	}
}

func (s *AdsStore) adsKey(id string) string {
	return s.registry.Partition(keys.Ads, id)
}

func (s *AdsStore) updatedAtKey(id string) string {
	return s.registry.Partition(keys.AdsUpdatedAt, id)
}

// Set replaces the ads cached for id. Any serializable value is accepted, including nil
func (s *AdsStore) Set(ctx context.Context, id string, ads any) error {
	if id == "" {
		return fmt.Errorf("failed to set %s: %w", keys.Ads, ErrEmptyIdentifier)
	}
	return setJSONHelper(ctx, s.cache, s.adsKey(id), keys.Ads, ads)
}

// Get returns the ads cached for id or nil
func (s *AdsStore) Get(ctx context.Context, id string) any {
	return s.Lookup(ctx, id).Get()
}

// Lookup returns the explicit decode result for the ads of id
func (s *AdsStore) Lookup(ctx context.Context, id string) codec.Result {
	if id == "" {
		return codec.Result{Status: codec.Absent}
	}
	return lookupHelper(ctx, s.cache, s.adsKey(id), keys.Ads, codec.Decode)
}

// Decode unmarshals the ads cached for id into out
func (s *AdsStore) Decode(ctx context.Context, id string, out any) bool {
	if id == "" {
		return false
	}
	return lookupHelper(ctx, s.cache, s.adsKey(id), keys.Ads, func(raw any) codec.Result {
		return codec.DecodeInto(raw, out)
	}).OK()
}

// SetUpdatedAt records the refresh time of the ads of id
func (s *AdsStore) SetUpdatedAt(ctx context.Context, id string, at time.Time) error {
	if id == "" {
		return fmt.Errorf("failed to set %s: %w", keys.AdsUpdatedAt, ErrEmptyIdentifier)
	}
	data, err := codec.EncodeTime(at)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", keys.AdsUpdatedAt, err)
	}
	return writeHelper(ctx, s.cache, s.updatedAtKey(id), keys.AdsUpdatedAt, data)
}

// GetUpdatedAt returns the refresh time of the ads of id
func (s *AdsStore) GetUpdatedAt(ctx context.Context, id string) (time.Time, bool) {
	at, res := s.LookupUpdatedAt(ctx, id)
	return at, res.OK()
}

// LookupUpdatedAt returns the refresh time of id with its explicit decode result
func (s *AdsStore) LookupUpdatedAt(ctx context.Context, id string) (time.Time, codec.Result) {
	if id == "" {
		return time.Time{}, codec.Result{Status: codec.Absent}
	}

	var at time.Time
	res := lookupHelper(ctx, s.cache, s.updatedAtKey(id), keys.AdsUpdatedAt, func(raw any) codec.Result {
		var decoded codec.Result
		at, decoded = codec.DecodeTime(raw)
		return decoded
	})
	if !res.OK() {
		return time.Time{}, res
	}
	return at, res
}

// Refresh stores ads and then marks them fresh as of at.
// If the second write fails the ads are already replaced.
func (s *AdsStore) Refresh(ctx context.Context, id string, ads any, at time.Time) error {
	if err := s.Set(ctx, id, ads); err != nil {
		return err
	}
	return s.SetUpdatedAt(ctx, id, at)
}

// Delete removes the ads and the timestamp of id
func (s *AdsStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("failed to delete %s: %w", keys.Ads, ErrEmptyIdentifier)
	}
	if err := s.cache.Delete(ctx, s.adsKey(id)); err != nil {
		return fmt.Errorf("failed to delete %s from cache: %w", keys.Ads, err)
	}
	if err := s.cache.Delete(ctx, s.updatedAtKey(id)); err != nil {
		return fmt.Errorf("failed to delete %s from cache: %w", keys.AdsUpdatedAt, err)
	}
	return nil
}

// IDs lists every identifier with cached ads
func (s *AdsStore) IDs(ctx context.Context) ([]string, error) {
	results, err := s.cache.GetByPattern(ctx, s.registry.Pattern(keys.Ads))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", keys.Ads, err)
	}

	ids := make([]string, 0, len(results))
	for key := range results {
		if id, ok := s.registry.PartitionID(keys.Ads, key); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
