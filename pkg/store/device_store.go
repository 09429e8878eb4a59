package store

import (
	"context"
	"fmt"

	"github.com/mrapps/appdaloja/pkg/cache"
	"github.com/mrapps/appdaloja/pkg/codec"
	"github.com/mrapps/appdaloja/pkg/keys"
)

// DeviceStore handles the device identifier stored at "<ns>:uniqueId"
// Value: the identifier as a JSON string
type DeviceStore struct {
	cache cache.Cache
	key   string
}

// newDeviceStore creates a new DeviceStore instance
func newDeviceStore(c cache.Cache, registry keys.Registry) *DeviceStore {
	return &DeviceStore{
		cache: c,
		key:   registry.Key(keys.UniqueID),
	}
}

// GetUniqueID returns the persisted identifier or ""
func (s *DeviceStore) GetUniqueID(ctx context.Context) string {
	res := s.Lookup(ctx)
	if !res.OK() {
		return ""
	}
	id, _ := res.Value.(string)
	return id
}

// Lookup returns the explicit decode result. A stored value that is not a
// JSON string is reported as corrupt.
func (s *DeviceStore) Lookup(ctx context.Context) codec.Result {
	return lookupHelper(ctx, s.cache, s.key, keys.UniqueID, func(raw any) codec.Result {
		var id string
		res := codec.DecodeInto(raw, &id)
		if res.OK() {
			res.Value = id
		}
		return res
	})
}

// SetUniqueID persists id
func (s *DeviceStore) SetUniqueID(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("failed to set %s: %w", keys.UniqueID, ErrEmptyIdentifier)
	}
	return setJSONHelper(ctx, s.cache, s.key, keys.UniqueID, id)
}
