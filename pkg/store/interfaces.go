package store

import (
	"context"
	"time"

	"github.com/mrapps/appdaloja/pkg/codec"
)

// DeviceStoreInterface persists the per-install device identifier
type DeviceStoreInterface interface {
	// GetUniqueID returns the persisted identifier, or "" if none is stored
	GetUniqueID(ctx context.Context) string

	// SetUniqueID persists id, replacing any previous value
	SetUniqueID(ctx context.Context, id string) error

	// Lookup returns the explicit decode result for the identifier key
	Lookup(ctx context.Context) codec.Result
}

// BlobStoreInterface defines whole-value operations on a single JSON document
type BlobStoreInterface interface {
	// Key returns the storage key of the blob
	Key() string

	// Get returns the decoded value, or nil when missing or corrupt
	Get(ctx context.Context) any

	// Lookup returns the explicit decode result, distinguishing missing from corrupt
	Lookup(ctx context.Context) codec.Result

	// Decode unmarshals the stored value into out and reports whether it succeeded
	Decode(ctx context.Context, out any) bool

	// Set replaces the stored value. There is no merge with the previous value
	Set(ctx context.Context, value any) error

	// Delete removes the stored value
	Delete(ctx context.Context) error
}

// AdsStoreInterface defines per-store ads cache operations
// Ads content and its freshness timestamp live under two independent keys;
// a write to one never touches the other
type AdsStoreInterface interface {
	// Set replaces the ads cached for id
	Set(ctx context.Context, id string, ads any) error

	// Get returns the ads cached for id, or nil when missing or corrupt
	Get(ctx context.Context, id string) any

	// Lookup returns the explicit decode result for the ads of id
	Lookup(ctx context.Context, id string) codec.Result

	// Decode unmarshals the ads cached for id into out
	Decode(ctx context.Context, id string, out any) bool

	// SetUpdatedAt records when the ads of id were last refreshed
	SetUpdatedAt(ctx context.Context, id string, at time.Time) error

	// GetUpdatedAt returns the freshness timestamp of id
	GetUpdatedAt(ctx context.Context, id string) (time.Time, bool)

	// LookupUpdatedAt returns the explicit decode result for the timestamp of id
	LookupUpdatedAt(ctx context.Context, id string) (time.Time, codec.Result)

	// Refresh writes ads and then the timestamp, as two separate writes
	Refresh(ctx context.Context, id string, ads any, at time.Time) error

	// Delete removes both the ads and the timestamp of id
	Delete(ctx context.Context, id string) error

	// IDs lists the identifiers that currently have cached ads, sorted
	IDs(ctx context.Context) ([]string, error)
}
