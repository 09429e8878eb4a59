package store

import (
	"github.com/mrapps/appdaloja/pkg/cache"
	"github.com/mrapps/appdaloja/pkg/keys"
)

// Store is the typed facade over the session cache. Each sub-store owns one
// namespace domain and handles key derivation and JSON serialization.
// NOTE: This store does NOT handle locking - every operation is a single engine call
type Store struct {
	Device       DeviceStoreInterface
	Global       BlobStoreInterface
	StoreProfile BlobStoreInterface
	Profile      BlobStoreInterface
	TempProfile  BlobStoreInterface
	Config       BlobStoreInterface
	Ads          AdsStoreInterface

	registry keys.Registry
}

// New creates a new Store instance with all sub-stores initialized
func New(c cache.Cache, registry keys.Registry) *Store {
	return &Store{
		Device:       newDeviceStore(c, registry),
		Global:       newBlobStore(c, registry, keys.Global),
		StoreProfile: newBlobStore(c, registry, keys.StoreProfile),
		Profile:      newBlobStore(c, registry, keys.Profile),
		TempProfile:  newBlobStore(c, registry, keys.TempProfile),
		Config:       newBlobStore(c, registry, keys.Config),
		Ads:          newAdsStore(c, registry),
		registry:     registry,
	}
}

// Registry returns the key registry the store was built with
func (s *Store) Registry() keys.Registry {
	return s.registry
}

// Blob returns the whole-value sub-store for domain, if domain is one
func (s *Store) Blob(domain keys.Domain) (BlobStoreInterface, bool) {
	switch domain {
	case keys.Global:
		return s.Global, true
	case keys.StoreProfile:
		return s.StoreProfile, true
	case keys.Profile:
		return s.Profile, true
	case keys.TempProfile:
		return s.TempProfile, true
	case keys.Config:
		return s.Config, true
	default:
		return nil, false
	}
}

// BlobDomains lists the domains served by Blob
func BlobDomains() []keys.Domain {
	return []keys.Domain{keys.Global, keys.StoreProfile, keys.Profile, keys.TempProfile, keys.Config}
}

// Compile-time interface compliance checks
var (
	_ DeviceStoreInterface = (*DeviceStore)(nil)
	_ BlobStoreInterface   = (*BlobStore)(nil)
	_ AdsStoreInterface    = (*AdsStore)(nil)
)
