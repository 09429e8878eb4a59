package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrapps/appdaloja/pkg/keys"
	"github.com/mrapps/appdaloja/pkg/store"
)

// snapshotConcurrency bounds the number of parallel engine reads
const snapshotConcurrency = 8

// Snapshot is a point-in-time view of every domain of a session
type Snapshot struct {
	Namespace string                 `json:"namespace" yaml:"namespace"`
	UniqueID  string                 `json:"uniqueId,omitempty" yaml:"uniqueId,omitempty"`
	Blobs     map[keys.Domain]any    `json:"blobs" yaml:"blobs"`
	Ads       map[string]AdsSnapshot `json:"ads" yaml:"ads"`
}

// AdsSnapshot is the cached ads of one store with their freshness timestamp
type AdsSnapshot struct {
	Ads       any        `json:"ads" yaml:"ads"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Snapshot reads every domain. It does not create a device identifier and
// omits values that are missing or corrupt.
func (s *Session) Snapshot(ctx context.Context) (*Snapshot, error) {
	ids, err := s.store.Ads.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot session: %w", err)
	}

	snap := &Snapshot{
		Namespace: s.Registry().Namespace(),
		Blobs:     make(map[keys.Domain]any),
		Ads:       make(map[string]AdsSnapshot, len(ids)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)

	g.Go(func() error {
		id := s.store.Device.GetUniqueID(gctx)
		mu.Lock()
		snap.UniqueID = id
		mu.Unlock()
		return nil
	})

	for _, domain := range store.BlobDomains() {
		blob, _ := s.store.Blob(domain)
		g.Go(func() error {
			res := blob.Lookup(gctx)
			if !res.OK() {
				return nil
			}
			mu.Lock()
			snap.Blobs[domain] = res.Value
			mu.Unlock()
			return nil
		})
	}

	for _, id := range ids {
		g.Go(func() error {
			entry := AdsSnapshot{Ads: s.store.Ads.Get(gctx, id)}
			if at, ok := s.store.Ads.GetUpdatedAt(gctx, id); ok {
				entry.UpdatedAt = &at
			}
			mu.Lock()
			snap.Ads[id] = entry
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
