// Package identity resolves the per-install device identifier.
//
// The identifier is generated at most once per store: a persisted value always
// wins, otherwise the platform is asked for one and a random UUID is used as the
// last resort. Whatever is chosen is persisted before it is returned.
package identity

//go:generate mockgen -source=resolver.go -destination=mocks/mock_identity.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mrapps/appdaloja/pkg/logger"
)

// ErrPlatformUnavailable is returned by platforms that cannot supply an identifier
var ErrPlatformUnavailable = errors.New("platform identifier unavailable")

// Platform supplies host specific device identifiers
type Platform interface {
	// RequiresSync reports whether SyncUniqueID must run before UniqueID
	RequiresSync() bool

	// SyncUniqueID asks the platform to synchronize its identifier
	SyncUniqueID(ctx context.Context) (string, error)

	// UniqueID returns the platform identifier
	UniqueID(ctx context.Context) (string, error)
}

// Store persists the resolved identifier
type Store interface {
	GetUniqueID(ctx context.Context) string
	SetUniqueID(ctx context.Context, id string) error
}

// Option configures a Resolver
type Option func(*Resolver)

// WithGenerator replaces the UUIDv4 fallback generator
func WithGenerator(generate func() string) Option {
	return func(r *Resolver) {
		if generate != nil {
			r.generate = generate
		}
	}
}

// Resolver implements the identifier fallback chain
type Resolver struct {
	store    Store
	platform Platform
	generate func() string

	group singleflight.Group
}

// NewResolver creates a resolver. platform may be nil, in which case only the
// persisted value and the generator are used.
func NewResolver(store Store, platform Platform, opts ...Option) *Resolver {
	r := &Resolver{
		store:    store,
		platform: platform,
		generate: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the device identifier, creating and persisting it on first use.
// Concurrent callers in the same process share a single resolution.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	v, err, _ := r.group.Do("uniqueId", func() (interface{}, error) {
		return r.resolve(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *Resolver) resolve(ctx context.Context) (string, error) {
	log := logger.Logger(ctx)

	if id := r.store.GetUniqueID(ctx); id != "" {
		return id, nil
	}

	id, source := r.fromPlatform(ctx), "platform"
	if id == "" {
		id, source = r.generate(), "generated"
	}

	if err := r.store.SetUniqueID(ctx, id); err != nil {
		return "", fmt.Errorf("failed to persist unique id: %w", err)
	}

	log.WithField("source", source).Info("device unique id created")
	return id, nil
}

// fromPlatform returns the platform identifier or "" when there is none
func (r *Resolver) fromPlatform(ctx context.Context) string {
	if r.platform == nil {
		return ""
	}
	log := logger.Logger(ctx)

	if r.platform.RequiresSync() {
		// only the side effect matters, the platform is read again below
		if _, err := r.platform.SyncUniqueID(ctx); err != nil {
			log.WithError(err).Warn("platform unique id sync failed")
		}
	}

	id, err := r.platform.UniqueID(ctx)
	if err != nil {
		log.WithError(err).Debug("platform unique id unavailable, falling back")
		return ""
	}
	return id
}
