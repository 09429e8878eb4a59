// Package session is the entry surface of the session store. A Session owns one
// storage engine handle and exposes whole-value get/set pairs per domain, the
// device identity and the per-store ads cache.
//
// Getters never fail: a missing or corrupt value reads as nil. Setters return
// serialization and engine errors.
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrapps/appdaloja/pkg/cache"
	"github.com/mrapps/appdaloja/pkg/config"
	"github.com/mrapps/appdaloja/pkg/identity"
	"github.com/mrapps/appdaloja/pkg/keys"
	"github.com/mrapps/appdaloja/pkg/logger"
	"github.com/mrapps/appdaloja/pkg/store"
)

// StoreIDField is the store profile field holding the active store identifier
const StoreIDField = "_id"

type options struct {
	registry     keys.Registry
	platform     identity.Platform
	identityOpts []identity.Option
}

// Option configures a Session
type Option func(*options)

// WithRegistry sets the key namespace, keys.Default() otherwise
func WithRegistry(registry keys.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithPlatform sets the platform consulted for the device identifier
func WithPlatform(platform identity.Platform) Option {
	return func(o *options) {
		o.platform = platform
	}
}

// WithIdentityOptions passes options through to the identity resolver
func WithIdentityOptions(opts ...identity.Option) Option {
	return func(o *options) {
		o.identityOpts = append(o.identityOpts, opts...)
	}
}

// Session is the root owner of the storage engine handle
type Session struct {
	cache    cache.Cache
	store    *store.Store
	resolver *identity.Resolver
}

// New wraps an already opened cache. The session takes ownership of c and
// closes it in Close.
func New(c cache.Cache, opts ...Option) *Session {
	o := options{registry: keys.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	st := store.New(c, o.registry)
	return &Session{
		cache:    c,
		store:    st,
		resolver: identity.NewResolver(st.Device, o.platform, o.identityOpts...),
	}
}

// Open creates the cache described by cfg and wraps it in a Session
func Open(ctx context.Context, cfg *config.AppConfig, platform identity.Platform) (*Session, error) {
	registry, err := keys.New(cfg.Session.Namespace)
	if err != nil {
		return nil, fmt.Errorf("invalid session namespace: %w", err)
	}
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid key layout: %w", err)
	}

	c, err := cache.New(&cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to open session cache: %w", err)
	}

	logger.Logger(ctx).WithFields(logrus.Fields{
		"driver":    cfg.Cache.Driver,
		"namespace": registry.Namespace(),
	}).Info("session store opened")

	return New(c, WithRegistry(registry), WithPlatform(platform)), nil
}

// Store returns the typed store backing the session
func (s *Session) Store() *store.Store {
	return s.store
}

// Registry returns the key registry of the session
func (s *Session) Registry() keys.Registry {
	return s.store.Registry()
}

// Close releases the storage engine handle
func (s *Session) Close() error {
	return s.cache.Close()
}

// UniqueID returns the device identifier, resolving and persisting it on first use
func (s *Session) UniqueID(ctx context.Context) (string, error) {
	return s.resolver.Resolve(ctx)
}

// EnsureUniqueID makes sure a device identifier is persisted
func (s *Session) EnsureUniqueID(ctx context.Context) error {
	_, err := s.resolver.Resolve(ctx)
	return err
}

func (s *Session) SetGlobal(ctx context.Context, v any) error { return s.store.Global.Set(ctx, v) }
func (s *Session) GetGlobal(ctx context.Context) any          { return s.store.Global.Get(ctx) }

func (s *Session) SetStore(ctx context.Context, v any) error { return s.store.StoreProfile.Set(ctx, v) }
func (s *Session) GetStore(ctx context.Context) any          { return s.store.StoreProfile.Get(ctx) }

func (s *Session) SetProfile(ctx context.Context, v any) error { return s.store.Profile.Set(ctx, v) }
func (s *Session) GetProfile(ctx context.Context) any          { return s.store.Profile.Get(ctx) }

func (s *Session) SetTempProfile(ctx context.Context, v any) error {
	return s.store.TempProfile.Set(ctx, v)
}
func (s *Session) GetTempProfile(ctx context.Context) any { return s.store.TempProfile.Get(ctx) }

func (s *Session) SetConfig(ctx context.Context, v any) error { return s.store.Config.Set(ctx, v) }
func (s *Session) GetConfig(ctx context.Context) any          { return s.store.Config.Get(ctx) }

// SetAds replaces the ads cached for store id. The freshness timestamp is not touched.
func (s *Session) SetAds(ctx context.Context, id string, ads any) error {
	return s.store.Ads.Set(ctx, id, ads)
}

// GetAds returns the ads cached for store id, or nil
func (s *Session) GetAds(ctx context.Context, id string) any {
	return s.store.Ads.Get(ctx, id)
}

// SetAdsUpdatedAt records when the ads of store id were refreshed
func (s *Session) SetAdsUpdatedAt(ctx context.Context, id string, at time.Time) error {
	return s.store.Ads.SetUpdatedAt(ctx, id, at)
}

// GetAdsUpdatedAt returns when the ads of store id were refreshed
func (s *Session) GetAdsUpdatedAt(ctx context.Context, id string) (time.Time, bool) {
	return s.store.Ads.GetUpdatedAt(ctx, id)
}

// ActiveStoreID reads the identifier of the persisted store profile
func (s *Session) ActiveStoreID(ctx context.Context) (string, bool) {
	profile, ok := s.store.StoreProfile.Get(ctx).(map[string]any)
	if !ok {
		return "", false
	}

	var id string
	switch v := profile[StoreIDField].(type) {
	case nil:
		return "", false
	case string:
		id = v
	case float64:
		// numeric ids come back from JSON as float64
		id = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		id = fmt.Sprint(v)
	}
	return id, id != ""
}

// GetActiveStoreAds returns the ads of the store in the persisted store profile.
// Callers that know the store id should use GetAds.
func (s *Session) GetActiveStoreAds(ctx context.Context) any {
	id, ok := s.ActiveStoreID(ctx)
	if !ok {
		return nil
	}
	return s.GetAds(ctx, id)
}
