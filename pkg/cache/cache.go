// Package cache defines the key-value engine boundary used by the session store
// and selects one of the available drivers from configuration.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mrapps/appdaloja/pkg/cache/cacheerr"
	"github.com/mrapps/appdaloja/pkg/cache/inmemory"
	"github.com/mrapps/appdaloja/pkg/cache/redis"
	"github.com/mrapps/appdaloja/pkg/cache/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverInMemory = "memory"
	DriverRedis    = "redis"
)

// NoExpiration marks a write that must persist until it is overwritten or deleted.
// Its value matches go-cache's NoExpiration so drivers can pass it through.
const NoExpiration time.Duration = -1

// ErrKeyNotFound is returned by Get when the key does not exist
var ErrKeyNotFound = cacheerr.ErrKeyNotFound

// Cache is a synchronous, string-keyed store. Values are strings, booleans or numbers.
type Cache interface {
	// Get returns the value stored under key or ErrKeyNotFound
	Get(ctx context.Context, key string) (interface{}, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// GetByPattern returns every key matching a glob pattern ('*' and '?') with its value
	GetByPattern(ctx context.Context, pattern string) (map[string]interface{}, error)

	// Close releases the underlying engine
	Close() error
}

// Config selects and configures a cache driver
type Config struct {
	Driver   string           `mapstructure:"driver" yaml:"driver"`
	InMemory *inmemory.Config `mapstructure:"inmemory" yaml:"inmemory"`
	Redis    *redis.Config    `mapstructure:"redis" yaml:"redis"`
	SQLite   *sqlite.Config   `mapstructure:"sqlite" yaml:"sqlite"`
}

// New creates the cache driver named by config.Driver. An empty driver defaults to sqlite.
func New(config *Config) (Cache, error) {
	if config == nil {
		return nil, fmt.Errorf("cache config is required")
	}

	switch config.Driver {
	case DriverSQLite, "":
		if config.SQLite == nil {
			return nil, fmt.Errorf("sqlite cache config is required")
		}
		c, err := sqlite.NewCache(config.SQLite)
		if err != nil {
			return nil, err
		}
		return c, nil
	case DriverInMemory:
		if config.InMemory == nil {
			return nil, fmt.Errorf("inmemory cache config is required")
		}
		c, err := inmemory.NewCache(config.InMemory)
		if err != nil {
			return nil, err
		}
		return c, nil
	case DriverRedis:
		if config.Redis == nil {
			return nil, fmt.Errorf("redis cache config is required")
		}
		c, err := redis.NewCache(config.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", config.Driver)
	}
}
