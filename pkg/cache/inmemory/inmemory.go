// Package inmemory implements a process-local cache driver on top of go-cache.
package inmemory

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mrapps/appdaloja/pkg/cache/cacheerr"
)

// Config holds the go-cache settings, in seconds
type Config struct {
	DefaultExpiration int `mapstructure:"defaultExpiration" yaml:"defaultExpiration"`
	CleanupInterval   int `mapstructure:"cleanupInterval" yaml:"cleanupInterval"`
}

// Cache is an in-memory driver. Nothing survives a process restart.
type Cache struct {
	client *gocache.Cache
}

// NewCache creates an in-memory cache
func NewCache(config *Config) (*Cache, error) {
	if config == nil {
		return nil, fmt.Errorf("inmemory cache config is required")
	}
	if config.DefaultExpiration < 0 || config.CleanupInterval < 0 {
		return nil, fmt.Errorf("inmemory cache intervals must not be negative")
	}

	return &Cache{
		client: gocache.New(
			time.Duration(config.DefaultExpiration)*time.Second,
			time.Duration(config.CleanupInterval)*time.Second,
		),
	}, nil
}

// Get returns the value stored under key
func (c *Cache) Get(_ context.Context, key string) (interface{}, error) {
	val, found := c.client.Get(key)
	if !found {
		return nil, cacheerr.ErrKeyNotFound
	}
	return val, nil
}

// Set stores value under key. A negative ttl never expires, zero uses the default expiration.
func (c *Cache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl < 0 {
		ttl = gocache.NoExpiration
	}
	c.client.Set(key, value, ttl)
	return nil
}

// Delete removes key
func (c *Cache) Delete(_ context.Context, key string) error {
	c.client.Delete(key)
	return nil
}

// GetByPattern returns all unexpired keys matching the glob pattern
func (c *Cache) GetByPattern(_ context.Context, pattern string) (map[string]interface{}, error) {
	re, err := globToRegexp(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	results := make(map[string]interface{})
	for key, item := range c.client.Items() {
		if re.MatchString(key) {
			results[key] = item.Object
		}
	}
	return results, nil
}

// Close flushes every item
func (c *Cache) Close() error {
	c.client.Flush()
	return nil
}

// globToRegexp translates the redis-style '*' and '?' wildcards. Every other character is literal.
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
