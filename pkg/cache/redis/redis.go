// Package redis implements a cache driver backed by a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mrapps/appdaloja/pkg/cache/cacheerr"
)

const scanCount = 100

// Config holds the Redis connection settings
type Config struct {
	Host          string `mapstructure:"host" yaml:"host"`
	Port          string `mapstructure:"port" yaml:"port"`
	Username      string `mapstructure:"username" yaml:"username"`
	Password      string `mapstructure:"password" yaml:"password"`
	Database      int    `mapstructure:"database" yaml:"database"`
	EnableTracing bool   `mapstructure:"enableTracing" yaml:"enableTracing"`
	EnableMetrics bool   `mapstructure:"enableMetrics" yaml:"enableMetrics"`
}

// Cache is a redis driver
type Cache struct {
	client *goredis.Client
}

// NewCache connects to redis and verifies the connection with a PING
func NewCache(config *Config) (*Cache, error) {
	if config == nil {
		return nil, fmt.Errorf("redis cache config is required")
	}
	if config.Host == "" {
		return nil, fmt.Errorf("redis host is required")
	}

	port := config.Port
	if port == "" {
		port = "6379"
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     net.JoinHostPort(config.Host, port),
		Username: config.Username,
		Password: config.Password,
		DB:       config.Database,
	})

	if config.EnableTracing {
		if err := redisotel.InstrumentTracing(client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
		}
	}
	if config.EnableMetrics {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to instrument redis metrics: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Get returns the string stored under key
func (c *Cache) Get(ctx context.Context, key string) (interface{}, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, cacheerr.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, nil
}

// Set stores value under key. Non-positive ttl never expires.
// Redis keeps every value as a string, booleans are stored as "true"/"false".
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if b, ok := value.(bool); ok {
		value = strconv.FormatBool(b)
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// GetByPattern scans for keys matching pattern and fetches their values
func (c *Cache) GetByPattern(ctx context.Context, pattern string) (map[string]interface{}, error) {
	results := make(map[string]interface{})

	iter := c.client.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := c.client.Get(ctx, key).Result()
		if errors.Is(err, goredis.Nil) {
			// expired between SCAN and GET
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get key %s: %w", key, err)
		}
		results[key] = val
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys with pattern %s: %w", pattern, err)
	}

	return results, nil
}

// Close closes the redis client
func (c *Cache) Close() error {
	return c.client.Close()
}
