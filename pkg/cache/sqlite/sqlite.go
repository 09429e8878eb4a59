// Package sqlite implements the durable on-device cache driver on top of an
// embedded SQLite database (modernc.org/sqlite, no cgo).
//
// Every Set is a single upsert statement, so each key write is atomic and,
// with synchronous=FULL, durable once Set returns.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mrapps/appdaloja/pkg/cache/cacheerr"
)

const (
	kindString = "string"
	kindBool   = "bool"
	kindInt    = "int"
	kindFloat  = "float"
)

// Config holds the sqlite driver settings
type Config struct {
	// Path is the database file. ":memory:" keeps everything in memory.
	Path string `mapstructure:"path" yaml:"path"`
	// BusyTimeout bounds how long a write waits on a lock held by another process
	BusyTimeout time.Duration `mapstructure:"busyTimeout" yaml:"busyTimeout"`
}

// Cache is a sqlite driver
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// NewCache opens (and creates if needed) the database at config.Path
func NewCache(config *Config) (*Cache, error) {
	if config == nil {
		return nil, fmt.Errorf("sqlite cache config is required")
	}
	if config.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if config.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	busyTimeout := config.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}

	db, err := sql.Open("sqlite", dsn(config.Path, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c := &Cache{db: db, now: time.Now}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return c, nil
}

// dsn carries the pragmas in the connection string so that every connection
// the pool opens gets them, not just the first one
func dsn(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(%d)",
		path, busyTimeout.Milliseconds())
}

func (c *Cache) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			kind TEXT NOT NULL,
			expires_at INTEGER,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_kv_expires_at
			ON kv(expires_at) WHERE expires_at IS NOT NULL;
	`
	_, err := c.db.Exec(schema)
	return err
}

// Get returns the typed value stored under key
func (c *Cache) Get(ctx context.Context, key string) (interface{}, error) {
	var (
		value     string
		kind      string
		expiresAt sql.NullInt64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT value, kind, expires_at FROM kv WHERE key = ?`, key,
	).Scan(&value, &kind, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cacheerr.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	if c.expired(expiresAt) {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return nil, fmt.Errorf("failed to evict expired key %s: %w", key, err)
		}
		return nil, cacheerr.ErrKeyNotFound
	}

	return decodeValue(value, kind)
}

// Set upserts value under key. Non-positive ttl never expires.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	encoded, kind, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	now := c.now()
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: now.Add(ttl).UnixMilli(), Valid: true}
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, kind, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			kind = excluded.kind,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, key, encoded, kind, expiresAt, now.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// GetByPattern returns unexpired keys matching the glob pattern, using SQLite's GLOB operator
func (c *Cache) GetByPattern(ctx context.Context, pattern string) (map[string]interface{}, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT key, value, kind FROM kv
		WHERE key GLOB ? AND (expires_at IS NULL OR expires_at > ?)
	`, pattern, c.now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query keys with pattern %s: %w", pattern, err)
	}
	defer rows.Close()

	results := make(map[string]interface{})
	for rows.Next() {
		var key, value, kind string
		if err := rows.Scan(&key, &value, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		decoded, err := decodeValue(value, kind)
		if err != nil {
			return nil, err
		}
		results[key] = decoded
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate keys with pattern %s: %w", pattern, err)
	}

	return results, nil
}

// Close closes the database
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) expired(expiresAt sql.NullInt64) bool {
	return expiresAt.Valid && expiresAt.Int64 <= c.now().UnixMilli()
}

func encodeValue(value interface{}) (string, string, error) {
	switch v := value.(type) {
	case string:
		return v, kindString, nil
	case []byte:
		return string(v), kindString, nil
	case bool:
		return strconv.FormatBool(v), kindBool, nil
	case int:
		return strconv.FormatInt(int64(v), 10), kindInt, nil
	case int32:
		return strconv.FormatInt(int64(v), 10), kindInt, nil
	case int64:
		return strconv.FormatInt(v, 10), kindInt, nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), kindFloat, nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), kindFloat, nil
	default:
		return "", "", fmt.Errorf("unsupported value type %T", value)
	}
}

func decodeValue(value, kind string) (interface{}, error) {
	switch kind {
	case kindString:
		return value, nil
	case kindBool:
		return strconv.ParseBool(value)
	case kindInt:
		return strconv.ParseInt(value, 10, 64)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	default:
		return nil, fmt.Errorf("unknown value kind %q", kind)
	}
}
