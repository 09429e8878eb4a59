package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrapps/appdaloja/pkg/cache"
	"github.com/mrapps/appdaloja/pkg/codec"
	"github.com/mrapps/appdaloja/pkg/keys"
	"github.com/mrapps/appdaloja/pkg/logger"
	"github.com/mrapps/appdaloja/pkg/telemetry"
)

// ErrEmptyIdentifier is returned when a partitioned write has no entity id
var ErrEmptyIdentifier = errors.New("identifier must not be empty")

// lookupHelper is the shared read path of every sub-store:
//  1. read the raw value from the cache
//  2. decode it with decode
//  3. log and count the outcome
//
// It never returns an error. A missing key is Absent, an undecodable value is
// Corrupt and an engine failure is Absent with Err set.
func lookupHelper(
	ctx context.Context,
	c cache.Cache,
	key string,
	domain keys.Domain,
	decode func(raw any) codec.Result,
) codec.Result {
	start := time.Now()
	log := logger.Logger(ctx).WithField("key", key)

	var res codec.Result
	val, err := c.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrKeyNotFound):
		res = codec.Result{Status: codec.Absent}
	case err != nil:
		log.WithError(err).Error("failed to read from session store, treating as missing")
		res = codec.Result{Status: codec.Absent, Err: fmt.Errorf("failed to read %s: %w", domain, err)}
	default:
		res = decode(val)
		if res.Status == codec.Corrupt {
			log.WithError(res.Err).Warn("discarding corrupt session value")
		}
	}

	telemetry.GetStoreMetrics().RecordRead(ctx, string(domain), res.Status.String(), time.Since(start))
	return res
}

// writeHelper stores an already encoded value under key with no expiration
func writeHelper(ctx context.Context, c cache.Cache, key string, domain keys.Domain, data string) error {
	start := time.Now()
	err := c.Set(ctx, key, data, cache.NoExpiration)
	telemetry.GetStoreMetrics().RecordWrite(ctx, string(domain), err, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", domain, err)
	}
	return nil
}

// setJSONHelper encodes value and stores it under key
func setJSONHelper(ctx context.Context, c cache.Cache, key string, domain keys.Domain, value any) error {
	data, err := codec.Encode(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", domain, err)
	}
	return writeHelper(ctx, c, key, domain, data)
}
