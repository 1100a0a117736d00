package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"driverquote/internal/middleware"
	"driverquote/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON loads key into dest. Returns false on a miss or when Redis is unavailable.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value under key with the given TTL.
func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, raw, ttl).Err()
}

// errStaleFill aborts a fill whose key was invalidated while fetch ran.
var errStaleFill = errors.New("cache key invalidated during fill")

// generation returns the current invalidation token of key ("" when never invalidated).
func generation(ctx context.Context, key string) (string, error) {
	gen, err := client.Get(ctx, GenerationKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

// fillIfUnchanged stores value under key only while the generation of key is
// still gen. WATCH aborts the write if an invalidation lands in between.
func fillIfUnchanged(ctx context.Context, key, gen string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	err = client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, GenerationKey(key)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, ttl)
			return nil
		})
		return err
	}, GenerationKey(key))
	if errors.Is(err, redis.TxFailedErr) {
		return errStaleFill
	}
	return err
}

// Aside implements cache-aside: a hit fills dest from Redis, a miss runs fetch
// (which must fill dest) and stores the result. The store is skipped when key
// was invalidated after the lookup, so a write racing the read is never
// shadowed by the older value. Cache failures never fail the read; errors from
// fetch are returned unchanged and nothing is cached.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	hit, err := GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues("error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	case hit:
		observability.CacheLookups.WithLabelValues("hit").Inc()
		return nil
	default:
		observability.CacheLookups.WithLabelValues("miss").Inc()
	}

	// Read before fetch: any invalidation from here on changes it.
	var gen string
	var genErr error
	if client != nil {
		gen, genErr = generation(ctx, key)
	}

	if err := fetch(); err != nil {
		return err
	}

	if client == nil || genErr != nil {
		return nil
	}
	switch err := fillIfUnchanged(ctx, key, gen, dest, ttl); {
	case errors.Is(err, errStaleFill):
		observability.CacheLookups.WithLabelValues("stale").Inc()
	case err != nil:
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}
