package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern: look the key up in Redis, and on
// a miss run loader and store its result under the key with the given TTL.
// dest must be a pointer the cached JSON can be unmarshalled into. When Redis
// is unavailable the loader runs directly, so callers never need to care
// whether the cache is up.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func() error) error {
	if client == nil {
		return loader()
	}

	cached, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if unmarshalErr := json.Unmarshal(cached, dest); unmarshalErr == nil {
			return nil
		}
		// Corrupt entry: drop it and fall through to the loader.
		client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		// Redis trouble is non-fatal; serve from the database.
		return loader()
	}

	if err := loader(); err != nil {
		return err
	}

	if data, marshalErr := json.Marshal(dest); marshalErr == nil {
		client.Set(ctx, key, data, ttl)
	}
	return nil
}
