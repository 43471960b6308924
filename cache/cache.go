package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICache defines a general caching interface
type ICache[T any] interface {
	// Get returns nil without error on a cache miss
	Get(context.Context, string) (*T, error)
	Set(context.Context, string, *T, ...time.Duration) error
	Delete(context.Context, string) error
}

// Cache implements the ICache interface on redis
type Cache[T any] struct {
	rc      redis.Cmdable
	prefix  string
	useHash bool
}

// NewCache creates a new Cache instance.
// With useHash the entries are fields of one hash named prefix, otherwise
// plain keys prefixed with prefix. A nil client yields a cache that never hits.
func NewCache[T any](rc redis.Cmdable, prefix string, useHash ...bool) *Cache[T] {
	hash := false
	if len(useHash) > 0 {
		hash = useHash[0]
	}
	return &Cache[T]{rc: rc, prefix: prefix, useHash: hash}
}

// Key returns the redis key of a field
func (c *Cache[T]) Key(field string) string {
	if c.useHash {
		return c.prefix
	}
	return c.prefix + field
}

// Get retrieves a single item from cache
func (c *Cache[T]) Get(ctx context.Context, field string) (*T, error) {
	if c.rc == nil {
		return nil, nil
	}

	var result string
	var err error

	if c.useHash {
		result, err = c.rc.HGet(ctx, c.prefix, field).Result()
	} else {
		result, err = c.rc.Get(ctx, c.Key(field)).Result()
	}

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var row T
	if err = json.Unmarshal([]byte(result), &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return &row, nil
}

// Set saves a single item into cache. Hash entries ignore expire.
func (c *Cache[T]) Set(ctx context.Context, field string, data *T, expire ...time.Duration) error {
	if c.rc == nil {
		return nil
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if c.useHash {
		err = c.rc.HSet(ctx, c.prefix, field, bytes).Err()
	} else {
		exp := time.Duration(0)
		if len(expire) > 0 {
			exp = expire[0]
		}
		err = c.rc.Set(ctx, c.Key(field), bytes, exp).Err()
	}

	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete removes data from cache
func (c *Cache[T]) Delete(ctx context.Context, field string) error {
	if c.rc == nil {
		return nil
	}

	var err error

	if c.useHash {
		err = c.rc.HDel(ctx, c.prefix, field).Err()
	} else {
		err = c.rc.Del(ctx, c.Key(field)).Err()
	}

	if err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}
