package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Predictia/chronoplan/pkg/dataset"
)

// PartitionCache stores fetched partition frames keyed by query ID and
// partition index. Repeated partition pulls for the same index hit the
// cache instead of the archive, which is what makes them cheap to repeat.
type PartitionCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewPartitionCache creates a partition cache with the given TTL. A zero
// TTL means entries never expire.
func NewPartitionCache(client *redis.Client, cfg *Config, ttl time.Duration) *PartitionCache {
	return &PartitionCache{
		client:    client,
		keyPrefix: cfg.PrefixKey("partition"),
		ttl:       ttl,
	}
}

func (c *PartitionCache) key(queryID string, index int) string {
	return fmt.Sprintf("%s:%s:%d", c.keyPrefix, queryID, index)
}

// Get retrieves a cached partition frame. A cache miss returns (nil, nil).
func (c *PartitionCache) Get(ctx context.Context, queryID string, index int) (*dataset.Frame, error) {
	data, err := c.client.Get(ctx, c.key(queryID, index)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var frame dataset.Frame
	if err := json.Unmarshal([]byte(data), &frame); err != nil {
		return nil, err
	}

	return &frame, nil
}

// Set stores a partition frame in the cache.
func (c *PartitionCache) Set(ctx context.Context, queryID string, index int, frame *dataset.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.key(queryID, index), data, c.ttl).Err()
}

// Invalidate removes all cached partitions for a query.
func (c *PartitionCache) Invalidate(ctx context.Context, queryID string) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+":"+queryID+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
