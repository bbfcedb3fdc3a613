// Package cache holds the Redis-backed read caches.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FollowerCache keeps a user's full follower-id list as a Redis list so
// follower pages can be served with a single LRANGE. The list is rebuilt
// from the store on miss and invalidated on any follow-graph change.
type FollowerCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFollowerCache(client *redis.Client, ttl time.Duration) *FollowerCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &FollowerCache{client: client, ttl: ttl}
}

func key(userID string) string { return fmt.Sprintf("followers:index:%s", userID) }

// GetPage returns the cached follower ids in [offset, offset+limit), and
// whether the index exists at all.
func (c *FollowerCache) GetPage(ctx context.Context, userID string, offset, limit int) ([]string, bool, error) {
	k := key(userID)
	exists, err := c.client.Exists(ctx, k).Result()
	if err != nil {
		return nil, false, err
	}
	if exists == 0 {
		return nil, false, nil
	}
	ids, err := c.client.LRange(ctx, k, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

// SetAll replaces the cached index with the full follower-id list.
func (c *FollowerCache) SetAll(ctx context.Context, userID string, ids []string) error {
	k := key(userID)
	pipe := c.client.Pipeline()
	pipe.Del(ctx, k)
	if len(ids) > 0 {
		args := make([]interface{}, len(ids))
		for i, id := range ids {
			args[i] = id
		}
		pipe.RPush(ctx, k, args...)
		pipe.Expire(ctx, k, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate drops the index for userID; the next read rebuilds it.
func (c *FollowerCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, key(userID)).Err()
}
