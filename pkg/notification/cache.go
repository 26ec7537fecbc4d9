package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const unreadTTL = 5 * time.Minute

// RedisCache stores unread counters under notification:unread:<userID>.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func unreadKey(userID int64) string {
	return fmt.Sprintf("notification:unread:%d", userID)
}

func (c *RedisCache) GetUnread(ctx context.Context, userID int64) (int64, bool, error) {
	count, err := c.client.Get(ctx, unreadKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read unread cache: %w", err)
	}
	return count, true, nil
}

func (c *RedisCache) SetUnread(ctx context.Context, userID, count int64) error {
	return c.client.Set(ctx, unreadKey(userID), count, unreadTTL).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, unreadKey(userID)).Err()
}
