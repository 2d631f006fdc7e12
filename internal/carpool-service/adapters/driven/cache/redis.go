package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/config"
)

const keyPrefix = "carpool:unread:"

// UnreadCache keeps per-recipient unread counters in Redis. Losing a key
// is harmless: the notifications store recomputes the count on a miss.
type UnreadCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(cfg *config.Redisconfig) ports.IUnreadCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})
	return &UnreadCache{rdb: rdb, ttl: 24 * time.Hour}
}

func (c *UnreadCache) Incr(ctx context.Context, userID string) error {
	key := keyPrefix + userID
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *UnreadCache) Set(ctx context.Context, userID string, n int64) error {
	return c.rdb.Set(ctx, keyPrefix+userID, n, c.ttl).Err()
}

func (c *UnreadCache) Clear(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, keyPrefix+userID).Err()
}

func (c *UnreadCache) Get(ctx context.Context, userID string) (int64, bool, error) {
	n, err := c.rdb.Get(ctx, keyPrefix+userID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}
