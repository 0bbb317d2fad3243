package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Eldesouky97/home-craft/internal/domain"

	"github.com/go-redis/redis/v8"
)

const (
	statsPrefix = "orders:stats:"
	// statsGenKey is bumped on every invalidation. Aggregates are stored
	// under the generation they were computed in, so a read that raced a
	// write can only fill a generation nobody asks for anymore.
	statsGenKey = "orders:statsgen"
)

// OrderCache is a read-through cache for materialised order views and
// per-seller statistics. Misses return (nil, nil).
type OrderCache struct {
	client   *redis.Client
	orderTTL time.Duration
	statsTTL time.Duration
}

func NewOrderCache(client *redis.Client, orderTTL, statsTTL time.Duration) *OrderCache {
	return &OrderCache{client: client, orderTTL: orderTTL, statsTTL: statsTTL}
}

func orderKey(id uint64) string     { return fmt.Sprintf("order:%d", id) }
func statsKey(gen int64, ownerID uint64) string {
	return fmt.Sprintf("%s%d:%d", statsPrefix, gen, ownerID)
}

func (c *OrderCache) GetOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	ok, err := c.get(ctx, orderKey(id), &o)
	if err != nil || !ok {
		return nil, err
	}
	return &o, nil
}

func (c *OrderCache) SetOrder(ctx context.Context, o *domain.Order) error {
	return c.set(ctx, orderKey(o.ID), o, c.orderTTL)
}

func (c *OrderCache) InvalidateOrder(ctx context.Context, id uint64) error {
	return c.client.Del(ctx, orderKey(id)).Err()
}

// StatsGeneration returns the current stats generation, 0 before the first
// invalidation.
func (c *OrderCache) StatsGeneration(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, statsGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *OrderCache) GetStats(ctx context.Context, gen int64, ownerID uint64) (*domain.OrderStats, error) {
	var s domain.OrderStats
	ok, err := c.get(ctx, statsKey(gen, ownerID), &s)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

func (c *OrderCache) SetStats(ctx context.Context, gen int64, ownerID uint64, s *domain.OrderStats) error {
	return c.set(ctx, statsKey(gen, ownerID), s, c.statsTTL)
}

// InvalidateStats starts a new generation and drops every cached seller
// aggregate. An order can touch several sellers, so the affected keys are
// not known up front.
func (c *OrderCache) InvalidateStats(ctx context.Context) error {
	if err := c.client.Incr(ctx, statsGenKey).Err(); err != nil {
		return err
	}
	iter := c.client.Scan(ctx, 0, statsPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *OrderCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *OrderCache) get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *OrderCache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
