package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// Cached flight pages are tracked in a set so a ledger write can drop them
// all without a SCAN.
const flightPagesKey = "cache:flights:pages"

// flightsGenerationKey is bumped on every invalidation and is part of each
// page key. A page read from the store before an invalidation is written
// under the old generation and never served.
const flightsGenerationKey = "cache:flights:generation"

const (
	opGet    = "get"
	opSet    = "set"
	opDelete = "delete"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// FlightsGeneration returns the current page generation. It must be read
// before the store query whose result is passed to SetFlights.
func (c *RedisCache) FlightsGeneration(ctx context.Context) (int64, error) {
	start := time.Now()
	defer func() { metrics.ObserveRedisDuration(opGet, time.Since(start)) }()

	gen, err := c.client.Get(ctx, flightsGenerationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		metrics.IncRedisError(opGet)
		return 0, err
	}
	return gen, nil
}

// GetFlights returns a cached page. A miss is reported as (nil, false, nil).
func (c *RedisCache) GetFlights(ctx context.Context, generation int64, skip, limit int) ([]domain.Flight, bool, error) {
	start := time.Now()
	defer func() { metrics.ObserveRedisDuration(opGet, time.Since(start)) }()

	data, err := c.client.Get(ctx, flightsPageKey(generation, skip, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.IncCacheMiss()
			return nil, false, nil
		}
		metrics.IncRedisError(opGet)
		return nil, false, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, false, err
	}
	metrics.IncCacheHit()
	return flights, true, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, generation int64, skip, limit int, flights []domain.Flight) error {
	start := time.Now()
	defer func() { metrics.ObserveRedisDuration(opSet, time.Since(start)) }()

	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}

	key := flightsPageKey(generation, skip, limit)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, payload, c.flightsTTL)
	pipe.SAdd(ctx, flightPagesKey, key)
	pipe.Expire(ctx, flightPagesKey, c.flightsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.IncRedisError(opSet)
		return err
	}
	return nil
}

// InvalidateFlights moves readers to a new generation and drops every page
// cached so far.
func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.ObserveRedisDuration(opDelete, time.Since(start)) }()

	if err := c.client.Incr(ctx, flightsGenerationKey).Err(); err != nil {
		metrics.IncRedisError(opDelete)
		return err
	}

	keys, err := c.client.SMembers(ctx, flightPagesKey).Result()
	if err != nil {
		metrics.IncRedisError(opDelete)
		return err
	}
	keys = append(keys, flightPagesKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		metrics.IncRedisError(opDelete)
		return err
	}
	return nil
}

func flightsPageKey(generation int64, skip, limit int) string {
	return fmt.Sprintf("cache:flights:gen:%d:skip:%d:limit:%d", generation, skip, limit)
}
