package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/cargobooking/config"
	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps flight listings in one hash, a field per view, so a single
// DEL drops every cached view after a capacity change.
type RedisCache struct {
	client     redis.UniversalClient
	flightsTTL time.Duration
	holder     string
}

// releaseScript deletes a lock only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL,
	)
}

func NewRedisCacheWithClient(client redis.UniversalClient, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL, holder: uuid.NewString()}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetFlights returns the cached listing for view, or nil, nil on a miss.
func (c *RedisCache) GetFlights(ctx context.Context, view string) ([]domain.Flight, error) {
	data, err := c.client.HGet(ctx, flightsKey(), view).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, view string, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, flightsKey(), view, payload)
	pipe.Expire(ctx, flightsKey(), c.flightsTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

// AcquireLock takes the named lock for ttl, tagged with this cache's holder
// token. It reports false when another holder has it.
func (c *RedisCache) AcquireLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, lockKey(name), c.holder, ttl).Result()
}

// ReleaseLock drops the named lock if this cache still holds it. A lock that
// expired and was taken by another holder is left alone.
func (c *RedisCache) ReleaseLock(ctx context.Context, name string) error {
	return releaseScript.Run(ctx, c.client, []string{lockKey(name)}, c.holder).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func lockKey(name string) string {
	return "lock:" + name
}
