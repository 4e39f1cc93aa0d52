package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/report"
)

// RedisCache keeps rendered PDFs in Redis. A nil client disables caching.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ report.Cache = (*RedisCache)(nil)

// Connect pings conf.Redis.Addr. It returns a nil client, and logs why, when no usable server is configured.
func Connect(conf *core.Config, logger core.Logger) *redis.Client {
	if conf.Redis.Addr == "" {
		logger.Warn("redis address not set, pdf caching disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("connecting to redis, pdf caching disabled", err)
		_ = client.Close()
		return nil
	}
	return client
}

func NewRedisCache(client *redis.Client, conf *core.Config) *RedisCache {
	return &RedisCache{client: client, ttl: conf.Redis.TTL}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrap(err, "getting cached value")
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, val []byte) error {
	if c.client == nil {
		return nil
	}
	return errors.Wrap(c.client.Set(ctx, key, val, c.ttl).Err(), "caching value")
}
