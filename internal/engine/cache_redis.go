package engine

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"logiroute/internal/model"
)

// RedisCache shares route results across instances. Failures degrade to
// a cache miss; the route is simply recomputed.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisCache{rdb: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (model.RouteResult, bool) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("redis cache get %s: %v", key, err)
		}
		return model.RouteResult{}, false
	}
	var res model.RouteResult
	if err := json.Unmarshal(b, &res); err != nil {
		return model.RouteResult{}, false
	}
	return res, true
}

func (c *RedisCache) Set(ctx context.Context, key string, res model.RouteResult, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		log.Printf("redis cache set %s: %v", key, err)
	}
}
