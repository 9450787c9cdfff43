package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis builds the shared client behind the price-lookup cache and the
// alert job queue. The pool leaves headroom for the worker pool's blocking
// BRPOP consumers on top of request-path lookups.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opts.PoolSize = 20
	opts.MinIdleConns = 2

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}
