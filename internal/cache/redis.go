package cache

import (
	"context"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Redis es el driver distribuido, para producción.
type Redis struct {
	c      *rdb.Client
	prefix string
}

// NewRedis crea un cliente Redis según la configuración.
func NewRedis(cfg Config) (*Redis, error) {
	client := rdb.NewClient(&rdb.Options{Addr: cfg.Addr, DB: cfg.DB})
	return &Redis{c: client, prefix: cfg.Prefix}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.c.Get(ctx, r.prefix+key).Result()
	if err == rdb.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.c.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.c.Del(ctx, r.prefix+key).Err()
}

func (r *Redis) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	k := r.prefix + key
	pipe := r.c.TxPipeline()
	incr := pipe.Incr(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	// set expiry on first hit
	if incr.Val() == 1 && ttl > 0 {
		_ = r.c.Expire(ctx, k, ttl).Err()
	}
	return incr.Val(), nil
}

func (r *Redis) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }
func (r *Redis) Close() error                   { return r.c.Close() }
