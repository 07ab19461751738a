package cache

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) (val string, hit bool, err error)
	Set(ctx context.Context, key string, val string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
