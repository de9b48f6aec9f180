package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Attempts 以 Redis 计数失败次数，窗口从第一次失败开始计算
type Attempts struct {
	rdb    *redis.Client
	max    int
	window time.Duration
	prefix string
}

func NewAttempts(rdb *redis.Client, max int, window time.Duration) *Attempts {
	return &Attempts{rdb: rdb, max: max, window: window, prefix: "handover:attempts"}
}

func (a *Attempts) key(k string) string { return fmt.Sprintf("%s:%s", a.prefix, k) }

// Blocked reports whether k has used up its failures. max <= 0 disables it.
func (a *Attempts) Blocked(ctx context.Context, k string) (bool, error) {
	if a.max <= 0 {
		return false, nil
	}
	n, err := a.rdb.Get(ctx, a.key(k)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= a.max, nil
}

func (a *Attempts) Fail(ctx context.Context, k string) error {
	n, err := a.rdb.Incr(ctx, a.key(k)).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		return a.rdb.Expire(ctx, a.key(k), a.window).Err()
	}
	return nil
}

func (a *Attempts) Reset(ctx context.Context, k string) error {
	return a.rdb.Del(ctx, a.key(k)).Err()
}
