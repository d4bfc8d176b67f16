package interceptors

import (
	"context"
	"time"

	"github.com/go-redis/redis_rate/v10"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// LimitResult is the outcome of a single rate limit check
type LimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

// Limiter allows up to perSecond requests per second for a key
type Limiter interface {
	Allow(ctx context.Context, key string, perSecond int) (*LimitResult, error)
}

// RedisLimiter shares limits between server instances
type RedisLimiter struct {
	limiter *redis_rate.Limiter
}

func NewRedisLimiter(limiter *redis_rate.Limiter) *RedisLimiter {
	return &RedisLimiter{limiter: limiter}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string, perSecond int) (*LimitResult, error) {
	result, err := rl.limiter.Allow(ctx, key, redis_rate.PerSecond(perSecond))
	if err != nil {
		return nil, err
	}
	return &LimitResult{
		Allowed:    result.Allowed > 0,
		Limit:      result.Limit.Rate,
		Remaining:  result.Remaining,
		ResetAfter: result.ResetAfter,
	}, nil
}

// MemoryLimiter keeps a token bucket per key for the most recent keys (single instance only)
type MemoryLimiter struct {
	cache *lru.Cache[string, *rate.Limiter]
}

func NewMemoryLimiter(size int) *MemoryLimiter {
	cache, cErr := lru.New[string, *rate.Limiter](size)
	if cErr != nil {
		panic(cErr)
	}
	return &MemoryLimiter{cache: cache}
}

func (ml *MemoryLimiter) Allow(ctx context.Context, key string, perSecond int) (*LimitResult, error) {
	rl, ok := ml.cache.Get(key)
	if !ok {
		rl = rate.NewLimiter(rate.Limit(perSecond), perSecond)
		ml.cache.Add(key, rl)
	}
	allowed := rl.Allow()
	remaining := int(rl.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return &LimitResult{
		Allowed:    allowed,
		Limit:      perSecond,
		Remaining:  remaining,
		ResetAfter: time.Second / time.Duration(perSecond),
	}, nil
}
