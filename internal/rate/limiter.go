// Package rate provides a redis-backed fixed-window rate limiter for the
// public signup endpoint.
package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript atomically increments the window counter and sets its
// expiry on first use. Separate GET and INCR calls would race under
// concurrent requests.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`

// Limiter counts requests per key in fixed windows. A nil *Limiter allows
// everything, so callers can leave rate limiting unconfigured.
type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	script *redis.Script
}

// NewLimiter creates a limiter allowing limit requests per window per key.
func NewLimiter(rdb *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		script: redis.NewScript(fixedWindowScript),
	}
}

// Allow reports whether the caller identified by key may proceed within the
// current window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil {
		return true, nil
	}
	redisKey := "rate:subscribe:" + key
	n, err := l.script.Run(ctx, l.rdb, []string{redisKey}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("run rate limit script: %w", err)
	}
	return n <= int64(l.limit), nil
}
