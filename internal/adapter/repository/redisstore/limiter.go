package redisstore

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// AttemptLimiter counts attempts per subject in a fixed window.
type AttemptLimiter struct {
	rdb    redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

func NewAttemptLimiter(rdb redis.UniversalClient, prefix string, limit int, window time.Duration) *AttemptLimiter {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &AttemptLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

// Allow records one attempt. When the limit is exceeded it returns false and
// the seconds until the window resets. A nil or unconfigured limiter allows everything.
func (l *AttemptLimiter) Allow(ctx context.Context, subject string) (bool, int, error) {
	if l == nil || l.rdb == nil || l.limit <= 0 || l.window <= 0 {
		return true, 0, nil
	}
	subject = strings.ToLower(strings.TrimSpace(subject))
	if subject == "" {
		return true, 0, nil
	}

	windowMs := l.window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}
	key := fmt.Sprintf("%s:%s", l.prefix, subject)
	raw, err := fixedWindowScript.Run(ctx, l.rdb, []string{key}, windowMs).Result()
	if err != nil {
		return false, 0, err
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected limiter response shape: %T", raw)
	}
	count, ok := values[0].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected limiter count type: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok || ttlMs < 0 {
		ttlMs = windowMs
	}

	if int(count) <= l.limit {
		return true, 0, nil
	}
	retryAfter := int(math.Ceil(float64(ttlMs) / 1000.0))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter, nil
}

// Reset clears the counter, e.g. after a successful login.
func (l *AttemptLimiter) Reset(ctx context.Context, subject string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	subject = strings.ToLower(strings.TrimSpace(subject))
	if subject == "" {
		return nil
	}
	return l.rdb.Del(ctx, fmt.Sprintf("%s:%s", l.prefix, subject)).Err()
}
