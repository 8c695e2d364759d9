package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces limiter keys
const DefaultRedisPrefix = "hotel:ratelimit:"

// fixedWindowScript increments the counter and starts the window on the
// first hit. A key left without TTL is given one so it cannot live forever.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter is a fixed-window limiter shared by every server instance
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	clock  clock.Clock
}

// NewRedisLimiter creates a RedisLimiter on a shared client
func NewRedisLimiter(client redis.Scripter, prefix string, c clock.Clock) *RedisLimiter {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if c == nil {
		c = clock.New()
	}
	return &RedisLimiter{client: client, prefix: prefix, clock: c}
}

// Allow counts one request for key under rule.
// The window length is part of the key so changing a rule starts fresh.
func (l *RedisLimiter) Allow(ctx context.Context, key string, rule Rule) (Result, error) {
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, rule.Window.Milliseconds())

	vals, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, rule.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit counter: %w", err)
	}
	if len(vals) != 2 {
		return Result{}, fmt.Errorf("rate limit counter: unexpected reply %v", vals)
	}

	count, ttl := int(vals[0]), time.Duration(vals[1])*time.Millisecond
	res := Result{
		Success:   count <= rule.MaxRequests,
		Limit:     rule.MaxRequests,
		Remaining: remaining(rule.MaxRequests, count),
		ResetAt:   l.clock.Now().Add(ttl),
	}
	if !res.Success {
		res.RetryAfter = ttl
	}
	return res, nil
}

var _ Limiter = (*RedisLimiter)(nil)
