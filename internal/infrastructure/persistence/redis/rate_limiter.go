package redis

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"taleteller/pkg/tracer"
)

// slidingWindow 在一次往返内完成清理、计数与记录。
// KEYS[1] 窗口键；ARGV: now_ms, window_ms, limit, member
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
if redis.call('ZCARD', key) >= limit then
  return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

// RateLimiter 滑动窗口限流器
type RateLimiter struct {
	client *Client
	seq    atomic.Uint64
	now    func() time.Time
}

func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

// Allow 窗口内请求数未达 limit 时记录本次请求并放行
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ctx, span := tracer.Start(ctx, "ratelimit.allow")
	defer span.End()

	now := l.now().UnixMilli()
	member := fmt.Sprintf("%d-%d", now, l.seq.Add(1))
	n, err := slidingWindow.Run(ctx, l.client.rdb,
		[]string{l.client.Key(key)},
		now, window.Milliseconds(), limit, member,
	).Int()
	if err != nil {
		tracer.Fail(span, err)
		return false, err
	}

	allowed := n == 1
	span.SetAttributes(
		attribute.Int("ratelimit.limit", limit),
		attribute.Bool("ratelimit.allowed", allowed),
	)
	return allowed, nil
}

// BuildRateLimitKey 按客户端与路由分桶
func BuildRateLimitKey(clientIP, route string) string {
	return "ratelimit:" + clientIP + ":" + route
}
