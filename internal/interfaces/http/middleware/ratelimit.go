package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"taleteller/internal/interfaces/http/dto"
	"taleteller/pkg/logger"
	"taleteller/pkg/metrics"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool
	// Limit 每个窗口允许的请求数
	Limit  int
	Window time.Duration
}

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// KeyFunc 生成限流键
type KeyFunc func(clientIP, path string) string

// RateLimit 按客户端 IP 与路由限流；限流器故障时放行
func RateLimit(cfg RateLimitConfig, limiter RateLimiter, key KeyFunc) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	if cfg.Limit <= 0 {
		cfg.Limit = 60
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		allowed, err := limiter.Allow(c.Request.Context(), key(c.ClientIP(), path), cfg.Limit, cfg.Window)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable, allowing request", "error", err.Error())
			c.Next()
			return
		}
		if !allowed {
			metrics.RateLimitedTotal.WithLabelValues(path).Inc()
			dto.TooManyRequests(c)
			return
		}

		c.Next()
	}
}
