// Package redis 提供可选的 Redis 缓存与限流实现
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"taleteller/internal/config"
	"taleteller/pkg/tracer"
)

const defaultPingTimeout = 5 * time.Second

// Client Redis 连接；所有键都带配置的前缀
type Client struct {
	rdb    *redis.Client
	prefix string
}

// NewClient 按配置建立连接，Ping 失败时返回错误
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", rdb.Options().Addr, err)
	}
	return New(rdb, cfg.KeyPrefix), nil
}

// New 包装已有连接
func New(rdb *redis.Client, prefix string) *Client {
	return &Client{rdb: rdb, prefix: strings.Trim(strings.TrimSpace(prefix), ":")}
}

// Redis 底层客户端
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// HealthCheck 供 /ready 使用
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "redis.ping")
	defer span.End()

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		tracer.Fail(span, err)
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Key 拼接带前缀的键
func (c *Client) Key(parts ...string) string {
	key := strings.Join(parts, ":")
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// IsNil 是否为键不存在
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
