// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"taleteller/internal/application/writing"
	"taleteller/internal/config"
	"taleteller/internal/infrastructure/imagegen"
	"taleteller/internal/infrastructure/llm"
	"taleteller/internal/infrastructure/persistence/redis"
	"taleteller/internal/interfaces/http/handler"
	"taleteller/internal/interfaces/http/middleware"
	"taleteller/pkg/logger"
)

// ProvideRedisClientOptional 提供可选 Redis 客户端；未启用或不可达时返回 nil，不阻塞启动
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(ctx, &cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, cache and rate limit disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideCacheOptional 结果缓存，Redis 未启用时为 nil
func ProvideCacheOptional(client *redis.Client) *redis.Cache {
	if client == nil {
		return nil
	}
	return redis.NewCache(client)
}

// ProvideResultCache 避免把 nil 指针装进接口
func ProvideResultCache(cache *redis.Cache) writing.ResultCache {
	if cache == nil {
		return nil
	}
	return cache
}

// ProvideRateLimiter 限流器，Redis 未启用时为 nil
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideImageGenerator 按配置选择图像提供商
func ProvideImageGenerator(cfg *config.Config) (imagegen.Generator, error) {
	return imagegen.NewGenerator(&cfg.Image)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, client *redis.Client, factory *llm.EinoFactory) *handler.HealthHandler {
	var pinger handler.Pinger
	if client != nil {
		pinger = client
	}
	return handler.NewHealthHandler(cfg.App.Version, pinger, factory)
}
