package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"taleteller/pkg/logger"
	"taleteller/pkg/tracer"
)

// Cache 读穿透 JSON 缓存
type Cache struct {
	client *Client
	group  singleflight.Group
}

func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// GetOrLoad 命中时返回缓存字节；未命中时调用 loader，把结果编码为 JSON 写回并返回。
// 同键并发未命中只调用一次 loader。调用方取消时立即返回 ctx.Err()，加载继续并服务其它等待者。
// 读缓存出错时返回错误，由调用方决定是否降级；写回失败只记录日志。
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) (any, error)) ([]byte, bool, error) {
	ctx, span := tracer.Start(ctx, "cache.get_or_load")
	defer span.End()

	full := c.client.Key(key)
	data, err := c.client.rdb.Get(ctx, full).Bytes()
	switch {
	case err == nil:
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return data, true, nil
	case !IsNil(err):
		tracer.Fail(span, err)
		return nil, false, err
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	// loader 与回写脱离调用方的取消：同键的其它等待者共享这次加载
	flight := c.group.DoChan(full, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		loaded, err := loader(lctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(loaded)
		if err != nil {
			return nil, fmt.Errorf("encode cache entry: %w", err)
		}
		if err := c.client.rdb.Set(lctx, full, encoded, ttl).Err(); err != nil {
			logger.Warn(lctx, "cache write failed", "key", key, "error", err.Error())
		}
		return encoded, nil
	})

	var res singleflight.Result
	select {
	case res = <-flight:
	case <-ctx.Done():
		tracer.Fail(span, ctx.Err())
		return nil, false, ctx.Err()
	}
	span.SetAttributes(attribute.Bool("cache.shared", res.Shared))
	if res.Err != nil {
		tracer.Fail(span, res.Err)
		return nil, false, res.Err
	}
	return res.Val.([]byte), false, nil
}
