//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"taleteller/internal/application/image"
	"taleteller/internal/application/writing"
	"taleteller/internal/config"
	"taleteller/internal/infrastructure/llm"
	"taleteller/internal/interfaces/http/handler"
	"taleteller/internal/interfaces/http/router"
	"taleteller/internal/workflow/chain"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RedisSet,
		LLMSet,
		WritingSet,
		ImageSet,
		RouterSet,
	)
	return nil, nil, nil
}

// RedisSet 可选 Redis：缓存与限流
var RedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	ProvideCacheOptional,
	ProvideResultCache,
	ProvideRateLimiter,
)

// LLMSet 模型工厂与三条提示链
var LLMSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(chain.ModelFactory), new(*llm.EinoFactory)),
	chain.NewGrammarChain,
	chain.NewChoicesChain,
	chain.NewContinuationChain,
)

// WritingSet 写作助手服务
var WritingSet = wire.NewSet(
	wire.Bind(new(writing.GrammarRunner), new(*chain.GrammarChain)),
	wire.Bind(new(writing.ChoicesRunner), new(*chain.ChoicesChain)),
	wire.Bind(new(writing.ContinuationRunner), new(*chain.ContinuationChain)),
	writing.NewService,
)

// ImageSet 图像生成桥
var ImageSet = wire.NewSet(
	ProvideImageGenerator,
	image.NewBridge,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	wire.Bind(new(handler.WritingService), new(*writing.Service)),
	handler.NewWritingHandler,
	wire.Bind(new(handler.ImageGenerator), new(*image.Bridge)),
	handler.NewImageHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
