// Package imagegen 提供文生图服务的适配器
package imagegen

import (
	"context"
	"fmt"
	"strings"

	"taleteller/internal/config"
)

// Generator 文生图服务
type Generator interface {
	// Generate 返回图像原始字节
	Generate(ctx context.Context, prompt string) ([]byte, error)
	// Name 提供商名称，用于日志与指标
	Name() string
}

// UpstreamError 上游返回的非成功响应
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// NewGenerator 按配置创建提供商
func NewGenerator(cfg *config.ImageConfig) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "stability":
		return NewStability(cfg.Stability), nil
	case "openai":
		return NewOpenAI(cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("unsupported image provider: %s", cfg.Provider)
	}
}
