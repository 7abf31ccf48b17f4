// Package image 将文生图服务桥接为 base64 文本
package image

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"taleteller/internal/infrastructure/imagegen"
	apperrors "taleteller/pkg/errors"
	"taleteller/pkg/logger"
	"taleteller/pkg/metrics"
	"taleteller/pkg/tracer"
)

// Bridge 图像生成桥
type Bridge struct {
	gen imagegen.Generator
}

// NewBridge 创建图像生成桥
func NewBridge(gen imagegen.Generator) *Bridge {
	return &Bridge{gen: gen}
}

// GenerateImage 生成图像并返回 base64；上游细节只写日志
func (b *Bridge) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperrors.ErrEmptyPrompt
	}

	ctx, span := tracer.Start(ctx, "image.generate")
	defer span.End()

	provider := b.gen.Name()
	start := time.Now()
	data, err := b.gen.Generate(ctx, prompt)
	metrics.ImageGenerationDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ImageGenerationTotal.WithLabelValues(provider, "error").Inc()
		tracer.Fail(span, err)

		args := []any{"provider", provider, "prompt_runes", len([]rune(prompt))}
		var upErr *imagegen.UpstreamError
		if errors.As(err, &upErr) {
			args = append(args, "status", upErr.StatusCode, "body", upErr.Body)
		}
		logger.Error(ctx, "image generation failed", err, args...)
		return "", apperrors.ErrImageFailed.WithError(err)
	}

	metrics.ImageGenerationTotal.WithLabelValues(provider, "success").Inc()
	metrics.ImageBytes.Observe(float64(len(data)))
	return base64.StdEncoding.EncodeToString(data), nil
}
