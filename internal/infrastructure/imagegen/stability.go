package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"taleteller/internal/config"
)

const (
	stabilityCorePath = "/v2beta/stable-image/generate/core"
	// maxErrorBody 错误响应体最多保留的字节数
	maxErrorBody = 4 << 10
)

// Stability Stability AI stable-image core 接口
type Stability struct {
	apiKey       string
	baseURL      string
	outputFormat string
	client       *http.Client
}

// NewStability 创建 Stability 适配器
func NewStability(cfg config.StabilityConfig) *Stability {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.stability.ai"
	}
	format := cfg.OutputFormat
	if format == "" {
		format = "png"
	}
	return &Stability{
		apiKey:       cfg.APIKey,
		baseURL:      base,
		outputFormat: format,
		client:       &http.Client{Timeout: timeout},
	}
}

func (s *Stability) Name() string { return "stability" }

// Generate 以 multipart 表单提交 prompt 与 output_format，响应体即图像
func (s *Stability) Generate(ctx context.Context, prompt string) ([]byte, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("prompt", prompt); err != nil {
		return nil, err
	}
	if err := w.WriteField("output_format", s.outputFormat); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+stabilityCorePath, &body)
	if err != nil {
		return nil, fmt.Errorf("build stability request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "image/*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stability request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{Provider: s.Name(), StatusCode: resp.StatusCode, Body: string(detail)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read stability response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("stability returned an empty image")
	}
	return data, nil
}
