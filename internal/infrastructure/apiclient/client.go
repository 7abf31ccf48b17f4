// Package apiclient 调用 TaleTeller 后端 /api 接口，供 CLI 会话使用
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"taleteller/internal/domain/entity"
	"taleteller/internal/interfaces/http/dto"
	"taleteller/internal/interfaces/http/middleware"
	apperrors "taleteller/pkg/errors"
	"taleteller/pkg/logger"
)

// maxResponseBytes 响应体上限，插图的 base64 约为原图的 4/3
const maxResponseBytes = 32 << 20

const defaultTimeout = 2 * time.Minute

// Client 后端 HTTP 客户端
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	sessionID string
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client；与 WithTimeout 同用时只修改其副本
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout 单次请求超时，与选项顺序无关
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithSessionID 随请求发送会话 ID，便于服务端日志关联
func WithSessionID(id string) Option {
	return func(c *Client) { c.sessionID = id }
}

// New 创建客户端
func New(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	switch {
	case c.http == nil:
		timeout := c.timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	case c.timeout > 0:
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// CheckGrammar POST /api/grammar-check
func (c *Client) CheckGrammar(ctx context.Context, text string, mode entity.Mode) (*entity.SuggestionSet, error) {
	var out dto.GrammarCheckResponse
	if err := c.post(ctx, "/api/grammar-check", dto.GrammarCheckRequest{Text: text, Mode: string(mode)}, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

// GenerateChoices POST /api/generate-choices
func (c *Client) GenerateChoices(ctx context.Context, storyContext string, mode entity.Mode, currentScene string) ([]entity.Choice, error) {
	var out dto.GenerateChoicesResponse
	err := c.post(ctx, "/api/generate-choices", dto.GenerateChoicesRequest{
		StoryContext: storyContext,
		Mode:         string(mode),
		CurrentScene: currentScene,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Choices, nil
}

// ContinueScene POST /api/continue-scene
func (c *Client) ContinueScene(ctx context.Context, storyContext string, mode entity.Mode, selectedChoice string) (string, error) {
	var out dto.ContinueSceneResponse
	err := c.post(ctx, "/api/continue-scene", dto.ContinueSceneRequest{
		StoryContext:   storyContext,
		Mode:           string(mode),
		SelectedChoice: selectedChoice,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Continuation, nil
}

// GenerateImage POST /api/generate-image
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	var out dto.GenerateImageResponse
	if err := c.post(ctx, "/api/generate-image", dto.GenerateImageRequest{Prompt: prompt}, &out); err != nil {
		return "", err
	}
	return out.Image, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "failed to encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "failed to build request")
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.RequestIDHeader, requestID)
	if c.sessionID != "" {
		req.Header.Set(middleware.SessionIDHeader, c.sessionID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Upstream(err, "backend unreachable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperrors.Upstream(err, "failed to read backend response")
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(ctx, path, requestID, resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.ErrUpstreamBadReply.WithError(fmt.Errorf("decode %s response: %w", path, err))
	}
	return nil
}

// statusError 将非 200 响应映射为 AppError，保留服务端的 error 消息
func statusError(ctx context.Context, path, requestID string, status int, body []byte) error {
	var er dto.ErrorResponse
	_ = json.Unmarshal(body, &er)
	msg := strings.TrimSpace(er.Error)
	if msg == "" {
		msg = http.StatusText(status)
	}
	logger.Debug(ctx, "backend returned error", "path", path, "status", status, "request_id", requestID, "error", msg)

	cause := fmt.Errorf("%s: status %d: %s", path, status, msg)
	switch {
	case status == http.StatusTooManyRequests:
		return apperrors.ErrTooManyRequests.WithError(cause)
	case status >= 400 && status < 500:
		return apperrors.Validation(msg)
	default:
		return apperrors.Upstream(cause, msg)
	}
}
