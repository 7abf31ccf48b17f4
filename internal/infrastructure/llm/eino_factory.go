// Package llm 提供基于 Eino 的 ChatModel 工厂
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"taleteller/internal/config"
)

// EinoFactory 按提供商名惰性创建并复用 ChatModel
type EinoFactory struct {
	cfg *config.LLMConfig

	mu      sync.Mutex
	entries map[string]*modelEntry
}

type modelEntry struct {
	once  sync.Once
	model model.BaseChatModel
	err   error
}

// NewEinoFactory 创建工厂；不建立任何连接
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{cfg: &cfg.LLM, entries: make(map[string]*modelEntry)}
}

// Get 返回指定提供商的 ChatModel，名称为空时使用默认提供商
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	name, pc, err := f.provider(name)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	e, ok := f.entries[name]
	if !ok {
		e = &modelEntry{}
		f.entries[name] = e
	}
	f.mu.Unlock()

	e.once.Do(func() {
		e.model, e.err = newChatModel(ctx, pc)
		if e.err != nil {
			e.err = fmt.Errorf("create chat model %s: %w", name, e.err)
		}
	})
	return e.model, e.err
}

// Check 校验默认提供商配置是否完整（不发起网络请求），供 /ready 使用
func (f *EinoFactory) Check(_ context.Context) error {
	name, pc, err := f.provider("")
	if err != nil {
		return err
	}
	switch {
	case strings.TrimSpace(pc.APIKey) == "":
		return fmt.Errorf("provider %s has no api key", name)
	case strings.TrimSpace(pc.Model) == "":
		return fmt.Errorf("provider %s has no model", name)
	}
	return nil
}

// DefaultProvider 默认提供商名称
func (f *EinoFactory) DefaultProvider() string {
	return f.cfg.DefaultProvider
}

func (f *EinoFactory) provider(name string) (string, config.ProviderConfig, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = f.cfg.DefaultProvider
	}
	pc, ok := f.cfg.Providers[name]
	if !ok {
		return name, pc, fmt.Errorf("llm provider %q is not configured", name)
	}
	return name, pc, nil
}

// newChatModel 零值的 max_tokens / temperature 交给服务端默认
func newChatModel(ctx context.Context, pc config.ProviderConfig) (model.BaseChatModel, error) {
	mc := &openai.ChatModelConfig{
		APIKey:  pc.APIKey,
		BaseURL: pc.BaseURL,
		Model:   pc.Model,
		Timeout: pc.Timeout,
	}
	if pc.MaxTokens > 0 {
		n := pc.MaxTokens
		mc.MaxTokens = &n
	}
	if pc.Temperature > 0 {
		t := float32(pc.Temperature)
		mc.Temperature = &t
	}
	return openai.NewChatModel(ctx, mc)
}
