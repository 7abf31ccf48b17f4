// Package writing 编排服务端写作助手：语法检查、剧情分支、续写
package writing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"taleteller/internal/config"
	"taleteller/internal/domain/entity"
	llmctx "taleteller/internal/domain/service"
	wfmodel "taleteller/internal/workflow/model"
	wfnode "taleteller/internal/workflow/node"
	apperrors "taleteller/pkg/errors"
	"taleteller/pkg/logger"
	"taleteller/pkg/metrics"
)

// GrammarRunner 语法检查链
type GrammarRunner interface {
	Invoke(ctx context.Context, in *wfmodel.GrammarCheckInput) (*entity.SuggestionSet, error)
}

// ChoicesRunner 分支选项链
type ChoicesRunner interface {
	Invoke(ctx context.Context, in *wfmodel.PlotChoicesInput) ([]entity.Choice, error)
}

// ContinuationRunner 续写链
type ContinuationRunner interface {
	Invoke(ctx context.Context, in *wfmodel.ContinueSceneInput) (string, error)
}

// ResultCache 结果缓存；为 nil 时不缓存
type ResultCache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) (any, error)) ([]byte, bool, error)
}

// Service 写作助手服务
type Service struct {
	grammar      GrammarRunner
	choices      ChoicesRunner
	continuation ContinuationRunner
	cache        ResultCache

	provider        string
	maxContextRunes int
	expectedChoices int
	maxChoices      int
	grammarTTL      time.Duration
}

// NewService 创建写作助手服务
func NewService(cfg *config.Config, grammar GrammarRunner, choices ChoicesRunner, continuation ContinuationRunner, cache ResultCache) *Service {
	return &Service{
		grammar:         grammar,
		choices:         choices,
		continuation:    continuation,
		cache:           cache,
		provider:        cfg.LLM.DefaultProvider,
		maxContextRunes: cfg.LLM.MaxContextRunes,
		expectedChoices: cfg.Writing.ExpectedChoices,
		maxChoices:      cfg.Writing.MaxChoices,
		grammarTTL:      cfg.Writing.GrammarCacheTTL,
	}
}

// upstreamError 标记加载函数中的上游错误，区别于缓存自身的错误
type upstreamError struct{ err error }

func (e *upstreamError) Error() string { return e.err.Error() }
func (e *upstreamError) Unwrap() error { return e.err }

// CheckGrammar 语法检查；启用缓存时相同类型与文本直接返回缓存结果
func (s *Service) CheckGrammar(ctx context.Context, text string, mode entity.Mode) (*entity.SuggestionSet, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrEmptyText
	}
	mode = defaultMode(mode)
	ctx = llmctx.WithMode(ctx, string(mode))
	in := &wfmodel.GrammarCheckInput{Provider: s.provider, Mode: mode, Text: text}

	set, err := s.checkGrammarCached(ctx, in)
	if err != nil {
		record("grammar_check", mode, "error")
		logger.Error(ctx, "grammar check failed", err, "mode", string(mode), "text_runes", len([]rune(text)))
		return nil, apperrors.ErrGrammarFailed.WithError(err)
	}
	record("grammar_check", mode, "success")
	return set, nil
}

func (s *Service) checkGrammarCached(ctx context.Context, in *wfmodel.GrammarCheckInput) (*entity.SuggestionSet, error) {
	if s.cache == nil || s.grammarTTL <= 0 {
		return s.grammar.Invoke(ctx, in)
	}

	data, hit, err := s.cache.GetOrLoad(ctx, GrammarCacheKey(in.Mode, in.Text), s.grammarTTL, func(ctx context.Context) (any, error) {
		set, err := s.grammar.Invoke(ctx, in)
		if err != nil {
			return nil, &upstreamError{err: err}
		}
		return set, nil
	})
	if err != nil {
		var ue *upstreamError
		if errors.As(err, &ue) {
			metrics.GrammarCacheTotal.WithLabelValues("miss").Inc()
			return nil, ue.err
		}
		if ctx.Err() != nil {
			return nil, err
		}
		metrics.GrammarCacheTotal.WithLabelValues("error").Inc()
		logger.Warn(ctx, "grammar cache unavailable, calling model directly", "error", err.Error())
		return s.grammar.Invoke(ctx, in)
	}

	if hit {
		metrics.GrammarCacheTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.GrammarCacheTotal.WithLabelValues("miss").Inc()
	}
	var set entity.SuggestionSet
	if err := json.Unmarshal(data, &set); err != nil {
		metrics.GrammarCacheTotal.WithLabelValues("error").Inc()
		logger.Warn(ctx, "grammar cache entry unreadable, calling model directly", "error", err.Error())
		return s.grammar.Invoke(ctx, in)
	}
	set.Normalize()
	return &set, nil
}

// GrammarCacheKey 缓存键：类型与文本的 sha256
func GrammarCacheKey(mode entity.Mode, text string) string {
	sum := sha256.Sum256([]byte(string(mode) + "\x00" + text))
	return "grammar:" + hex.EncodeToString(sum[:])
}

// GenerateChoices 生成剧情分支选项。
// 丢弃空白选项，最多保留 max_choices 个并重新编号；结果为空视为上游失败。
func (s *Service) GenerateChoices(ctx context.Context, storyContext string, mode entity.Mode, currentScene string) ([]entity.Choice, error) {
	if strings.TrimSpace(storyContext) == "" {
		return nil, apperrors.ErrEmptyStory
	}
	mode = defaultMode(mode)
	ctx = llmctx.WithMode(ctx, string(mode))

	raw, err := s.choices.Invoke(ctx, &wfmodel.PlotChoicesInput{
		Provider:     s.provider,
		Mode:         mode,
		StoryContext: s.trimContext(ctx, storyContext),
		CurrentScene: wfnode.TailByRunes(currentScene, s.maxContextRunes),
		Count:        s.expectedChoices,
	})
	if err == nil {
		raw = entity.NormalizeChoices(raw, s.maxChoices)
		if len(raw) == 0 {
			err = apperrors.ErrUpstreamBadReply.WithDetail("no usable choices")
		}
	}
	if err != nil {
		record("generate_choices", mode, "error")
		logger.Error(ctx, "generate choices failed", err, "mode", string(mode))
		return nil, apperrors.ErrChoicesFailed.WithError(err)
	}

	if len(raw) != s.expectedChoices {
		logger.Debug(ctx, "choice count differs from request", "expected", s.expectedChoices, "got", len(raw))
	}
	metrics.ChoicesReturned.Observe(float64(len(raw)))
	record("generate_choices", mode, "success")
	return raw, nil
}

// ContinueScene 按所选方向续写
func (s *Service) ContinueScene(ctx context.Context, storyContext string, mode entity.Mode, selectedChoice string) (string, error) {
	if strings.TrimSpace(selectedChoice) == "" {
		return "", apperrors.Validation("selectedChoice is required")
	}
	mode = defaultMode(mode)
	ctx = llmctx.WithMode(ctx, string(mode))

	text, err := s.continuation.Invoke(ctx, &wfmodel.ContinueSceneInput{
		Provider:       s.provider,
		Mode:           mode,
		StoryContext:   s.trimContext(ctx, storyContext),
		SelectedChoice: selectedChoice,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = apperrors.ErrUpstreamBadReply.WithDetail("empty continuation")
	}
	if err != nil {
		record("continue_scene", mode, "error")
		logger.Error(ctx, "continue scene failed", err, "mode", string(mode))
		return "", apperrors.ErrContinuationFailed.WithError(err)
	}
	record("continue_scene", mode, "success")
	return text, nil
}

func (s *Service) trimContext(ctx context.Context, storyContext string) string {
	trimmed := wfnode.TailByRunes(storyContext, s.maxContextRunes)
	if len(trimmed) != len(storyContext) {
		logger.Debug(ctx, "story context trimmed", "from_bytes", len(storyContext), "to_bytes", len(trimmed))
	}
	return trimmed
}

func defaultMode(m entity.Mode) entity.Mode {
	if m == "" {
		return entity.DefaultMode
	}
	return m
}

func record(operation string, mode entity.Mode, status string) {
	metrics.WritingRequestsTotal.WithLabelValues(operation, string(mode), status).Inc()
}
