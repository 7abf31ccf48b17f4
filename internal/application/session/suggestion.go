package session

import (
	"context"
	"strings"

	"taleteller/internal/domain/entity"
	apperrors "taleteller/pkg/errors"
	"taleteller/pkg/logger"
)

// CheckGrammar 提交当前输入做语法检查，阻塞至上游返回。
// 失败时输入保持不变；检查期间会话被重置、提交或建议被关闭时结果作废。
func (s *Session) CheckGrammar(ctx context.Context) (*entity.SuggestionSet, error) {
	s.mu.Lock()
	if err := s.requireActive(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	text := s.st.input
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return nil, apperrors.ErrEmptyText
	}
	if s.st.suggestion.loading {
		s.mu.Unlock()
		return nil, apperrors.ErrBusy
	}
	s.st.suggestion.loading = true
	s.st.suggestion.gen++
	t := ticket{epoch: s.epoch, gen: s.st.suggestion.gen}
	mode := s.st.mode
	s.mu.Unlock()

	ctx = s.LogContext(ctx)
	set, err := s.assistant.CheckGrammar(ctx, text, mode)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(t, s.st.suggestion.gen) {
		logger.Debug(ctx, "grammar check result discarded")
		return nil, apperrors.ErrStaleResponse
	}
	s.st.suggestion.loading = false
	if err != nil {
		logger.Warn(ctx, "grammar check failed", "error", err.Error())
		return nil, apperrors.ErrGrammarFailed.WithError(err)
	}
	if set == nil {
		set = &entity.SuggestionSet{}
	}
	set.Normalize()
	s.st.suggestion.set = set
	cp := *set
	return &cp, nil
}

// Accept 用改写文本替换输入并清除建议；没有改写文本时仅清除建议
func (s *Session) Accept() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.st.suggestion.set
	if set == nil {
		return s.st.input, apperrors.ErrWrongState.WithDetail("no suggestions to accept")
	}
	if set.Acceptable() {
		s.st.input = set.ImprovedVersion
	}
	s.clearSuggestion()
	return s.st.input, nil
}

// Dismiss 丢弃建议，输入保持不变
func (s *Session) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSuggestion()
}

// clearSuggestion 调用方持锁；进行中的检查结果随之作废
func (s *Session) clearSuggestion() {
	if s.st.suggestion.loading {
		s.st.suggestion.gen++
		s.st.suggestion.loading = false
	}
	s.st.suggestion.set = nil
}
