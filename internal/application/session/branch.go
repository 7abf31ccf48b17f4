package session

import (
	"context"

	"taleteller/internal/domain/entity"
	apperrors "taleteller/pkg/errors"
	"taleteller/pkg/logger"
)

// Phase 剧情分支工作流状态
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequestingChoices
	PhaseChoicesReady
	PhaseRequestingContinuation
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequestingChoices:
		return "requesting_choices"
	case PhaseChoicesReady:
		return "choices_ready"
	case PhaseRequestingContinuation:
		return "requesting_continuation"
	default:
		return "unknown"
	}
}

// Busy 是否有分支请求在途
func (p Phase) Busy() bool {
	return p == PhaseRequestingChoices || p == PhaseRequestingContinuation
}

// Phase 当前分支状态
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.branch.phase
}

// RequestChoices 请求剧情分支选项。故事为空时直接失败且不发起请求；
// 上游失败回到 Idle。已有选项时重新请求会替换整批选项。
func (s *Session) RequestChoices(ctx context.Context) ([]entity.Choice, error) {
	s.mu.Lock()
	if err := s.requireActive(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.st.story.Empty() {
		s.mu.Unlock()
		return nil, apperrors.ErrEmptyStory
	}
	if s.st.branch.phase.Busy() {
		s.mu.Unlock()
		return nil, apperrors.ErrBusy
	}
	s.st.branch.phase = PhaseRequestingChoices
	s.st.branch.choices = nil
	s.st.branch.gen++
	t := ticket{epoch: s.epoch, gen: s.st.branch.gen}
	storyContext := s.st.story.RenderContext()
	current := s.st.story.Current()
	mode := s.st.mode
	s.mu.Unlock()

	ctx = s.LogContext(ctx)
	choices, err := s.assistant.GenerateChoices(ctx, storyContext, mode, current)
	if err == nil {
		choices = entity.NormalizeChoices(choices, 0)
		if len(choices) == 0 {
			err = apperrors.ErrUpstreamBadReply.WithDetail("no usable choices")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(t, s.st.branch.gen) {
		logger.Debug(ctx, "choices discarded")
		return nil, apperrors.ErrStaleResponse
	}
	if err != nil {
		logger.Warn(ctx, "generate choices failed", "error", err.Error())
		s.st.branch = branchState{phase: PhaseIdle, gen: s.st.branch.gen}
		return nil, apperrors.ErrChoicesFailed.WithError(err)
	}
	s.st.branch.phase = PhaseChoicesReady
	s.st.branch.choices = choices
	return append([]entity.Choice(nil), choices...), nil
}

// SelectChoice 以选项描述请求续写，成功后追加为新场景并回到 Idle；
// 失败时回到 ChoicesReady，选项仍可再次选择
func (s *Session) SelectChoice(ctx context.Context, id int) (entity.Scene, error) {
	s.mu.Lock()
	if err := s.requireActive(); err != nil {
		s.mu.Unlock()
		return entity.Scene{}, err
	}
	switch s.st.branch.phase {
	case PhaseChoicesReady:
	case PhaseRequestingChoices, PhaseRequestingContinuation:
		s.mu.Unlock()
		return entity.Scene{}, apperrors.ErrBusy
	default:
		s.mu.Unlock()
		return entity.Scene{}, apperrors.ErrWrongState.WithDetail("no choices to select from")
	}
	choice, ok := entity.FindChoice(s.st.branch.choices, id)
	if !ok {
		s.mu.Unlock()
		return entity.Scene{}, apperrors.ErrChoiceMissing
	}
	s.st.branch.phase = PhaseRequestingContinuation
	s.st.branch.gen++
	t := ticket{epoch: s.epoch, gen: s.st.branch.gen}
	storyContext := s.st.story.RenderContext()
	mode := s.st.mode
	s.mu.Unlock()

	ctx = s.LogContext(ctx)
	text, err := s.assistant.ContinueScene(ctx, storyContext, mode, choice.Description)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(t, s.st.branch.gen) {
		logger.Debug(ctx, "continuation discarded", "choice_id", id)
		return entity.Scene{}, apperrors.ErrStaleResponse
	}
	var scene entity.Scene
	if err == nil {
		scene, err = s.st.story.AppendFromChoice(text, choice.Title)
	}
	if err != nil {
		logger.Warn(ctx, "continue scene failed", "choice_id", id, "error", err.Error())
		s.st.branch.phase = PhaseChoicesReady
		return entity.Scene{}, apperrors.ErrContinuationFailed.WithError(err)
	}
	s.st.branch.phase = PhaseIdle
	s.st.branch.choices = nil
	return scene, nil
}

// CancelBranch 丢弃当前选项批次并回到 Idle，不修改故事；在途请求的结果作废
func (s *Session) CancelBranch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.branch = branchState{phase: PhaseIdle, gen: s.st.branch.gen + 1}
}
