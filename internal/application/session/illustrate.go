package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"taleteller/internal/domain/entity"
	"taleteller/internal/workflow/node"
	apperrors "taleteller/pkg/errors"
	"taleteller/pkg/logger"
)

const illustrationPromptRunes = 600

// Illustration 场景插图
type Illustration struct {
	SceneID int64
	Prompt  string
	Data    []byte
}

// IllustrationPrompt 根据类型与场景文本构造插图提示词
func IllustrationPrompt(mode entity.Mode, text string) string {
	info := mode.Info()
	body := node.TruncateByRunes(strings.Join(strings.Fields(text), " "), illustrationPromptRunes)
	return fmt.Sprintf("%s story illustration (%s): %s", info.Label, strings.ToLower(info.Description), body)
}

// Illustrate 为第 n 个场景（1 起始）生成插图，仅 text-images 格式可用。
// 请求期间场景被删除或会话被重置时结果作废。
func (s *Session) Illustrate(ctx context.Context, n int) (Illustration, error) {
	s.mu.Lock()
	if err := s.requireActive(); err != nil {
		s.mu.Unlock()
		return Illustration{}, err
	}
	if !s.st.format.WithImages() {
		s.mu.Unlock()
		return Illustration{}, apperrors.ErrWrongState.WithDetail("illustrations require the text-images format")
	}
	if s.illustrator == nil {
		s.mu.Unlock()
		return Illustration{}, apperrors.ErrImageFailed.WithDetail("no image service configured")
	}
	scene, ok := s.st.story.At(n)
	if !ok {
		s.mu.Unlock()
		return Illustration{}, apperrors.Validation(fmt.Sprintf("scene %d does not exist", n))
	}
	if s.st.illustration.loading {
		s.mu.Unlock()
		return Illustration{}, apperrors.ErrBusy
	}
	s.st.illustration.loading = true
	s.st.illustration.gen++
	t := ticket{epoch: s.epoch, gen: s.st.illustration.gen}
	prompt := IllustrationPrompt(s.st.mode, scene.Text)
	s.mu.Unlock()

	ctx = s.LogContext(ctx)
	encoded, err := s.illustrator.GenerateImage(ctx, prompt)
	var data []byte
	if err == nil {
		data, err = base64.StdEncoding.DecodeString(encoded)
		if err == nil && len(data) == 0 {
			err = fmt.Errorf("empty image")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(t, s.st.illustration.gen) {
		return Illustration{}, apperrors.ErrStaleResponse
	}
	s.st.illustration.loading = false
	if err != nil {
		logger.Warn(ctx, "illustration failed", "scene_id", scene.ID, "error", err.Error())
		return Illustration{}, apperrors.ErrImageFailed.WithError(err)
	}
	if _, still := s.st.story.Get(scene.ID); !still {
		return Illustration{}, apperrors.ErrStaleResponse.WithDetail("scene was deleted")
	}
	ill := Illustration{SceneID: scene.ID, Prompt: prompt, Data: data}
	s.st.illustrations[scene.ID] = ill
	return ill, nil
}
