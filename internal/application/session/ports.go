// Package session 维护一次写作会话的客户端状态：故事、输入缓冲、语法建议与剧情分支
package session

import (
	"context"

	"taleteller/internal/domain/entity"
)

// Assistant 写作助手上游（语法检查、分支选项、续写）
type Assistant interface {
	CheckGrammar(ctx context.Context, text string, mode entity.Mode) (*entity.SuggestionSet, error)
	GenerateChoices(ctx context.Context, storyContext string, mode entity.Mode, currentScene string) ([]entity.Choice, error)
	ContinueScene(ctx context.Context, storyContext string, mode entity.Mode, selectedChoice string) (string, error)
}

// Illustrator 图像生成上游，返回 base64 编码的图片
type Illustrator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
