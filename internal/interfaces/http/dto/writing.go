package dto

import "taleteller/internal/domain/entity"

// GrammarCheckRequest POST /api/grammar-check
type GrammarCheckRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// GrammarCheckResponse 即 SuggestionSet 的线上形态
type GrammarCheckResponse = entity.SuggestionSet

// GenerateChoicesRequest POST /api/generate-choices
type GenerateChoicesRequest struct {
	StoryContext string `json:"storyContext"`
	Mode         string `json:"mode"`
	CurrentScene string `json:"currentScene"`
}

// GenerateChoicesResponse 分支选项
type GenerateChoicesResponse struct {
	Choices []entity.Choice `json:"choices"`
}

// ContinueSceneRequest POST /api/continue-scene
type ContinueSceneRequest struct {
	StoryContext   string `json:"storyContext"`
	Mode           string `json:"mode"`
	SelectedChoice string `json:"selectedChoice"`
}

// ContinueSceneResponse 续写文本
type ContinueSceneResponse struct {
	Continuation string `json:"continuation"`
}

// ModeListResponse GET /api/modes
type ModeListResponse struct {
	Modes   []entity.ModeInfo `json:"modes"`
	Default entity.Mode       `json:"default"`
}
