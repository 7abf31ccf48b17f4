// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"taleteller/internal/domain/entity"
	"taleteller/internal/interfaces/http/dto"
)

// WritingService 写作助手
type WritingService interface {
	CheckGrammar(ctx context.Context, text string, mode entity.Mode) (*entity.SuggestionSet, error)
	GenerateChoices(ctx context.Context, storyContext string, mode entity.Mode, currentScene string) ([]entity.Choice, error)
	ContinueScene(ctx context.Context, storyContext string, mode entity.Mode, selectedChoice string) (string, error)
}

// WritingHandler 写作助手处理器
type WritingHandler struct {
	svc WritingService
}

// NewWritingHandler 创建写作助手处理器
func NewWritingHandler(svc WritingService) *WritingHandler {
	return &WritingHandler{svc: svc}
}

// GrammarCheck 语法检查
// @Summary 语法检查
// @Tags Writing
// @Accept json
// @Produce json
// @Param body body dto.GrammarCheckRequest true "待检查文本"
// @Success 200 {object} dto.GrammarCheckResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/grammar-check [post]
func (h *WritingHandler) GrammarCheck(c *gin.Context) {
	var req dto.GrammarCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body")
		return
	}
	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	set, err := h.svc.CheckGrammar(c.Request.Context(), req.Text, mode)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, set)
}

// GenerateChoices 生成剧情分支
// @Summary 生成剧情分支选项
// @Tags Writing
// @Accept json
// @Produce json
// @Param body body dto.GenerateChoicesRequest true "故事上下文"
// @Success 200 {object} dto.GenerateChoicesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/generate-choices [post]
func (h *WritingHandler) GenerateChoices(c *gin.Context) {
	var req dto.GenerateChoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body")
		return
	}
	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	choices, err := h.svc.GenerateChoices(c.Request.Context(), req.StoryContext, mode, req.CurrentScene)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.GenerateChoicesResponse{Choices: choices})
}

// ContinueScene 续写
// @Summary 按所选分支续写
// @Tags Writing
// @Accept json
// @Produce json
// @Param body body dto.ContinueSceneRequest true "故事上下文与所选方向"
// @Success 200 {object} dto.ContinueSceneResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/continue-scene [post]
func (h *WritingHandler) ContinueScene(c *gin.Context) {
	var req dto.ContinueSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body")
		return
	}
	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	text, err := h.svc.ContinueScene(c.Request.Context(), req.StoryContext, mode, req.SelectedChoice)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.ContinueSceneResponse{Continuation: text})
}

// ListModes 故事类型列表
// @Router /api/modes [get]
func (h *WritingHandler) ListModes(c *gin.Context) {
	dto.Success(c, dto.ModeListResponse{Modes: entity.Modes(), Default: entity.DefaultMode})
}
