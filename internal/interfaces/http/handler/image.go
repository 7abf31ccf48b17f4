package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"taleteller/internal/interfaces/http/dto"
)

// ImageGenerator 图像生成桥
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ImageHandler 图像处理器
type ImageHandler struct {
	bridge ImageGenerator
}

// NewImageHandler 创建图像处理器
func NewImageHandler(bridge ImageGenerator) *ImageHandler {
	return &ImageHandler{bridge: bridge}
}

// GenerateImage 文生图
// @Summary 生成插图
// @Tags Image
// @Accept json
// @Produce json
// @Param body body dto.GenerateImageRequest true "提示词"
// @Success 200 {object} dto.GenerateImageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/generate-image [post]
func (h *ImageHandler) GenerateImage(c *gin.Context) {
	var req dto.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body")
		return
	}

	image, err := h.bridge.GenerateImage(c.Request.Context(), req.Prompt)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.GenerateImageResponse{Image: image})
}
