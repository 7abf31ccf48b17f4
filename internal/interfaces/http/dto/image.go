package dto

// GenerateImageRequest POST /api/generate-image
type GenerateImageRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateImageResponse base64 编码的图像
type GenerateImageResponse struct {
	Image string `json:"image"`
}
