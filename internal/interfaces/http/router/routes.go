package router

import "github.com/gin-gonic/gin"

// RegisterAPIRoutes 注册 /api 路由
func RegisterAPIRoutes(api *gin.RouterGroup, h Handlers) {
	// 写作助手
	api.POST("/grammar-check", h.Writing.GrammarCheck)
	api.POST("/generate-choices", h.Writing.GenerateChoices)
	api.POST("/continue-scene", h.Writing.ContinueScene)
	api.GET("/modes", h.Writing.ListModes)

	// 插图
	api.POST("/generate-image", h.Image.GenerateImage)
}
