// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"taleteller/internal/interfaces/http/dto"
	apperrors "taleteller/pkg/errors"
	"taleteller/pkg/logger"
)

// Recovery 捕获 handler panic，记录堆栈后返回通用 500
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "panic recovered",
			fmt.Errorf("panic: %v", recovered),
			"stack", string(debug.Stack()),
			"route", c.FullPath(),
			"method", c.Request.Method,
		)
		dto.InternalError(c, apperrors.ErrInternalError.Message)
	})
}
