package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taleteller/internal/interfaces/http/dto"
	"taleteller/pkg/logger"
)

const (
	// RequestIDHeader 请求 ID 头
	RequestIDHeader = "X-Request-ID"
	// SessionIDHeader 客户端会话 ID 头，仅用于日志关联
	SessionIDHeader = "X-Session-ID"

	maxRequestIDLen = 64
)

// Correlation 为请求分配 request id，并把会话 id 带入日志上下文。
// 客户端传入的 request id 不合法时重新生成；会话 id 必须是 UUID。
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}
		c.Set(dto.RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		ctx := logger.WithContext(c.Request.Context(), logger.RequestIDKey, requestID)
		if sid, err := uuid.Parse(c.GetHeader(SessionIDHeader)); err == nil {
			ctx = logger.WithContext(ctx, logger.SessionIDKey, sid.String())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}
