// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "taleteller/pkg/errors"
)

// RequestIDKey gin.Context 中保存 request id 的键
const RequestIDKey = "request_id"

// ErrorResponse 错误响应结构，前端只读取 error 字段
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Success 返回 200 与原始数据
func Success[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, data)
}

// Error 返回错误响应
func Error(c *gin.Context, httpCode int, message string) {
	c.AbortWithStatusJSON(httpCode, ErrorResponse{
		Error:     message,
		RequestID: c.GetString(RequestIDKey),
	})
}

// BadRequest 返回 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// TooManyRequests 返回 429 错误
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, apperrors.ErrTooManyRequests.Message)
}

// InternalError 返回 500 错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// Fail 按 AppError 映射状态码与消息。
// 4xx 附带 detail，5xx 只返回预定义的通用消息。
func Fail(c *gin.Context, err error) {
	if !apperrors.IsAppError(err) {
		InternalError(c, apperrors.ErrInternalError.Message)
		return
	}
	appErr := apperrors.AsAppError(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	msg := appErr.Message
	if status < http.StatusInternalServerError && appErr.Detail != "" {
		msg += ": " + appErr.Detail
	}
	Error(c, status, msg)
}
