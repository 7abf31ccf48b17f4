// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess         ErrorCode = "0"
	CodeUnknown         ErrorCode = "1000"
	CodeInvalidParam    ErrorCode = "1001"
	CodeNotFound        ErrorCode = "1004"
	CodeTooManyRequests ErrorCode = "1006"
	CodeInternalError   ErrorCode = "1007"

	// 会话状态错误 (3xxx)
	CodeStateConflict ErrorCode = "3001"
	CodeStaleResponse ErrorCode = "3002"
	CodeNoActiveMode  ErrorCode = "3003"

	// 上游服务错误 (5xxx)
	CodeUpstreamFailed   ErrorCode = "5001"
	CodeLLMCallFailed    ErrorCode = "5002"
	CodeImageFailed      ErrorCode = "5003"
	CodeExportFailed     ErrorCode = "5004"
	CodeUpstreamBadReply ErrorCode = "5005"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码与消息比较，使 WithError/WithDetail 的副本仍能匹配预定义错误
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithDetail 添加详细信息（返回副本，避免污染预定义错误）
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 添加底层错误（返回副本）
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// Validation 创建参数校验错误 (400)
func Validation(message string) *AppError {
	return New(CodeInvalidParam, message)
}

// Upstream 包装上游失败；message 面向用户，err 仅用于服务端日志
func Upstream(err error, message string) *AppError {
	return Wrap(err, CodeUpstreamFailed, message)
}

// State 创建状态冲突错误 (409)
func State(message string) *AppError {
	return New(CodeStateConflict, message)
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeStateConflict, CodeStaleResponse, CodeNoActiveMode:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam    = New(CodeInvalidParam, "invalid parameter")
	ErrTooManyRequests = New(CodeTooManyRequests, "too many requests")
	ErrInternalError   = New(CodeInternalError, "internal server error")

	ErrEmptyText   = New(CodeInvalidParam, "text is required")
	ErrEmptyPrompt = New(CodeInvalidParam, "Prompt is required")
	ErrEmptyStory  = New(CodeInvalidParam, "please add at least one scene first")
	ErrUnknownMode = New(CodeInvalidParam, "unknown story mode")

	ErrBusy          = New(CodeStateConflict, "a request is already in progress")
	ErrWrongState    = New(CodeStateConflict, "workflow is not in the expected state")
	ErrChoiceMissing = New(CodeStateConflict, "choice is not part of the current batch")
	ErrNoActiveMode  = New(CodeNoActiveMode, "no story mode selected")
	ErrStaleResponse = New(CodeStaleResponse, "response discarded: session has moved on")

	ErrGrammarFailed      = New(CodeLLMCallFailed, "Failed to check grammar")
	ErrChoicesFailed      = New(CodeLLMCallFailed, "Failed to generate choices")
	ErrContinuationFailed = New(CodeLLMCallFailed, "Failed to continue scene")
	ErrImageFailed        = New(CodeImageFailed, "Image generation failed")
	ErrUpstreamBadReply   = New(CodeUpstreamBadReply, "upstream returned an unusable reply")
	ErrExportFailed       = New(CodeExportFailed, "failed to export story")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// IsCode 判断错误链中是否包含指定错误码
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// IsValidation 是否为参数校验错误
func IsValidation(err error) bool {
	return IsCode(err, CodeInvalidParam)
}
