package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// BizError 业务错误：携带返回给调用方的状态码与提示信息
// Code 未显式指定时为 500
type BizError struct {
	Code    int
	Message string
	parent  *BizError
}

func (e *BizError) Error() string {
	return e.Message
}

// Unwrap 返回派生前的错误，使 errors.Is 可以匹配到包级哨兵错误
func (e *BizError) Unwrap() error {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// Withf 基于当前错误派生一条更具体的提示，状态码保持不变
func (e *BizError) Withf(format string, args ...interface{}) *BizError {
	return &BizError{Code: e.Code, Message: fmt.Sprintf(format, args...), parent: e}
}

// New 创建默认状态码（500）的业务错误
func New(message string) *BizError {
	return &BizError{Code: http.StatusInternalServerError, Message: message}
}

// NewWithCode 创建指定状态码的业务错误
func NewWithCode(code int, message string) *BizError {
	return &BizError{Code: code, Message: message}
}

// BadRequest 400
func BadRequest(message string) *BizError {
	return NewWithCode(http.StatusBadRequest, message)
}

// NotFound 404
func NotFound(message string) *BizError {
	return NewWithCode(http.StatusNotFound, message)
}

// Unauthorized 401
func Unauthorized(message string) *BizError {
	return NewWithCode(http.StatusUnauthorized, message)
}

// Forbidden 403
func Forbidden(message string) *BizError {
	return NewWithCode(http.StatusForbidden, message)
}

// ErrOptimisticLock 条件更新未命中：记录已被其他请求修改
var ErrOptimisticLock = NewWithCode(http.StatusConflict, "数据已被其他操作修改，请刷新后重试")

// As 从错误链中提取 BizError
func As(err error) (*BizError, bool) {
	var be *BizError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
