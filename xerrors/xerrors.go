// Package xerrors 提供 snowgen 内部统一的错误处理工具。
// 所有包装均保留错误链，可与 errors.Is / errors.As 配合使用。
package xerrors

import (
	"errors"
	"fmt"
)

// New 创建一个新的哨兵错误。
func New(msg string) error {
	return errors.New(msg)
}

// Wrap 用上下文信息包装错误。err 为 nil 时返回 nil。
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf 用格式化的上下文信息包装错误。err 为 nil 时返回 nil。
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// WithCode 为错误附加机器可读的错误码。
func WithCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &CodedError{Code: code, Cause: err}
}

// CodedError 带错误码的错误，Unwrap 返回底层错误。
type CodedError struct {
	Code  string
	Cause error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %v", e.Code, e.Cause)
	}
	return fmt.Sprintf("[%s]", e.Code)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// GetCode 提取错误链中第一个错误码，不存在时返回空字符串。
func GetCode(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}
