// Package errs 定义标注核心的错误类别
// 调用方通过 errors.Is 判断类别，通过 errors.As 获取结构化细节
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode 线上记录缺失必填字段或字段类型错误
	ErrDecode = errors.New("decode error")
	// ErrInvalidArgument 调用方违反前置条件
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound 目标 ID 不在所寻址的集合中
	ErrNotFound = errors.New("not found")
	// ErrConflict 协作方报告的唯一性冲突（标签名、快捷键）
	ErrConflict = errors.New("conflict")
	// ErrForbidden 会话用户不是项目成员或角色不足
	ErrForbidden = errors.New("forbidden")
	// ErrTransport 传输层错误（网络、认证），原样透传
	ErrTransport = errors.New("transport error")
)

// DecodeError 线上记录解码错误
type DecodeError struct {
	Shape  string // 任务形态，例如 spans
	Field  string // 出错的线上字段名
	Reason string
}

// Error 实现 error 接口
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: field %q: %s", e.Shape, e.Field, e.Reason)
}

// Is 使 errors.Is(err, ErrDecode) 成立
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// Decode 创建解码错误
func Decode(shape, field, reason string) error {
	return &DecodeError{Shape: shape, Field: field, Reason: reason}
}

// TransportError 传输层错误
type TransportError struct {
	Method string
	Path   string
	Status int // 0 表示请求未得到 HTTP 响应
	Err    error
}

// Error 实现 error 接口
func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.Path, e.Status, e.Err)
}

// Unwrap 返回底层错误
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrTransport) 成立
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// InvalidArgument 创建参数错误
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFound 创建未找到错误
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflict 创建冲突错误
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Forbidden 创建权限错误
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
