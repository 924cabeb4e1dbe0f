// Package apperr 定义业务错误分类，供应用服务与 HTTP 层统一使用
package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind int

const (
	// KindUnknown 未分类错误
	KindUnknown Kind = iota
	// KindUnauthenticated 未认证（HTTP 401）
	KindUnauthenticated
	// KindForbidden 权限不足（HTTP 403）
	KindForbidden
	// KindNotFound 资源不存在（HTTP 404）
	KindNotFound
	// KindValidation 字段校验失败（HTTP 400）
	KindValidation
	// KindConflict 唯一性或引用完整性冲突（HTTP 409）
	KindConflict
)

// String 返回分类名称
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation_error"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error 业务错误，携带分类与出错字段明细
type Error struct {
	Kind    Kind
	Message string
	// Fields 字段名 -> 错误说明，仅 Validation/Conflict 填充
	Fields map[string]string
	cause  error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.cause
}

// New 创建业务错误
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf 创建带格式化消息的业务错误
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误
func Wrap(cause error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithField 附加出错字段说明
func (e *Error) WithField(field, detail string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = detail
	return e
}

// KindOf 提取错误分类，非业务错误返回 KindUnknown
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// FieldsOf 提取出错字段明细
func FieldsOf(err error) map[string]string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

// IsKind 判断错误是否属于指定分类
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
