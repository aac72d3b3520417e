package errs

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind int

const (
	// KindEmptyValue 必填字段为空
	KindEmptyValue Kind = iota
	// KindInvalidValue 字段取值非法
	KindInvalidValue
	// KindNotFound 记录不存在
	KindNotFound
	// KindInvalidOperation 当前状态下不允许的操作
	KindInvalidOperation
	// KindStore 存储层错误
	KindStore
	// KindInternal 内部错误
	KindInternal
)

// Error 应用错误
// 携带错误类别和可读消息,存储层错误额外携带原始错误
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// EmptyValue 创建必填字段为空错误
func EmptyValue(field string) *Error {
	return &Error{Kind: KindEmptyValue, Field: field, Message: fmt.Sprintf("%s cannot be empty", field)}
}

// InvalidValue 创建字段取值非法错误
func InvalidValue(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidValue, Message: fmt.Sprintf(format, args...)}
}

// NotFound 创建记录不存在错误
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidOperation 创建非法操作错误
func InvalidOperation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

// Store 包装存储层错误
func Store(cause error) *Error {
	return &Error{Kind: KindStore, Message: "store error", Cause: cause}
}

// Internal 包装未预期的内部错误
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// KindOf 返回错误的类别
// 非应用错误一律视为内部错误
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsNotFound 判断是否为记录不存在错误
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// FromStore 归一化存储层返回的错误
// 已分类的应用错误原样透传,其余包装为存储层错误
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return Store(err)
}
