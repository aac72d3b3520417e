package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// 错误定义
var (
	ErrEmptyName       = &ValidationError{Code: "EMPTY_NAME", Message: "name cannot be empty"}
	ErrNameTooLong     = &ValidationError{Code: "NAME_TOO_LONG", Message: "name exceeds maximum length"}
	ErrEmptyID         = &ValidationError{Code: "EMPTY_ID", Message: "id cannot be empty"}
	ErrInvalidIDFormat = &ValidationError{Code: "INVALID_ID_FORMAT", Message: "id contains invalid characters"}
	ErrIDTooLong       = &ValidationError{Code: "ID_TOO_LONG", Message: "id exceeds maximum length"}
)

// ValidationError 验证错误
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateID 验证任务/数据源 ID 格式
// 只允许字母、数字、连字符、下划线,最长 64 字符
func ValidateID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if !idPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}
	// 格式校验已限定为单字节字符,字节数即字符数
	if len(id) > 64 {
		return ErrIDTooLong
	}
	return nil
}

// ValidateTaskName 验证任务名称
// 非空且最长 64 字符,按字符数而非字节数计
func ValidateTaskName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(trimmed) > 64 {
		return ErrNameTooLong
	}
	return nil
}

// ValidateProjectID 验证项目 ID 格式
func ValidateProjectID(id string) error {
	return ValidateID(id)
}
