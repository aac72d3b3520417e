package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dfops/collect-gin/internal/errs"
	"github.com/stretchr/testify/assert"
)

// TestKindOf 测试错误类别判断
func TestKindOf(t *testing.T) {
	assert.Equal(t, errs.KindEmptyValue, errs.KindOf(errs.EmptyValue("name")))
	assert.Equal(t, errs.KindInvalidValue, errs.KindOf(errs.InvalidValue("bad value")))
	assert.Equal(t, errs.KindNotFound, errs.KindOf(errs.NotFound("task %s not found", "t-1")))
	assert.Equal(t, errs.KindInvalidOperation, errs.KindOf(errs.InvalidOperation("not allowed")))
	assert.Equal(t, errs.KindStore, errs.KindOf(errs.Store(errors.New("db down"))))

	// 非应用错误一律视为内部错误
	assert.Equal(t, errs.KindInternal, errs.KindOf(errors.New("plain")))
}

// TestKindOfWrapped 测试被包装后的错误仍能识别类别
func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("context: %w", errs.NotFound("task not found"))
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.True(t, errs.IsNotFound(err))
}

// TestFromStore 测试存储层错误归一化
func TestFromStore(t *testing.T) {
	assert.NoError(t, errs.FromStore(nil))

	// 已分类的应用错误原样透传
	notFound := errs.NotFound("task not found")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(errs.FromStore(notFound)))

	// 未分类错误包装为存储层错误
	wrapped := errs.FromStore(errors.New("connection reset"))
	assert.Equal(t, errs.KindStore, errs.KindOf(wrapped))
}

// TestErrorMessage 测试错误消息格式
func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "name cannot be empty", errs.EmptyValue("name").Error())

	cause := errors.New("db down")
	stored := errs.Store(cause)
	assert.Contains(t, stored.Error(), "db down")
	assert.ErrorIs(t, stored, cause)
}
