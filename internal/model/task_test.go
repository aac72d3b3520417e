package model_test

import (
	"testing"
	"time"

	"github.com/dfops/collect-gin/internal/model"
	"github.com/stretchr/testify/assert"
)

// TestTaskModel 测试任务数据模型
func TestTaskModel(t *testing.T) {
	tm := &model.TaskModel{
		ID:           "task-001",
		Code:         "code-001",
		ProjectID:    "proj-001",
		Name:         "orders-sync",
		Category:     "database",
		CollectType:  "full",
		DatasourceID: "ds-001",
		ResourceID:   "res-001",
		Rule:         []byte(`{"type":"full_database"}`),
		Stage:        "draft",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	// 验证模型字段
	assert.Equal(t, "task-001", tm.ID)
	assert.Equal(t, "code-001", tm.Code)
	assert.Equal(t, "draft", tm.Stage)
	assert.NotEmpty(t, tm.Rule)
	assert.Nil(t, tm.AppliedAt)
}

// TestTaskModelTableName 测试表名
func TestTaskModelTableName(t *testing.T) {
	tm := model.TaskModel{}
	assert.Equal(t, "collect_tasks", tm.TableName())
}

// TestTaskModelValidation 测试模型验证
func TestTaskModelValidation(t *testing.T) {
	valid := &model.TaskModel{
		ID:        "task-001",
		Code:      "code-001",
		ProjectID: "proj-001",
		Name:      "orders-sync",
		Rule:      []byte(`{}`),
		Stage:     "draft",
	}
	assert.NoError(t, valid.Validate())

	// 测试无效模型 - ID 为空
	invalid := *valid
	invalid.ID = ""
	assert.Error(t, invalid.Validate())

	// 测试无效模型 - Code 为空
	invalid = *valid
	invalid.Code = ""
	assert.Error(t, invalid.Validate())

	// 测试无效模型 - Rule 为空
	invalid = *valid
	invalid.Rule = nil
	assert.Error(t, invalid.Validate())
}

// TestTaskEnums 测试枚举取值校验
func TestTaskEnums(t *testing.T) {
	assert.True(t, model.CategoryDatabase.Valid())
	assert.True(t, model.CategoryApi.Valid())
	assert.True(t, model.CategoryCrawler.Valid())
	assert.False(t, model.TaskCategory("warehouse").Valid())

	assert.True(t, model.CollectTypeFull.Valid())
	assert.True(t, model.CollectTypeIncremental.Valid())
	assert.False(t, model.CollectType("delta").Valid())

	assert.True(t, model.StageDraft.Valid())
	assert.True(t, model.StageApplied.Valid())
	assert.False(t, model.TaskStage("running").Valid())
}

// TestCollectionRulePayload 测试规则变体与 type 的匹配判断
func TestCollectionRulePayload(t *testing.T) {
	rule := &model.CollectionRule{
		Type:         model.RuleTypeFullDatabase,
		FullDatabase: &model.FullDatabaseRule{},
	}
	assert.True(t, rule.Payload())

	// type 与变体不匹配
	rule = &model.CollectionRule{
		Type:    model.RuleTypeFullDatabase,
		FullApi: &model.FullApiRule{},
	}
	assert.False(t, rule.Payload())

	// 未知 type
	rule = &model.CollectionRule{Type: "unknown"}
	assert.False(t, rule.Payload())
}
