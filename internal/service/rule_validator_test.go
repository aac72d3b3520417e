package service_test

import (
	"testing"

	"github.com/dfops/collect-gin/internal/errs"
	"github.com/dfops/collect-gin/internal/model"
	"github.com/dfops/collect-gin/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullDatabaseRule 构造一个合法的数据库全量规则
func fullDatabaseRule() *model.CollectionRule {
	return &model.CollectionRule{
		Type: model.RuleTypeFullDatabase,
		FullDatabase: &model.FullDatabaseRule{
			SelectedTables: []model.TableSelection{
				{TableName: "orders", SelectedFields: []string{"id"}},
			},
		},
	}
}

// fullApiRule 构造一个合法的接口全量规则
func fullApiRule() *model.CollectionRule {
	return &model.CollectionRule{
		Type: model.RuleTypeFullApi,
		FullApi: &model.FullApiRule{
			Path:   "/api/orders",
			Method: "GET",
		},
	}
}

// incrementalDatabaseRule 构造一个合法的数据库增量规则
func incrementalDatabaseRule() *model.CollectionRule {
	return &model.CollectionRule{
		Type: model.RuleTypeIncrementalDatabase,
		IncrementalDatabase: &model.IncrementalDatabaseRule{
			CDCConfig: model.CDCConfig{SourceTables: []string{"orders"}},
		},
	}
}

// incrementalApiRule 构造一个合法的接口增量规则
func incrementalApiRule() *model.CollectionRule {
	return &model.CollectionRule{
		Type: model.RuleTypeIncrementalApi,
		IncrementalApi: &model.IncrementalApiRule{
			Path:        "/api/orders",
			Method:      "GET",
			CursorField: "updated_at",
		},
	}
}

// TestValidateCompatibilityMatrix 测试兼容矩阵的四个受约束组合
func TestValidateCompatibilityMatrix(t *testing.T) {
	cases := []struct {
		name        string
		category    model.TaskCategory
		collectType model.CollectType
		rule        *model.CollectionRule
	}{
		{"database full", model.CategoryDatabase, model.CollectTypeFull, fullDatabaseRule()},
		{"api full", model.CategoryApi, model.CollectTypeFull, fullApiRule()},
		{"database incremental", model.CategoryDatabase, model.CollectTypeIncremental, incrementalDatabaseRule()},
		{"api incremental", model.CategoryApi, model.CollectTypeIncremental, incrementalApiRule()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.ValidateCompatibility(tc.category, tc.collectType, tc.rule)
			assert.NoError(t, err)
		})
	}
}

// TestValidateCompatibilityMismatch 测试规则变体与 (类别, 采集方式) 不匹配时拒绝
func TestValidateCompatibilityMismatch(t *testing.T) {
	// database + full 拒绝接口规则
	err := service.ValidateCompatibility(model.CategoryDatabase, model.CollectTypeFull, fullApiRule())
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidValue, errs.KindOf(err))

	// api + incremental 拒绝全量规则
	err = service.ValidateCompatibility(model.CategoryApi, model.CollectTypeIncremental, fullApiRule())
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidValue, errs.KindOf(err))

	// database + incremental 拒绝全量数据库规则
	err = service.ValidateCompatibility(model.CategoryDatabase, model.CollectTypeIncremental, fullDatabaseRule())
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidValue, errs.KindOf(err))
}

// TestValidateCompatibilityNilRule 测试空规则被拒绝
func TestValidateCompatibilityNilRule(t *testing.T) {
	err := service.ValidateCompatibility(model.CategoryDatabase, model.CollectTypeFull, nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindEmptyValue, errs.KindOf(err))
}

// TestValidateCompatibilityMissingPayload 测试 type 匹配但变体字段缺失时拒绝
func TestValidateCompatibilityMissingPayload(t *testing.T) {
	rule := &model.CollectionRule{Type: model.RuleTypeFullDatabase}
	err := service.ValidateCompatibility(model.CategoryDatabase, model.CollectTypeFull, rule)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidValue, errs.KindOf(err))
}

// TestValidateCompatibilityEmptyTables 测试数据库全量规则必须选中至少一张表
func TestValidateCompatibilityEmptyTables(t *testing.T) {
	rule := &model.CollectionRule{
		Type:         model.RuleTypeFullDatabase,
		FullDatabase: &model.FullDatabaseRule{},
	}
	err := service.ValidateCompatibility(model.CategoryDatabase, model.CollectTypeFull, rule)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidValue, errs.KindOf(err))
	assert.Contains(t, err.Error(), "at least one table")
}

// TestValidateCompatibilityCrawler 测试 crawler 类别不受矩阵约束
func TestValidateCompatibilityCrawler(t *testing.T) {
	assert.NoError(t, service.ValidateCompatibility(model.CategoryCrawler, model.CollectTypeFull, fullApiRule()))
	assert.NoError(t, service.ValidateCompatibility(model.CategoryCrawler, model.CollectTypeIncremental, fullDatabaseRule()))
}
