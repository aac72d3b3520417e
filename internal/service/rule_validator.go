package service

import (
	"github.com/dfops/collect-gin/internal/errs"
	"github.com/dfops/collect-gin/internal/model"
)

// ValidateCompatibility 校验规则变体与 (类别, 采集方式) 的兼容性
// 兼容矩阵是固定且穷举的,在任何写入存储之前调用,不修改任何状态:
//
//	database + full        -> full_database
//	api      + full        -> full_api
//	database + incremental -> incremental_database
//	api      + incremental -> incremental_api
//	crawler  + 任意        -> 矩阵未约束,直接放行
func ValidateCompatibility(category model.TaskCategory, collectType model.CollectType, rule *model.CollectionRule) error {
	if rule == nil {
		return errs.EmptyValue("rule")
	}

	// crawler 类别当前矩阵未约束
	if category == model.CategoryCrawler {
		return nil
	}

	var required model.RuleType
	switch {
	case category == model.CategoryDatabase && collectType == model.CollectTypeFull:
		required = model.RuleTypeFullDatabase
	case category == model.CategoryApi && collectType == model.CollectTypeFull:
		required = model.RuleTypeFullApi
	case category == model.CategoryDatabase && collectType == model.CollectTypeIncremental:
		required = model.RuleTypeIncrementalDatabase
	case category == model.CategoryApi && collectType == model.CollectTypeIncremental:
		required = model.RuleTypeIncrementalApi
	default:
		return errs.InvalidValue("unknown category %q with collect type %q", category, collectType)
	}

	if rule.Type != required {
		return errs.InvalidValue("%s %s collection requires rule type %s, got %s",
			collectType, category, required, rule.Type)
	}
	if !rule.Payload() {
		return errs.InvalidValue("rule payload for type %s is missing", rule.Type)
	}

	// 变体内部约束,目前只有数据库全量规则有额外要求
	if rule.Type == model.RuleTypeFullDatabase && len(rule.FullDatabase.SelectedTables) == 0 {
		return errs.InvalidValue("must select at least one table")
	}

	return nil
}
