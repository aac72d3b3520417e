package schema

import (
	"strings"

	"github.com/dfops/collect-gin/internal/errs"
	"github.com/dfops/collect-gin/internal/model"
)

const (
	// internalPrefix 平台内部表的规范前缀,已带该前缀的表名保持不变
	internalPrefix = "df_"
	// targetPrefix 其余源表派生目标表时添加的前缀
	targetPrefix = "target_"
)

// Generate 从选中的源表派生目标表结构
// 只使用列表中的第一张表作为生成依据
// TODO: 支持多表合并生成,目前仅取第一张表
func Generate(selected []model.TableSelection) (*model.TableSchema, error) {
	if len(selected) == 0 {
		return nil, errs.InvalidValue("no tables selected")
	}

	first := selected[0]
	target := &model.TableSchema{
		TableName: targetTableName(first.TableName),
	}

	// 未指定字段表示选择全部字段,生成固定的 id + created_at 结构
	if len(first.SelectedFields) == 0 {
		target.Fields = defaultFields()
		return target, nil
	}

	fields := make([]model.FieldSchema, 0, len(first.SelectedFields))
	for _, name := range first.SelectedFields {
		field := model.FieldSchema{
			FieldName: name,
			FieldType: MapFieldType(name),
			Nullable:  true,
		}
		// 名为 id 的字段固定为主键且自增
		if name == "id" {
			field.Nullable = false
			field.PrimaryKey = true
			field.AutoIncrement = true
		}
		fields = append(fields, field)
	}
	target.Fields = fields

	return target, nil
}

// targetTableName 计算目标表名
func targetTableName(source string) string {
	if strings.HasPrefix(source, internalPrefix) {
		return source
	}
	return targetPrefix + source
}

// defaultFields 全字段选择时的固定两列结构
func defaultFields() []model.FieldSchema {
	currentTimestamp := "CURRENT_TIMESTAMP"
	return []model.FieldSchema{
		{
			FieldName:     "id",
			FieldType:     TypeBigInt,
			Nullable:      false,
			PrimaryKey:    true,
			AutoIncrement: true,
		},
		{
			FieldName:    "created_at",
			FieldType:    TypeTimestamp,
			Nullable:     false,
			DefaultValue: &currentTimestamp,
		},
	}
}
