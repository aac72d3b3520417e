package schema

import "strings"

// 目标字段物理类型
const (
	TypeBigInt     = "BIGINT"
	TypeDecimal    = "DECIMAL(10,2)"
	TypeTimestamp  = "TIMESTAMP"
	TypeDate       = "DATE"
	TypeVarchar    = "VARCHAR(255)"
	TypeVarchar512 = "VARCHAR(512)"
	TypeText       = "TEXT"
)

// MapFieldType 根据字段名推断目标字段类型
// 规则按顺序匹配,先命中者生效: created_at 命中 _at 后缀规则,
// view_count 命中 count 规则而不会落到默认值
func MapFieldType(name string) string {
	switch {
	case name == "id":
		return TypeBigInt
	case strings.Contains(name, "count") || strings.Contains(name, "amount"):
		return TypeDecimal
	case strings.HasSuffix(name, "_at"):
		return TypeTimestamp
	case strings.HasSuffix(name, "_date"):
		return TypeDate
	case strings.Contains(name, "email"):
		return TypeVarchar
	case strings.Contains(name, "url") || strings.Contains(name, "link"):
		return TypeVarchar512
	case strings.Contains(name, "description") || strings.Contains(name, "content"):
		return TypeText
	default:
		return TypeVarchar
	}
}
