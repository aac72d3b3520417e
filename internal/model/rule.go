package model

// RuleType 采集规则变体标识
type RuleType string

const (
	RuleTypeFullDatabase        RuleType = "full_database"
	RuleTypeFullApi             RuleType = "full_api"
	RuleTypeIncrementalDatabase RuleType = "incremental_database"
	RuleTypeIncrementalApi      RuleType = "incremental_api"
)

// CollectionRule 采集规则
// 带显式 type 判别字段的联合类型,同一时刻只有与 type 匹配的变体字段有值
type CollectionRule struct {
	Type                RuleType                 `json:"type"`
	FullDatabase        *FullDatabaseRule        `json:"full_database,omitempty"`
	FullApi             *FullApiRule             `json:"full_api,omitempty"`
	IncrementalDatabase *IncrementalDatabaseRule `json:"incremental_database,omitempty"`
	IncrementalApi      *IncrementalApiRule      `json:"incremental_api,omitempty"`
}

// Payload 返回与 type 匹配的变体是否存在
func (r *CollectionRule) Payload() bool {
	switch r.Type {
	case RuleTypeFullDatabase:
		return r.FullDatabase != nil
	case RuleTypeFullApi:
		return r.FullApi != nil
	case RuleTypeIncrementalDatabase:
		return r.IncrementalDatabase != nil
	case RuleTypeIncrementalApi:
		return r.IncrementalApi != nil
	}
	return false
}

// FullDatabaseRule 数据库全量采集规则
type FullDatabaseRule struct {
	SelectedTables    []TableSelection `json:"selected_tables"`
	TransformationSQL string           `json:"transformation_sql,omitempty"` // 可选的清洗 SQL
	TargetSchema      *TableSchema     `json:"target_schema,omitempty"`      // 派生的目标表结构
}

// FullApiRule 接口全量采集规则
type FullApiRule struct {
	Path         string            `json:"path"`
	Method       string            `json:"method"`
	Headers      map[string]string `json:"headers,omitempty"`
	BodyTemplate string            `json:"body_template,omitempty"`
	TargetSchema *TableSchema      `json:"target_schema,omitempty"`
}

// IncrementalDatabaseRule 数据库增量采集规则
type IncrementalDatabaseRule struct {
	CDCConfig CDCConfig `json:"cdc_config"`
}

// CDCConfig 变更数据捕获配置
type CDCConfig struct {
	SourceTables  []string `json:"source_tables"`
	StartPosition string   `json:"start_position,omitempty"` // binlog 位点,空表示从当前开始
	ServerID      uint32   `json:"server_id,omitempty"`
}

// IncrementalApiRule 接口增量采集规则
type IncrementalApiRule struct {
	Path         string `json:"path"`
	Method       string `json:"method"`
	CursorField  string `json:"cursor_field,omitempty"`  // 增量游标字段
	PollInterval string `json:"poll_interval,omitempty"` // 轮询间隔
}

// TableSelection 源表选择
// SelectedFields 为空表示选择全部字段
type TableSelection struct {
	TableName      string   `json:"table_name"`
	SelectedFields []string `json:"selected_fields"`
}

// TableSchema 目标表结构
type TableSchema struct {
	TableName string        `json:"table_name"`
	Fields    []FieldSchema `json:"fields"`
}

// FieldSchema 目标表字段定义
type FieldSchema struct {
	FieldName     string  `json:"field_name"`
	FieldType     string  `json:"field_type"`
	Nullable      bool    `json:"nullable"`
	DefaultValue  *string `json:"default_value,omitempty"`
	PrimaryKey    bool    `json:"primary_key"`
	AutoIncrement bool    `json:"auto_increment"`
}
