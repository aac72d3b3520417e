package model

import (
	"errors"
	"time"
)

// TaskCategory 采集任务类别
type TaskCategory string

const (
	CategoryDatabase TaskCategory = "database"
	CategoryApi      TaskCategory = "api"
	CategoryCrawler  TaskCategory = "crawler"
)

// Valid 判断类别取值是否合法
func (c TaskCategory) Valid() bool {
	switch c {
	case CategoryDatabase, CategoryApi, CategoryCrawler:
		return true
	}
	return false
}

// CollectType 采集方式
type CollectType string

const (
	CollectTypeFull        CollectType = "full"
	CollectTypeIncremental CollectType = "incremental"
)

// Valid 判断采集方式取值是否合法
func (t CollectType) Valid() bool {
	return t == CollectTypeFull || t == CollectTypeIncremental
}

// TaskStage 任务生命周期阶段
type TaskStage string

const (
	// StageDraft 草稿态,可编辑
	StageDraft TaskStage = "draft"
	// StageApplied 已应用态,不可再编辑,只能被新一次应用取代或删除
	StageApplied TaskStage = "applied"
)

// Valid 判断阶段取值是否合法
func (s TaskStage) Valid() bool {
	return s == StageDraft || s == StageApplied
}

// 字段长度上限
const (
	MaxTaskNameLen        = 64
	MaxTaskDescriptionLen = 255
)

// TaskModel 采集任务数据模型
// ID 每次应用时重新生成; Code 标识同一逻辑任务的所有历史版本,创建后不变
type TaskModel struct {
	ID           string     `gorm:"primaryKey;type:varchar(64)"`
	Code         string     `gorm:"type:varchar(64);not null;index"` // 任务族标识
	ProjectID    string     `gorm:"type:varchar(64);not null;index"` // 项目隔离
	Name         string     `gorm:"type:varchar(64);not null;index"`
	Description  string     `gorm:"type:varchar(255)"`
	Category     string     `gorm:"type:varchar(32);not null;index"` // 任务类别
	CollectType  string     `gorm:"type:varchar(32);not null;index"` // 采集方式
	DatasourceID string     `gorm:"type:varchar(64);not null"`       // 数据源引用
	ResourceID   string     `gorm:"type:varchar(64);not null"`       // 目标资源引用
	Rule         []byte     `gorm:"type:jsonb;not null"`             // 序列化后的采集规则
	Stage        string     `gorm:"type:varchar(32);not null;index"` // 生命周期阶段
	CreatedAt    time.Time  `gorm:"not null;index"`
	UpdatedAt    time.Time  `gorm:"not null;index"`
	AppliedAt    *time.Time `gorm:"index"` // 应用时间,仅在应用时设置一次
}

// TableName 指定表名
func (TaskModel) TableName() string {
	return "collect_tasks"
}

// Validate 验证任务模型
func (tm *TaskModel) Validate() error {
	if tm.ID == "" {
		return errors.New("task ID is required")
	}
	if tm.Code == "" {
		return errors.New("task code is required")
	}
	if tm.ProjectID == "" {
		return errors.New("project ID is required")
	}
	if tm.Name == "" {
		return errors.New("task name is required")
	}
	if tm.Stage == "" {
		return errors.New("task stage is required")
	}
	if len(tm.Rule) == 0 {
		return errors.New("task rule is required")
	}
	return nil
}
