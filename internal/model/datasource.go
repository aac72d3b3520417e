package model

import (
	"errors"
	"time"
)

// 数据源类型
const (
	DatasourceTypeMySQL    = "mysql"
	DatasourceTypePostgres = "postgres"
	DatasourceTypeApi      = "api"
	DatasourceTypeCrawler  = "crawler"
)

// DatasourceModel 数据源数据模型
// 采集任务通过 datasource_id 引用,连接配置是不透明的值对象,
// 引擎不会用它连接外部系统
type DatasourceModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)"`
	ProjectID   string    `gorm:"type:varchar(64);not null;index"`
	Name        string    `gorm:"type:varchar(64);not null;index"`
	Description string    `gorm:"type:varchar(255)"`
	SourceType  string    `gorm:"type:varchar(32);not null;index"` // 数据源类型
	Config      []byte    `gorm:"type:jsonb"`                      // 连接配置(host/port/凭据等)
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName 指定表名
func (DatasourceModel) TableName() string {
	return "datasources"
}

// Validate 验证数据源模型
func (dm *DatasourceModel) Validate() error {
	if dm.ID == "" {
		return errors.New("datasource ID is required")
	}
	if dm.ProjectID == "" {
		return errors.New("project ID is required")
	}
	if dm.Name == "" {
		return errors.New("datasource name is required")
	}
	if dm.SourceType == "" {
		return errors.New("datasource type is required")
	}
	return nil
}
