package repository

import (
	"errors"

	"github.com/dfops/collect-gin/internal/errs"
	"github.com/dfops/collect-gin/internal/model"
	"gorm.io/gorm"
)

// DatasourceRepository 数据源仓储接口
type DatasourceRepository interface {
	Save(ds *model.DatasourceModel) error
	FindByID(projectID, id string) (*model.DatasourceModel, error)
	FindAll(projectID string) ([]*model.DatasourceModel, error)
	DeleteByID(projectID, id string) error
}

// datasourceRepository 数据源仓储实现
type datasourceRepository struct {
	db *gorm.DB
}

// NewDatasourceRepository 创建数据源仓储
func NewDatasourceRepository(db *gorm.DB) DatasourceRepository {
	return &datasourceRepository{db: db}
}

// Save 保存数据源
func (r *datasourceRepository) Save(ds *model.DatasourceModel) error {
	if err := r.db.Save(ds).Error; err != nil {
		return errs.Store(err)
	}
	return nil
}

// FindByID 根据 ID 查找数据源
func (r *datasourceRepository) FindByID(projectID, id string) (*model.DatasourceModel, error) {
	var ds model.DatasourceModel
	err := r.db.Where("project_id = ? AND id = ?", projectID, id).First(&ds).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("datasource %s not found", id)
		}
		return nil, errs.Store(err)
	}
	return &ds, nil
}

// FindAll 查找项目下的所有数据源
func (r *datasourceRepository) FindAll(projectID string) ([]*model.DatasourceModel, error) {
	var list []*model.DatasourceModel
	err := r.db.Where("project_id = ?", projectID).
		Order("created_at DESC").Find(&list).Error
	if err != nil {
		return nil, errs.Store(err)
	}
	return list, nil
}

// DeleteByID 根据 ID 删除数据源
func (r *datasourceRepository) DeleteByID(projectID, id string) error {
	err := r.db.Where("project_id = ? AND id = ?", projectID, id).
		Delete(&model.DatasourceModel{}).Error
	if err != nil {
		return errs.Store(err)
	}
	return nil
}
