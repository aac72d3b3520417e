package repository

import (
	"errors"
	"fmt"

	"github.com/dfops/collect-gin/internal/errs"
	"github.com/dfops/collect-gin/internal/model"
	"gorm.io/gorm"
)

// TaskRepository 采集任务仓储接口
type TaskRepository interface {
	Create(task *model.TaskModel) error
	FindByID(projectID, id string) (*model.TaskModel, error)
	Update(task *model.TaskModel) error
	DeleteByCode(projectID, code string) error
	DeleteByCodeAndStage(projectID, code string, stage model.TaskStage) error
	FindAll(filter *TaskFilter, page, pageSize int) ([]*model.TaskModel, error)
	CountAll(filter *TaskFilter) (int64, error)
	// WithTx 返回绑定到事务的仓储,用于将多个写操作作为一个原子单元执行
	WithTx(tx *gorm.DB) TaskRepository
}

// TaskFilter 任务查询过滤器
type TaskFilter struct {
	ProjectID   string
	Stage       *model.TaskStage
	Category    *model.TaskCategory
	CollectType *model.CollectType
	Keyword     *string // name 的子串匹配
}

// taskRepository 任务仓储实现
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建任务仓储
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *taskRepository) WithTx(tx *gorm.DB) TaskRepository {
	return &taskRepository{db: tx}
}

// Create 新增任务记录
func (r *taskRepository) Create(task *model.TaskModel) error {
	if err := r.db.Create(task).Error; err != nil {
		return errs.Store(err)
	}
	return nil
}

// FindByID 根据 ID 查找任务
func (r *taskRepository) FindByID(projectID, id string) (*model.TaskModel, error) {
	var task model.TaskModel
	err := r.db.Where("project_id = ? AND id = ?", projectID, id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("task %s not found", id)
		}
		return nil, errs.Store(err)
	}
	return &task, nil
}

// Update 保存任务记录
func (r *taskRepository) Update(task *model.TaskModel) error {
	if err := r.db.Save(task).Error; err != nil {
		return errs.Store(err)
	}
	return nil
}

// DeleteByCode 按 code 删除任务族的全部记录
func (r *taskRepository) DeleteByCode(projectID, code string) error {
	err := r.db.Where("project_id = ? AND code = ?", projectID, code).
		Delete(&model.TaskModel{}).Error
	if err != nil {
		return errs.Store(err)
	}
	return nil
}

// DeleteByCodeAndStage 按 code 和阶段删除任务记录
// 目标记录不存在不算错误,应用操作的取代步骤依赖这一语义
func (r *taskRepository) DeleteByCodeAndStage(projectID, code string, stage model.TaskStage) error {
	err := r.db.Where("project_id = ? AND code = ? AND stage = ?", projectID, code, string(stage)).
		Delete(&model.TaskModel{}).Error
	if err != nil {
		return errs.Store(err)
	}
	return nil
}

// FindAll 按过滤条件分页查找任务
// page 从 1 开始计数
func (r *taskRepository) FindAll(filter *TaskFilter, page, pageSize int) ([]*model.TaskModel, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var tasks []*model.TaskModel
	query := applyTaskFilter(r.db.Model(&model.TaskModel{}), filter)
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, errs.Store(err)
	}
	return tasks, nil
}

// CountAll 按过滤条件统计任务总数
func (r *taskRepository) CountAll(filter *TaskFilter) (int64, error) {
	var total int64
	query := applyTaskFilter(r.db.Model(&model.TaskModel{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, errs.Store(err)
	}
	return total, nil
}

// applyTaskFilter 应用查询过滤条件
// FindAll 和 CountAll 共用同一谓词
func applyTaskFilter(query *gorm.DB, filter *TaskFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.ProjectID != "" {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Stage != nil {
		query = query.Where("stage = ?", string(*filter.Stage))
	}
	if filter.Category != nil {
		query = query.Where("category = ?", string(*filter.Category))
	}
	if filter.CollectType != nil {
		query = query.Where("collect_type = ?", string(*filter.CollectType))
	}
	if filter.Keyword != nil && *filter.Keyword != "" {
		query = query.Where("name LIKE ?", fmt.Sprintf("%%%s%%", *filter.Keyword))
	}
	return query
}
