package service

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/dfops/collect-gin/internal/errs"
	"github.com/dfops/collect-gin/internal/metrics"
	"github.com/dfops/collect-gin/internal/model"
	"github.com/dfops/collect-gin/internal/repository"
	"github.com/dfops/collect-gin/internal/schema"
	"github.com/dfops/collect-gin/internal/utils"
	"github.com/dfops/collect-gin/internal/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskService 采集任务服务接口
// 所有操作以项目为隔离边界,引擎自身无共享可变状态
type TaskService interface {
	Create(ctx context.Context, projectID string, req *CreateTaskRequest) (*TaskView, error)
	Get(ctx context.Context, projectID, id string) (*TaskView, error)
	Update(ctx context.Context, projectID string, req *UpdateTaskRequest) (*TaskView, error)
	Delete(ctx context.Context, projectID, id string) error
	List(ctx context.Context, projectID string, filter *ListTasksFilter) ([]*TaskView, int64, error)
	Apply(ctx context.Context, projectID, id string) (*TaskView, error)
	GenerateSchema(ctx context.Context, req *GenerateSchemaRequest) (*model.TableSchema, error)
}

// CreateTaskRequest 创建任务请求
// @Description 创建采集任务的请求参数
type CreateTaskRequest struct {
	Name         string                `json:"name" example:"orders-sync" binding:"required"` // 任务名称
	Description  string                `json:"description" example:"同步订单表"`                   // 任务描述
	Category     model.TaskCategory    `json:"category" example:"database" binding:"required"` // 任务类别
	CollectType  model.CollectType     `json:"collect_type" example:"full" binding:"required"` // 采集方式
	DatasourceID string                `json:"datasource_id" example:"ds-001" binding:"required"` // 数据源 ID
	ResourceID   string                `json:"resource_id" example:"res-001" binding:"required"` // 目标资源 ID
	Rule         *model.CollectionRule `json:"rule" binding:"required"` // 采集规则
}

// UpdateTaskRequest 更新任务请求
// 只更新请求中出现的字段,类别/采集方式/数据源/资源在创建后不可变
// @Description 更新采集任务的请求参数
type UpdateTaskRequest struct {
	ID          string                `json:"-"` // 任务 ID,取自路径参数
	Name        *string               `json:"name,omitempty"`        // 任务名称
	Description *string               `json:"description,omitempty"` // 任务描述
	Rule        *model.CollectionRule `json:"rule,omitempty"`        // 采集规则
}

// ListTasksFilter 任务列表查询过滤器
type ListTasksFilter struct {
	Stage       *model.TaskStage
	Category    *model.TaskCategory
	CollectType *model.CollectType
	Keyword     *string
	Page        int
	PageSize    int
}

// GenerateSchemaRequest 生成目标表结构请求
// @Description 生成目标表结构的请求参数
type GenerateSchemaRequest struct {
	DatasourceID   string                 `json:"datasource_id" example:"ds-001" binding:"required"` // 数据源 ID
	ResourceID     string                 `json:"resource_id" example:"res-001" binding:"required"` // 目标资源 ID
	SelectedTables []model.TableSelection `json:"selected_tables" binding:"required"` // 选中的源表
}

// TaskView 任务只读视图
// @Description 采集任务的只读投影
type TaskView struct {
	ID           string                `json:"id"`
	Code         string                `json:"code"`
	ProjectID    string                `json:"project_id"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Category     model.TaskCategory    `json:"category"`
	CollectType  model.CollectType     `json:"collect_type"`
	DatasourceID string                `json:"datasource_id"`
	ResourceID   string                `json:"resource_id"`
	Rule         *model.CollectionRule `json:"rule"`
	Stage        model.TaskStage       `json:"stage"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	AppliedAt    *time.Time            `json:"applied_at,omitempty"`
}

// taskService 任务服务实现
type taskService struct {
	repo repository.TaskRepository
	db   *gorm.DB
	hub  *websocket.Hub
}

// NewTaskService 创建任务服务
// hub 可为 nil,此时不广播任务事件
func NewTaskService(repo repository.TaskRepository, db *gorm.DB, hub *websocket.Hub) TaskService {
	return &taskService{
		repo: repo,
		db:   db,
		hub:  hub,
	}
}

// Create 创建任务
// 新任务生成全新的 ID 和 Code,以草稿态落库
func (s *taskService) Create(ctx context.Context, projectID string, req *CreateTaskRequest) (*TaskView, error) {
	if err := validateCreateRequest(projectID, req); err != nil {
		return nil, err
	}

	// 兼容性校验必须发生在任何存储交互之前
	if err := ValidateCompatibility(req.Category, req.CollectType, req.Rule); err != nil {
		return nil, err
	}

	ruleData, err := json.Marshal(req.Rule)
	if err != nil {
		return nil, errs.Internal("failed to encode rule", err)
	}

	now := time.Now()
	task := &model.TaskModel{
		ID:           uuid.NewString(),
		Code:         uuid.NewString(),
		ProjectID:    projectID,
		Name:         req.Name,
		Description:  req.Description,
		Category:     string(req.Category),
		CollectType:  string(req.CollectType),
		DatasourceID: req.DatasourceID,
		ResourceID:   req.ResourceID,
		Rule:         ruleData,
		Stage:        string(model.StageDraft),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(task); err != nil {
		return nil, errs.FromStore(err)
	}

	metrics.RecordTaskCreated(string(req.Category))
	s.publish(websocket.EventTaskCreated, task)

	return toView(task)
}

// Get 获取任务详情
func (s *taskService) Get(ctx context.Context, projectID, id string) (*TaskView, error) {
	if projectID == "" {
		return nil, errs.EmptyValue("project ID")
	}
	if err := utils.ValidateID(id); err != nil {
		return nil, errs.InvalidValue("invalid task ID: %v", err)
	}

	task, err := s.repo.FindByID(projectID, id)
	if err != nil {
		return nil, errs.FromStore(err)
	}
	return toView(task)
}

// Update 更新草稿态任务
// 已应用的任务不可更新,只能通过再次应用取代或删除
func (s *taskService) Update(ctx context.Context, projectID string, req *UpdateTaskRequest) (*TaskView, error) {
	if projectID == "" {
		return nil, errs.EmptyValue("project ID")
	}
	if req == nil || req.ID == "" {
		return nil, errs.EmptyValue("task ID")
	}
	if req.Name != nil {
		if err := utils.ValidateTaskName(*req.Name); err != nil {
			return nil, errs.InvalidValue("invalid task name: %v", err)
		}
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > model.MaxTaskDescriptionLen {
		return nil, errs.InvalidValue("description exceeds %d characters", model.MaxTaskDescriptionLen)
	}

	task, err := s.repo.FindByID(projectID, req.ID)
	if err != nil {
		return nil, errs.FromStore(err)
	}

	if task.Stage != string(model.StageDraft) {
		return nil, errs.InvalidOperation("cannot update a task that is applied or running")
	}

	if req.Name != nil {
		task.Name = *req.Name
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Rule != nil {
		ruleData, err := json.Marshal(req.Rule)
		if err != nil {
			return nil, errs.Internal("failed to encode rule", err)
		}
		task.Rule = ruleData
	}
	task.UpdatedAt = time.Now()

	if err := s.repo.Update(task); err != nil {
		return nil, errs.FromStore(err)
	}

	s.publish(websocket.EventTaskUpdated, task)

	return toView(task)
}

// Delete 删除任务
// 先按 ID 定位取得 Code,再按 Code 删除整个任务族
func (s *taskService) Delete(ctx context.Context, projectID, id string) error {
	if projectID == "" {
		return errs.EmptyValue("project ID")
	}
	if err := utils.ValidateID(id); err != nil {
		return errs.InvalidValue("invalid task ID: %v", err)
	}

	task, err := s.repo.FindByID(projectID, id)
	if err != nil {
		return errs.FromStore(err)
	}

	if err := s.repo.DeleteByCode(projectID, task.Code); err != nil {
		return errs.FromStore(err)
	}

	metrics.RecordTaskDeleted()
	s.publish(websocket.EventTaskDeleted, task)

	return nil
}

// List 按条件分页查询任务
// 列表与总数是两次独立的存储调用,使用同一过滤谓词
func (s *taskService) List(ctx context.Context, projectID string, filter *ListTasksFilter) ([]*TaskView, int64, error) {
	if projectID == "" {
		return nil, 0, errs.EmptyValue("project ID")
	}
	if filter == nil {
		filter = &ListTasksFilter{}
	}

	repoFilter := &repository.TaskFilter{
		ProjectID:   projectID,
		Stage:       filter.Stage,
		Category:    filter.Category,
		CollectType: filter.CollectType,
		Keyword:     filter.Keyword,
	}

	tasks, err := s.repo.FindAll(repoFilter, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, errs.FromStore(err)
	}

	total, err := s.repo.CountAll(repoFilter)
	if err != nil {
		return nil, 0, errs.FromStore(err)
	}

	views := make([]*TaskView, 0, len(tasks))
	for _, task := range tasks {
		// 规则列无法反序列化说明存储数据损坏,整个查询失败,
		// 不做部分成功(返回的页长与 total 必须一致)
		view, err := toView(task)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}

	return views, total, nil
}

// Apply 应用任务(草稿 -> 已应用)
// 生成全新的 ID,保留 Code,删除同 Code 的全部旧记录后落入新记录
// 删除与新增在同一事务中执行,避免崩溃后任务族短暂没有已应用记录
func (s *taskService) Apply(ctx context.Context, projectID, id string) (*TaskView, error) {
	if projectID == "" {
		return nil, errs.EmptyValue("project ID")
	}
	if err := utils.ValidateID(id); err != nil {
		return nil, errs.InvalidValue("invalid task ID: %v", err)
	}

	task, err := s.repo.FindByID(projectID, id)
	if err != nil {
		return nil, errs.FromStore(err)
	}

	now := time.Now()
	promoted := *task
	promoted.ID = uuid.NewString()
	promoted.Stage = string(model.StageApplied)
	promoted.AppliedAt = &now
	promoted.UpdatedAt = now

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		// 取代步骤: 同 Code 的旧记录(包括被应用的草稿本身)全部移除
		// 不存在旧记录时删除是空操作,不算错误
		if err := txRepo.DeleteByCode(projectID, task.Code); err != nil {
			return err
		}
		return txRepo.Create(&promoted)
	})
	if err != nil {
		return nil, errs.FromStore(err)
	}

	metrics.RecordTaskApplied(promoted.Category)
	s.publish(websocket.EventTaskApplied, &promoted)

	return toView(&promoted)
}

// GenerateSchema 从选中的源表生成目标表结构
// 独立操作,不读写任务存储;数据源和资源引用仅作为上下文透传
func (s *taskService) GenerateSchema(ctx context.Context, req *GenerateSchemaRequest) (*model.TableSchema, error) {
	if req == nil {
		return nil, errs.EmptyValue("request")
	}
	if req.DatasourceID == "" {
		return nil, errs.EmptyValue("datasource ID")
	}
	if req.ResourceID == "" {
		return nil, errs.EmptyValue("resource ID")
	}

	target, err := schema.Generate(req.SelectedTables)
	if err != nil {
		return nil, err
	}

	metrics.RecordSchemaGenerated()
	return target, nil
}

// validateCreateRequest 创建请求的字段级校验
// 字段校验在本地完成,不触发任何存储调用
func validateCreateRequest(projectID string, req *CreateTaskRequest) error {
	if projectID == "" {
		return errs.EmptyValue("project ID")
	}
	if req == nil {
		return errs.EmptyValue("request")
	}
	if err := utils.ValidateTaskName(req.Name); err != nil {
		return errs.InvalidValue("invalid task name: %v", err)
	}
	if utf8.RuneCountInString(req.Description) > model.MaxTaskDescriptionLen {
		return errs.InvalidValue("description exceeds %d characters", model.MaxTaskDescriptionLen)
	}
	if !req.Category.Valid() {
		return errs.InvalidValue("unknown category %q", req.Category)
	}
	if !req.CollectType.Valid() {
		return errs.InvalidValue("unknown collect type %q", req.CollectType)
	}
	if req.DatasourceID == "" {
		return errs.EmptyValue("datasource ID")
	}
	if req.ResourceID == "" {
		return errs.EmptyValue("resource ID")
	}
	if req.Rule == nil {
		return errs.EmptyValue("rule")
	}
	return nil
}

// publish 广播任务事件,hub 未配置时忽略
func (s *taskService) publish(eventType string, task *model.TaskModel) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(&websocket.TaskEvent{
		Type:      eventType,
		ProjectID: task.ProjectID,
		TaskID:    task.ID,
		Code:      task.Code,
		Stage:     task.Stage,
		Timestamp: time.Now(),
	})
}

// toView 将数据模型转换为只读视图
func toView(task *model.TaskModel) (*TaskView, error) {
	var rule model.CollectionRule
	if err := json.Unmarshal(task.Rule, &rule); err != nil {
		return nil, errs.Internal("failed to decode rule", err)
	}

	return &TaskView{
		ID:           task.ID,
		Code:         task.Code,
		ProjectID:    task.ProjectID,
		Name:         task.Name,
		Description:  task.Description,
		Category:     model.TaskCategory(task.Category),
		CollectType:  model.CollectType(task.CollectType),
		DatasourceID: task.DatasourceID,
		ResourceID:   task.ResourceID,
		Rule:         &rule,
		Stage:        model.TaskStage(task.Stage),
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
		AppliedAt:    task.AppliedAt,
	}, nil
}
