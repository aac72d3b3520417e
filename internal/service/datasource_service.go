package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dfops/collect-gin/internal/errs"
	"github.com/dfops/collect-gin/internal/model"
	"github.com/dfops/collect-gin/internal/repository"
	"github.com/dfops/collect-gin/internal/utils"
	"github.com/google/uuid"
)

// DatasourceService 数据源服务接口
// 数据源是被动的值对象,本服务只做登记,不做连接测试或元数据探查
type DatasourceService interface {
	Create(ctx context.Context, projectID string, req *CreateDatasourceRequest) (*DatasourceView, error)
	Get(ctx context.Context, projectID, id string) (*DatasourceView, error)
	List(ctx context.Context, projectID string) ([]*DatasourceView, error)
	Delete(ctx context.Context, projectID, id string) error
}

// CreateDatasourceRequest 创建数据源请求
// @Description 创建数据源的请求参数
type CreateDatasourceRequest struct {
	Name        string          `json:"name" example:"orders-mysql" binding:"required"` // 数据源名称
	Description string          `json:"description" example:"订单库"`                      // 数据源描述
	SourceType  string          `json:"source_type" example:"mysql" binding:"required"` // 数据源类型
	Config      json.RawMessage `json:"config" swaggertype:"object"`                    // 连接配置
}

// DatasourceView 数据源只读视图
// @Description 数据源的只读投影
type DatasourceView struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	SourceType  string          `json:"source_type"`
	Config      json.RawMessage `json:"config,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// datasourceService 数据源服务实现
type datasourceService struct {
	repo repository.DatasourceRepository
}

// NewDatasourceService 创建数据源服务
func NewDatasourceService(repo repository.DatasourceRepository) DatasourceService {
	return &datasourceService{repo: repo}
}

// Create 登记数据源
func (s *datasourceService) Create(ctx context.Context, projectID string, req *CreateDatasourceRequest) (*DatasourceView, error) {
	if projectID == "" {
		return nil, errs.EmptyValue("project ID")
	}
	if req == nil {
		return nil, errs.EmptyValue("request")
	}
	if err := utils.ValidateTaskName(req.Name); err != nil {
		return nil, errs.InvalidValue("invalid datasource name: %v", err)
	}
	if !validSourceType(req.SourceType) {
		return nil, errs.InvalidValue("unknown source type %q", req.SourceType)
	}

	now := time.Now()
	ds := &model.DatasourceModel{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		SourceType:  req.SourceType,
		Config:      req.Config,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Save(ds); err != nil {
		return nil, errs.FromStore(err)
	}

	return toDatasourceView(ds), nil
}

// Get 获取数据源详情
func (s *datasourceService) Get(ctx context.Context, projectID, id string) (*DatasourceView, error) {
	if projectID == "" {
		return nil, errs.EmptyValue("project ID")
	}
	ds, err := s.repo.FindByID(projectID, id)
	if err != nil {
		return nil, errs.FromStore(err)
	}
	return toDatasourceView(ds), nil
}

// List 列出项目下的数据源
func (s *datasourceService) List(ctx context.Context, projectID string) ([]*DatasourceView, error) {
	if projectID == "" {
		return nil, errs.EmptyValue("project ID")
	}
	list, err := s.repo.FindAll(projectID)
	if err != nil {
		return nil, errs.FromStore(err)
	}
	views := make([]*DatasourceView, 0, len(list))
	for _, ds := range list {
		views = append(views, toDatasourceView(ds))
	}
	return views, nil
}

// Delete 删除数据源
func (s *datasourceService) Delete(ctx context.Context, projectID, id string) error {
	if projectID == "" {
		return errs.EmptyValue("project ID")
	}
	if _, err := s.repo.FindByID(projectID, id); err != nil {
		return errs.FromStore(err)
	}
	if err := s.repo.DeleteByID(projectID, id); err != nil {
		return errs.FromStore(err)
	}
	return nil
}

// validSourceType 判断数据源类型是否合法
func validSourceType(t string) bool {
	switch t {
	case model.DatasourceTypeMySQL, model.DatasourceTypePostgres,
		model.DatasourceTypeApi, model.DatasourceTypeCrawler:
		return true
	}
	return false
}

// toDatasourceView 将数据模型转换为只读视图
func toDatasourceView(ds *model.DatasourceModel) *DatasourceView {
	return &DatasourceView{
		ID:          ds.ID,
		ProjectID:   ds.ProjectID,
		Name:        ds.Name,
		Description: ds.Description,
		SourceType:  ds.SourceType,
		Config:      ds.Config,
		CreatedAt:   ds.CreatedAt,
		UpdatedAt:   ds.UpdatedAt,
	}
}
