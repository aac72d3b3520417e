package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/dfops/collect-gin/internal/errs"
	"github.com/dfops/collect-gin/internal/model"
	"github.com/dfops/collect-gin/internal/repository"
	"github.com/dfops/collect-gin/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTaskService 创建基于内存数据库的任务服务
func setupTaskService(t *testing.T) (service.TaskService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&model.TaskModel{})
	require.NoError(t, err)

	repo := repository.NewTaskRepository(db)
	return service.NewTaskService(repo, db, nil), db
}

// createRequest 构造一个合法的创建请求
func createRequest() *service.CreateTaskRequest {
	return &service.CreateTaskRequest{
		Name:         "orders-sync",
		Description:  "sync orders table",
		Category:     model.CategoryDatabase,
		CollectType:  model.CollectTypeFull,
		DatasourceID: "ds-001",
		ResourceID:   "res-001",
		Rule: &model.CollectionRule{
			Type: model.RuleTypeFullDatabase,
			FullDatabase: &model.FullDatabaseRule{
				SelectedTables: []model.TableSelection{
					{TableName: "orders", SelectedFields: []string{"id", "order_amount"}},
				},
			},
		},
	}
}

// countByCode 统计同一 code 下的记录数
func countByCode(t *testing.T, db *gorm.DB, projectID, code string) int64 {
	var total int64
	err := db.Model(&model.TaskModel{}).
		Where("project_id = ? AND code = ?", projectID, code).
		Count(&total).Error
	require.NoError(t, err)
	return total
}

// TestTaskServiceCreate 测试创建任务
func TestTaskServiceCreate(t *testing.T) {
	svc, _ := setupTaskService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, "proj-1", createRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.NotEmpty(t, view.Code)
	assert.NotEqual(t, view.ID, view.Code)
	assert.Equal(t, "proj-1", view.ProjectID)
	assert.Equal(t, "orders-sync", view.Name)
	assert.Equal(t, model.StageDraft, view.Stage)
	assert.Nil(t, view.AppliedAt)
	require.NotNil(t, view.Rule)
	assert.Equal(t, model.RuleTypeFullDatabase, view.Rule.Type)
}

// TestTaskServiceCreateValidation 测试创建请求校验
func TestTaskServiceCreateValidation(t *testing.T) {
	svc, db := setupTaskService(t)
	ctx := context.Background()

	// 名称为空
	req := createRequest()
	req.Name = ""
	_, err := svc.Create(ctx, "proj-1", req)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidValue, errs.KindOf(err))

	// 名称超长
	req = createRequest()
	long := make([]byte, model.MaxTaskNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	req.Name = string(long)
	_, err = svc.Create(ctx, "proj-1", req)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidValue, errs.KindOf(err))

	// 未知类别
	req = createRequest()
	req.Category = "warehouse"
	_, err = svc.Create(ctx, "proj-1", req)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidValue, errs.KindOf(err))

	// 规则缺失
	req = createRequest()
	req.Rule = nil
	_, err = svc.Create(ctx, "proj-1", req)
	require.Error(t, err)
	assert.Equal(t, errs.KindEmptyValue, errs.KindOf(err))

	// 校验失败时不应有任何记录落库
	var total int64
	require.NoError(t, db.Model(&model.TaskModel{}).Count(&total).Error)
	assert.Zero(t, total)
}

// TestTaskServiceCreateIncompatibleRule 测试规则不兼容时拒绝创建且不落库
func TestTaskServiceCreateIncompatibleRule(t *testing.T) {
	svc, db := setupTaskService(t)
	ctx := context.Background()

	req := createRequest()
	req.CollectType = model.CollectTypeIncremental // 规则仍是 full_database
	_, err := svc.Create(ctx, "proj-1", req)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidValue, errs.KindOf(err))

	var total int64
	require.NoError(t, db.Model(&model.TaskModel{}).Count(&total).Error)
	assert.Zero(t, total)
}

// TestTaskServiceGet 测试查询任务详情
func TestTaskServiceGet(t *testing.T) {
	svc, _ := setupTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "proj-1", createRequest())
	require.NoError(t, err)

	view, err := svc.Get(ctx, "proj-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, view.ID)
	assert.Equal(t, created.Code, view.Code)

	// 不存在的任务
	_, err = svc.Get(ctx, "proj-1", "no-such-task")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	// 项目隔离: 其他项目不可见
	_, err = svc.Get(ctx, "proj-2", created.ID)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

// TestTaskServiceUpdateDraft 测试更新草稿任务
func TestTaskServiceUpdateDraft(t *testing.T) {
	svc, _ := setupTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "proj-1", createRequest())
	require.NoError(t, err)

	name := "orders-sync-v2"
	desc := "updated description"
	view, err := svc.Update(ctx, "proj-1", &service.UpdateTaskRequest{
		ID:          created.ID,
		Name:        &name,
		Description: &desc,
	})
	require.NoError(t, err)

	assert.Equal(t, "orders-sync-v2", view.Name)
	assert.Equal(t, "updated description", view.Description)
	// 未出现在请求中的字段保持不变
	assert.Equal(t, created.Code, view.Code)
	assert.Equal(t, created.Category, view.Category)
	assert.Equal(t, model.StageDraft, view.Stage)
}

// TestTaskServiceUpdateAppliedRejected 测试已应用任务不可更新
func TestTaskServiceUpdateAppliedRejected(t *testing.T) {
	svc, _ := setupTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "proj-1", createRequest())
	require.NoError(t, err)

	applied, err := svc.Apply(ctx, "proj-1", created.ID)
	require.NoError(t, err)

	name := "should-fail"
	_, err = svc.Update(ctx, "proj-1", &service.UpdateTaskRequest{ID: applied.ID, Name: &name})
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidOperation, errs.KindOf(err))
}

// TestTaskServiceApply 测试应用任务
// 应用后生成全新 ID,保留 Code,阶段变为已应用并记录应用时间
func TestTaskServiceApply(t *testing.T) {
	svc, db := setupTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "proj-1", createRequest())
	require.NoError(t, err)

	applied, err := svc.Apply(ctx, "proj-1", created.ID)
	require.NoError(t, err)

	assert.NotEqual(t, created.ID, applied.ID)
	assert.Equal(t, created.Code, applied.Code)
	assert.Equal(t, model.StageApplied, applied.Stage)
	require.NotNil(t, applied.AppliedAt)

	// 旧草稿已被取代,同 code 只剩一条记录
	assert.Equal(t, int64(1), countByCode(t, db, "proj-1", created.Code))

	// 旧 ID 不再可见
	_, err = svc.Get(ctx, "proj-1", created.ID)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

// TestTaskServiceReapply 测试重复应用
// 再次应用取代上一次的已应用记录,同 code 始终只有一条
func TestTaskServiceReapply(t *testing.T) {
	svc, db := setupTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "proj-1", createRequest())
	require.NoError(t, err)

	first, err := svc.Apply(ctx, "proj-1", created.ID)
	require.NoError(t, err)

	second, err := svc.Apply(ctx, "proj-1", first.ID)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, model.StageApplied, second.Stage)
	assert.Equal(t, int64(1), countByCode(t, db, "proj-1", created.Code))
}

// TestTaskServiceApplyNotFound 测试应用不存在的任务
func TestTaskServiceApplyNotFound(t *testing.T) {
	svc, _ := setupTaskService(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "proj-1", "no-such-task")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

// TestTaskServiceDelete 测试删除任务族
// 按 ID 定位后按 code 删除,同族的全部记录一并移除
func TestTaskServiceDelete(t *testing.T) {
	svc, db := setupTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "proj-1", createRequest())
	require.NoError(t, err)

	applied, err := svc.Apply(ctx, "proj-1", created.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, "proj-1", applied.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(0), countByCode(t, db, "proj-1", created.Code))

	// 删除不存在的任务
	err = svc.Delete(ctx, "proj-1", applied.ID)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

// TestTaskServiceList 测试分页查询
func TestTaskServiceList(t *testing.T) {
	svc, _ := setupTaskService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		req := createRequest()
		_, err := svc.Create(ctx, "proj-1", req)
		require.NoError(t, err)
	}
	// 其他项目的任务不应出现在结果中
	_, err := svc.Create(ctx, "proj-2", createRequest())
	require.NoError(t, err)

	views, total, err := svc.List(ctx, "proj-1", &service.ListTasksFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, views, 2)

	views, total, err = svc.List(ctx, "proj-1", &service.ListTasksFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, views, 1)
}

// TestTaskServiceListFilters 测试过滤条件
func TestTaskServiceListFilters(t *testing.T) {
	svc, _ := setupTaskService(t)
	ctx := context.Background()

	dbReq := createRequest()
	dbReq.Name = "orders-sync"
	created, err := svc.Create(ctx, "proj-1", dbReq)
	require.NoError(t, err)

	apiReq := createRequest()
	apiReq.Name = "users-pull"
	apiReq.Category = model.CategoryApi
	apiReq.Rule = &model.CollectionRule{
		Type:    model.RuleTypeFullApi,
		FullApi: &model.FullApiRule{Path: "/api/users", Method: "GET"},
	}
	_, err = svc.Create(ctx, "proj-1", apiReq)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, "proj-1", created.ID)
	require.NoError(t, err)

	// 按阶段过滤
	applied := model.StageApplied
	views, total, err := svc.List(ctx, "proj-1", &service.ListTasksFilter{Stage: &applied})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, "orders-sync", views[0].Name)

	// 按类别过滤
	api := model.CategoryApi
	views, total, err = svc.List(ctx, "proj-1", &service.ListTasksFilter{Category: &api})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, "users-pull", views[0].Name)

	// 按名称关键字过滤
	keyword := "users"
	views, total, err = svc.List(ctx, "proj-1", &service.ListTasksFilter{Keyword: &keyword})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, "users-pull", views[0].Name)
}

// TestTaskServiceListCorruptRule 测试规则列损坏时列表查询整体失败
// 不能静默跳过损坏记录,否则页长与 total 不一致
func TestTaskServiceListCorruptRule(t *testing.T) {
	svc, db := setupTaskService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "proj-1", createRequest())
	require.NoError(t, err)

	// 直接写入一条规则列无法反序列化的记录
	corrupt := &model.TaskModel{
		ID:           "task-corrupt",
		Code:         "code-corrupt",
		ProjectID:    "proj-1",
		Name:         "corrupt",
		Category:     string(model.CategoryDatabase),
		CollectType:  string(model.CollectTypeFull),
		DatasourceID: "ds-001",
		ResourceID:   "res-001",
		Rule:         []byte(`{not json`),
		Stage:        string(model.StageDraft),
	}
	require.NoError(t, db.Create(corrupt).Error)

	_, _, err = svc.List(ctx, "proj-1", &service.ListTasksFilter{})
	require.Error(t, err)
	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
}

// TestTaskServiceMultibyteLimits 测试名称和描述长度按字符数计
func TestTaskServiceMultibyteLimits(t *testing.T) {
	svc, _ := setupTaskService(t)
	ctx := context.Background()

	// 64 个中文字符的名称合法(192 字节)
	req := createRequest()
	req.Name = strings.Repeat("集", 64)
	req.Description = strings.Repeat("述", 255)
	view, err := svc.Create(ctx, "proj-1", req)
	require.NoError(t, err)
	assert.Equal(t, req.Name, view.Name)

	// 超过 255 个字符的描述被拒绝
	req = createRequest()
	req.Description = strings.Repeat("述", 256)
	_, err = svc.Create(ctx, "proj-1", req)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidValue, errs.KindOf(err))
}

// TestTaskServiceGenerateSchema 测试生成目标表结构
func TestTaskServiceGenerateSchema(t *testing.T) {
	svc, _ := setupTaskService(t)
	ctx := context.Background()

	target, err := svc.GenerateSchema(ctx, &service.GenerateSchemaRequest{
		DatasourceID: "ds-001",
		ResourceID:   "res-001",
		SelectedTables: []model.TableSelection{
			{TableName: "orders", SelectedFields: []string{"id", "created_at"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "target_orders", target.TableName)
	require.Len(t, target.Fields, 2)

	// 数据源和资源引用必填
	_, err = svc.GenerateSchema(ctx, &service.GenerateSchemaRequest{
		ResourceID: "res-001",
		SelectedTables: []model.TableSelection{
			{TableName: "orders"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, errs.KindEmptyValue, errs.KindOf(err))

	// 空表选择
	_, err = svc.GenerateSchema(ctx, &service.GenerateSchemaRequest{
		DatasourceID: "ds-001",
		ResourceID:   "res-001",
	})
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidValue, errs.KindOf(err))
}
