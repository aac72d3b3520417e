package api

import (
	"net/http"
	"strconv"

	"github.com/dfops/collect-gin/internal/model"
	"github.com/dfops/collect-gin/internal/service"
	"github.com/dfops/collect-gin/internal/utils"
	"github.com/gin-gonic/gin"
)

// TaskController 采集任务控制器
type TaskController struct {
	taskService service.TaskService
}

// NewTaskController 创建任务控制器
func NewTaskController(taskService service.TaskService) *TaskController {
	return &TaskController{
		taskService: taskService,
	}
}

// validateTaskID 验证任务 ID 并返回错误响应（如果无效）
func (c *TaskController) validateTaskID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid task ID", err.Error())
		return false
	}
	return true
}

// Create 创建任务
// @Summary      创建采集任务
// @Description  以草稿态创建新的采集任务,规则变体必须与类别和采集方式兼容
// @Tags         任务管理
// @Accept       json
// @Produce      json
// @Param        X-Project-ID header string true "项目 ID"
// @Param        request body service.CreateTaskRequest true "任务信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tasks [post]
func (c *TaskController) Create(ctx *gin.Context) {
	var req service.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	task, err := c.taskService.Create(ctx.Request.Context(), ProjectID(ctx), &req)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, task)
}

// Get 获取任务
// @Summary      获取任务详情
// @Description  根据 ID 获取任务详情
// @Tags         任务管理
// @Accept       json
// @Produce      json
// @Param        X-Project-ID header string true "项目 ID"
// @Param        id path string true "任务 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tasks/{id} [get]
func (c *TaskController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateTaskID(ctx, id) {
		return
	}

	task, err := c.taskService.Get(ctx.Request.Context(), ProjectID(ctx), id)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, task)
}

// Update 更新任务
// @Summary      更新草稿态任务
// @Description  只有草稿态任务可以更新,且只更新请求中出现的字段
// @Tags         任务管理
// @Accept       json
// @Produce      json
// @Param        X-Project-ID header string true "项目 ID"
// @Param        id path string true "任务 ID"
// @Param        request body service.UpdateTaskRequest true "更新信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tasks/{id} [put]
func (c *TaskController) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateTaskID(ctx, id) {
		return
	}

	var req service.UpdateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	req.ID = id

	task, err := c.taskService.Update(ctx.Request.Context(), ProjectID(ctx), &req)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, task)
}

// Delete 删除任务
// @Summary      删除任务
// @Description  按 ID 定位任务后删除其整个任务族(同 code 的全部记录)
// @Tags         任务管理
// @Accept       json
// @Produce      json
// @Param        X-Project-ID header string true "项目 ID"
// @Param        id path string true "任务 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tasks/{id} [delete]
func (c *TaskController) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateTaskID(ctx, id) {
		return
	}

	if err := c.taskService.Delete(ctx.Request.Context(), ProjectID(ctx), id); err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// List 任务列表
// @Summary      查询任务列表
// @Description  按阶段、类别、采集方式和名称关键字过滤,分页返回
// @Tags         任务管理
// @Accept       json
// @Produce      json
// @Param        X-Project-ID header string true "项目 ID"
// @Param        page query int false "页码,从 1 开始" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        stage query string false "阶段过滤" Enums(draft, applied)
// @Param        category query string false "类别过滤" Enums(database, api, crawler)
// @Param        collect_type query string false "采集方式过滤" Enums(full, incremental)
// @Param        keyword query string false "名称关键字"
// @Success      200  {object}  PaginatedResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tasks [get]
func (c *TaskController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))

	filter := &service.ListTasksFilter{
		Page:     page,
		PageSize: pageSize,
	}
	if v := ctx.Query("stage"); v != "" {
		stage := model.TaskStage(v)
		if !stage.Valid() {
			Error(ctx, http.StatusBadRequest, "invalid stage", "stage must be draft or applied")
			return
		}
		filter.Stage = &stage
	}
	if v := ctx.Query("category"); v != "" {
		category := model.TaskCategory(v)
		if !category.Valid() {
			Error(ctx, http.StatusBadRequest, "invalid category", "category must be database, api or crawler")
			return
		}
		filter.Category = &category
	}
	if v := ctx.Query("collect_type"); v != "" {
		collectType := model.CollectType(v)
		if !collectType.Valid() {
			Error(ctx, http.StatusBadRequest, "invalid collect type", "collect_type must be full or incremental")
			return
		}
		filter.CollectType = &collectType
	}
	if v := ctx.Query("keyword"); v != "" {
		filter.Keyword = &v
	}

	tasks, total, err := c.taskService.List(ctx.Request.Context(), ProjectID(ctx), filter)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	totalPage := int((total + int64(pageSize) - 1) / int64(pageSize))

	Paginated(ctx, tasks, PaginationInfo{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// Apply 应用任务
// @Summary      应用任务
// @Description  将任务从草稿态提升为已应用态,生成新 ID 并取代同 code 的旧记录
// @Tags         任务管理
// @Accept       json
// @Produce      json
// @Param        X-Project-ID header string true "项目 ID"
// @Param        id path string true "任务 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tasks/{id}/apply [post]
func (c *TaskController) Apply(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateTaskID(ctx, id) {
		return
	}

	task, err := c.taskService.Apply(ctx.Request.Context(), ProjectID(ctx), id)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, task)
}

// GenerateSchema 生成目标表结构
// @Summary      生成目标表结构
// @Description  从选中的源表派生目标表结构,独立操作,不读写任务存储
// @Tags         任务管理
// @Accept       json
// @Produce      json
// @Param        X-Project-ID header string true "项目 ID"
// @Param        request body service.GenerateSchemaRequest true "生成请求"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /schemas/generate [post]
func (c *TaskController) GenerateSchema(ctx *gin.Context) {
	var req service.GenerateSchemaRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	target, err := c.taskService.GenerateSchema(ctx.Request.Context(), &req)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, target)
}
