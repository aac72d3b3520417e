package api

import (
	"net/http"

	"github.com/dfops/collect-gin/internal/service"
	"github.com/dfops/collect-gin/internal/utils"
	"github.com/gin-gonic/gin"
)

// DatasourceController 数据源控制器
type DatasourceController struct {
	datasourceService service.DatasourceService
}

// NewDatasourceController 创建数据源控制器
func NewDatasourceController(datasourceService service.DatasourceService) *DatasourceController {
	return &DatasourceController{
		datasourceService: datasourceService,
	}
}

// Create 登记数据源
// @Summary      登记数据源
// @Description  登记一个供采集任务引用的数据源,不做连接测试
// @Tags         数据源管理
// @Accept       json
// @Produce      json
// @Param        X-Project-ID header string true "项目 ID"
// @Param        request body service.CreateDatasourceRequest true "数据源信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /datasources [post]
func (c *DatasourceController) Create(ctx *gin.Context) {
	var req service.CreateDatasourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	ds, err := c.datasourceService.Create(ctx.Request.Context(), ProjectID(ctx), &req)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, ds)
}

// Get 获取数据源
// @Summary      获取数据源详情
// @Tags         数据源管理
// @Produce      json
// @Param        X-Project-ID header string true "项目 ID"
// @Param        id path string true "数据源 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /datasources/{id} [get]
func (c *DatasourceController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid datasource ID", err.Error())
		return
	}

	ds, err := c.datasourceService.Get(ctx.Request.Context(), ProjectID(ctx), id)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, ds)
}

// List 数据源列表
// @Summary      查询数据源列表
// @Tags         数据源管理
// @Produce      json
// @Param        X-Project-ID header string true "项目 ID"
// @Success      200  {object}  Response
// @Router       /datasources [get]
func (c *DatasourceController) List(ctx *gin.Context) {
	list, err := c.datasourceService.List(ctx.Request.Context(), ProjectID(ctx))
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, list)
}

// Delete 删除数据源
// @Summary      删除数据源
// @Tags         数据源管理
// @Produce      json
// @Param        X-Project-ID header string true "项目 ID"
// @Param        id path string true "数据源 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /datasources/{id} [delete]
func (c *DatasourceController) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid datasource ID", err.Error())
		return
	}

	if err := c.datasourceService.Delete(ctx.Request.Context(), ProjectID(ctx), id); err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}
