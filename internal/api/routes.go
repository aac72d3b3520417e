package api

import (
	"net/http"

	"github.com/dfops/collect-gin/internal/config"
	"github.com/dfops/collect-gin/internal/metrics"
	"github.com/dfops/collect-gin/internal/websocket"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "github.com/dfops/collect-gin/docs" // 导入生成的 docs 包
)

// Controllers 路由绑定的控制器集合
type Controllers struct {
	Task       *TaskController
	Datasource *DatasourceController
}

// SetupRoutes 配置路由
// limiter 为 nil 时不启用限流
func SetupRoutes(db *gorm.DB, hub *websocket.Hub, controllers *Controllers, cfg *config.Config, limiter *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	if cfg.Tracing.Enabled {
		router.Use(TracingMiddleware())
	}
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
	if limiter != nil {
		router.Use(limiter.Middleware())
	}

	// 健康检查
	healthController := NewHealthController(db)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// 任务事件订阅
	if hub != nil {
		router.GET("/ws/projects/:project/tasks", websocket.Handler(hub))
	}

	// Swagger UI 路由
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组,所有业务路由都要求项目作用域
	v1 := router.Group("/api/v1")
	v1.Use(ProjectScopeMiddleware())
	{
		// 任务管理路由
		tasks := v1.Group("/tasks")
		{
			tasks.POST("", controllers.Task.Create)
			tasks.GET("", controllers.Task.List)
			tasks.GET("/:id", controllers.Task.Get)
			tasks.PUT("/:id", controllers.Task.Update)
			tasks.DELETE("/:id", controllers.Task.Delete)

			// 具体路径的路由（必须在 /:id 之后,Gin 会优先匹配更长的路径）
			tasks.POST("/:id/apply", controllers.Task.Apply)
		}

		// 目标表结构生成
		schemas := v1.Group("/schemas")
		{
			schemas.POST("/generate", controllers.Task.GenerateSchema)
		}

		// 数据源管理路由
		datasources := v1.Group("/datasources")
		{
			datasources.POST("", controllers.Datasource.Create)
			datasources.GET("", controllers.Datasource.List)
			datasources.GET("/:id", controllers.Datasource.Get)
			datasources.DELETE("/:id", controllers.Datasource.Delete)
		}
	}

	// 自定义 NoRoute 处理器,返回 JSON 格式的 404
	// 必须在所有业务路由注册之后设置,确保未匹配的路由返回 JSON 而不是 HTML
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}
