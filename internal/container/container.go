package container

import (
	"fmt"
	"time"

	"github.com/dfops/collect-gin/internal/config"
	"github.com/dfops/collect-gin/internal/database"
	"github.com/dfops/collect-gin/internal/repository"
	"github.com/dfops/collect-gin/internal/service"
	"github.com/dfops/collect-gin/internal/websocket"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理所有应用依赖,服务通过构造函数显式接收依赖,不使用服务定位器
type Container struct {
	db                *gorm.DB
	hub               *websocket.Hub
	taskRepo          repository.TaskRepository
	datasourceRepo    repository.DatasourceRepository
	taskService       service.TaskService
	datasourceService service.DatasourceService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化数据库（带重试机制）
	// 默认重试 3 次,初始间隔 1 秒,指数退避
	var db *gorm.DB
	var err error
	if config.IsProduction(cfg) {
		db, err = database.ConnectProduction(cfg.Database)
	} else {
		db, err = database.ConnectWithRetry(cfg.Database, 3, time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. 初始化事件广播中心
	hub := websocket.NewHub()
	go hub.Run()

	// 3. 初始化仓储
	taskRepo := repository.NewTaskRepository(db)
	datasourceRepo := repository.NewDatasourceRepository(db)

	// 4. 初始化服务
	taskService := service.NewTaskService(taskRepo, db, hub)
	datasourceService := service.NewDatasourceService(datasourceRepo)

	return &Container{
		db:                db,
		hub:               hub,
		taskRepo:          taskRepo,
		datasourceRepo:    datasourceRepo,
		taskService:       taskService,
		datasourceService: datasourceService,
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Hub 获取事件广播中心
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// TaskRepository 获取任务仓储
func (c *Container) TaskRepository() repository.TaskRepository {
	return c.taskRepo
}

// DatasourceRepository 获取数据源仓储
func (c *Container) DatasourceRepository() repository.DatasourceRepository {
	return c.datasourceRepo
}

// TaskService 获取任务服务
func (c *Container) TaskService() service.TaskService {
	return c.taskService
}

// DatasourceService 获取数据源服务
func (c *Container) DatasourceService() service.DatasourceService {
	return c.datasourceService
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return nil
}
