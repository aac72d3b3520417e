package database

import (
	"context"
	"fmt"
	"time"

	"github.com/dfops/collect-gin/internal/config"
	"github.com/dfops/collect-gin/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig 获取连接池配置
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 600,  // 10 分钟
	}
}

// GetProductionPoolConfig 获取生产环境连接池配置
func GetProductionPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    20,
		MaxOpenConns:    200,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 300,  // 5 分钟（生产环境缩短空闲时间）
	}
}

// Connect 连接数据库
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return connect(cfg, GetPoolConfig())
}

// ConnectProduction 连接数据库（生产环境连接池配置）
func ConnectProduction(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return connect(cfg, GetProductionPoolConfig())
}

// connect 打开连接并应用连接池配置
// 配置中显式给出的连接池参数优先于默认值
func connect(cfg config.DatabaseConfig, defaults *PoolConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	pool := &PoolConfig{
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
	if pool.MaxIdleConns == 0 {
		pool.MaxIdleConns = defaults.MaxIdleConns
	}
	if pool.MaxOpenConns == 0 {
		pool.MaxOpenConns = defaults.MaxOpenConns
	}
	if pool.ConnMaxLifetime == 0 {
		pool.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	if pool.ConnMaxIdleTime == 0 {
		pool.ConnMaxIdleTime = defaults.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	// 检测数据库类型
	dialector := db.Dialector.Name()

	// SQLite 不支持 jsonb,需要手动创建表
	// GORM SQLite dialector 的名称可能是 "sqlite" 或 "sqlite3"
	if dialector == "sqlite" || dialector == "sqlite3" {
		if err := createSQLiteTables(db); err != nil {
			return fmt.Errorf("failed to create SQLite tables: %w", err)
		}
	} else {
		// PostgreSQL 等其他数据库使用 AutoMigrate
		if err := db.AutoMigrate(
			&model.TaskModel{},
			&model.DatasourceModel{},
		); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	// 创建索引
	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createSQLiteTables 为 SQLite 手动创建表（使用 TEXT 替代 jsonb）
func createSQLiteTables(db *gorm.DB) error {
	// 创建 collect_tasks 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS collect_tasks (
			id VARCHAR(64) PRIMARY KEY,
			code VARCHAR(64) NOT NULL,
			project_id VARCHAR(64) NOT NULL,
			name VARCHAR(64) NOT NULL,
			description VARCHAR(255),
			category VARCHAR(32) NOT NULL,
			collect_type VARCHAR(32) NOT NULL,
			datasource_id VARCHAR(64) NOT NULL,
			resource_id VARCHAR(64) NOT NULL,
			rule TEXT NOT NULL,
			stage VARCHAR(32) NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			applied_at DATETIME
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create collect_tasks table: %w", err)
	}

	// 创建 datasources 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS datasources (
			id VARCHAR(64) PRIMARY KEY,
			project_id VARCHAR(64) NOT NULL,
			name VARCHAR(64) NOT NULL,
			description VARCHAR(255),
			source_type VARCHAR(32) NOT NULL,
			config TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create datasources table: %w", err)
	}

	return nil
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	// 检测数据库类型
	dialector := db.Dialector.Name()

	// collect_tasks 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_project_code ON collect_tasks(project_id, code)").Error; err != nil {
		return fmt.Errorf("failed to create idx_tasks_project_code: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_project_stage ON collect_tasks(project_id, stage)").Error; err != nil {
		return fmt.Errorf("failed to create idx_tasks_project_stage: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_name ON collect_tasks(name)").Error; err != nil {
		return fmt.Errorf("failed to create idx_tasks_name: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON collect_tasks(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_tasks_created_at: %w", err)
	}

	// datasources 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_datasources_project ON datasources(project_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_datasources_project: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_datasources_name ON datasources(name)").Error; err != nil {
		return fmt.Errorf("failed to create idx_datasources_name: %w", err)
	}

	// PostgreSQL 特定的 GIN 索引
	if dialector == "postgres" {
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_rule_gin ON collect_tasks USING GIN (rule)").Error; err != nil {
			return fmt.Errorf("failed to create idx_tasks_rule_gin: %w", err)
		}
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_datasources_config_gin ON datasources USING GIN (config)").Error; err != nil {
			return fmt.Errorf("failed to create idx_datasources_config_gin: %w", err)
		}
	}

	return nil
}

// ConnectWithRetry 带重试的数据库连接
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		// 如果不是最后一次重试,等待后重试
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2 // 指数退避
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx) == nil
}

// Reconnect 重新连接数据库
func Reconnect(cfg config.DatabaseConfig, oldDB *gorm.DB) (*gorm.DB, error) {
	// 关闭旧连接
	if oldDB != nil {
		if sqlDB, err := oldDB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return Connect(cfg)
}
