package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 任务创建数
	tasksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collect_tasks_created_total",
			Help: "Total number of collect tasks created",
		},
		[]string{"category"},
	)

	// 任务应用数
	tasksAppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collect_tasks_applied_total",
			Help: "Total number of collect tasks applied",
		},
		[]string{"category"},
	)

	// 任务删除数
	tasksDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "collect_tasks_deleted_total",
			Help: "Total number of collect tasks deleted",
		},
	)

	// 目标表结构生成数
	schemasGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "target_schemas_generated_total",
			Help: "Total number of target schemas generated",
		},
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	databaseConnectionsMax = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_max",
			Help: "Maximum number of database connections",
		},
	)

	// 任务阶段分布
	tasksByStage = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "collect_tasks_by_stage",
			Help: "Number of collect tasks by stage",
		},
		[]string{"stage"},
	)
)

var (
	once sync.Once
)

func init() {
	// 注册指标
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(tasksCreatedTotal)
	prometheus.MustRegister(tasksAppliedTotal)
	prometheus.MustRegister(tasksDeletedTotal)
	prometheus.MustRegister(schemasGeneratedTotal)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(databaseConnectionsMax)
	prometheus.MustRegister(tasksByStage)

	// 注册 Go 运行时指标（只注册一次）
	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordTaskCreated 记录任务创建
func RecordTaskCreated(category string) {
	tasksCreatedTotal.WithLabelValues(category).Inc()
}

// RecordTaskApplied 记录任务应用
func RecordTaskApplied(category string) {
	tasksAppliedTotal.WithLabelValues(category).Inc()
}

// RecordTaskDeleted 记录任务删除
func RecordTaskDeleted() {
	tasksDeletedTotal.Inc()
}

// RecordSchemaGenerated 记录目标表结构生成
func RecordSchemaGenerated() {
	schemasGeneratedTotal.Inc()
}

// UpdateDatabaseConnections 更新数据库连接数指标
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.OpenConnections - stats.Idle))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	databaseConnectionsMax.Set(float64(stats.MaxOpenConnections))

	return nil
}

// UpdateTasksByStage 更新任务阶段分布指标
func UpdateTasksByStage(stage string, count float64) {
	tasksByStage.WithLabelValues(stage).Set(count)
}
