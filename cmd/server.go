/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfops/collect-gin/internal/api"
	"github.com/dfops/collect-gin/internal/config"
	"github.com/dfops/collect-gin/internal/container"
	"github.com/dfops/collect-gin/internal/metrics"
	"github.com/dfops/collect-gin/internal/model"
	"github.com/dfops/collect-gin/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the Collect Gin API server.
The server will listen on the configured host and port,
and provide REST API interfaces for collection task management.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 2. 初始化日志
		if err := api.InitLogger(&cfg.Log); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// 3. 初始化链路追踪
		if cfg.Tracing.Enabled {
			if err := api.InitTracing("collect-gin", cfg.Tracing.JaegerEndpoint); err != nil {
				return fmt.Errorf("failed to initialize tracing: %w", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := api.ShutdownTracing(ctx); err != nil {
					log.Printf("failed to shutdown tracing: %v", err)
				}
			}()
		}

		// 4. 初始化容器（数据库、迁移、仓储、服务、事件中心）
		ctr, err := container.NewContainer(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 5. 周期性刷新数据库连接和任务阶段分布指标
		stopMetrics := startMetricsCollector(ctr)
		defer close(stopMetrics)

		// 6. 限流器,阈值支持热更新
		var limiter *api.RateLimiter
		if cfg.RateLimit.Enabled {
			limiter = api.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}

		// 7. 配置热更新,日志级别和限流阈值跟随配置文件变化
		if configPath != "" {
			watcher := config.NewWatcher(configPath, cfg, func(s config.HotSettings) {
				if level, err := logrus.ParseLevel(s.LogLevel); err == nil {
					api.SetLoggerLevel(level)
				}
				if limiter != nil {
					limiter.Update(s.RateLimit.RPS, s.RateLimit.Burst)
				}
			})
			if err := watcher.Start(); err != nil {
				log.Printf("config watcher disabled: %v", err)
			} else {
				defer watcher.Stop()
			}
		}

		// 8. 初始化控制器
		controllers := &api.Controllers{
			Task:       api.NewTaskController(ctr.TaskService()),
			Datasource: api.NewDatasourceController(ctr.DatasourceService()),
		}

		// 9. 设置路由
		router := api.SetupRoutes(ctr.DB(), ctr.Hub(), controllers, cfg, limiter)

		// 10. 启动服务器
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		// 启动服务器（在 goroutine 中）
		go func() {
			log.Printf("Server starting on %s", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()

		// 等待中断信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down server...")

		// 优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}

		log.Println("Server exited")
		return nil
	},
}

// startMetricsCollector 启动指标采集循环
// 定期刷新数据库连接数和任务阶段分布,关闭返回的 channel 停止采集
func startMetricsCollector(ctr *container.Container) chan struct{} {
	stop := make(chan struct{})

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_ = metrics.UpdateDatabaseConnections(ctr.DB())
				for _, stage := range []model.TaskStage{model.StageDraft, model.StageApplied} {
					s := stage
					total, err := ctr.TaskRepository().CountAll(&repository.TaskFilter{Stage: &s})
					if err != nil {
						continue
					}
					metrics.UpdateTasksByStage(string(stage), float64(total))
				}
			case <-stop:
				return
			}
		}
	}()

	return stop
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// 服务器配置标志
	serverCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
	serverCmd.Flags().String("host", "0.0.0.0", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
}

// LoadConfig 加载配置
func LoadConfig(configPath string) (*config.Config, error) {
	return config.Load(configPath)
}
