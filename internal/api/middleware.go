package api

import (
	"net/http"
	"time"

	"github.com/dfops/collect-gin/internal/metrics"
	"github.com/dfops/collect-gin/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// projectIDKey 项目作用域在请求上下文中的键
const projectIDKey = "project_id"

// RequestIDMiddleware 请求 ID 中间件
// 透传客户端带来的 X-Request-ID,没有则生成一个
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestLogMiddleware 请求日志中间件
func RequestLogMiddleware() gin.HandlerFunc {
	logger := GetLogger()

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		requestID := c.GetString("request_id")

		// 记录 Prometheus 指标
		metrics.RecordAPIRequest(method, path, status, latency.Seconds())

		// 使用结构化日志记录请求信息
		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     method,
			"path":       path,
			"status":     status,
			"latency":    latency.String(),
			"ip":         c.ClientIP(),
		})

		// 根据状态码选择日志级别
		if status >= 500 {
			entry.Error("API request")
		} else if status >= 400 {
			entry.Warn("API request")
		} else {
			entry.Info("API request")
		}
	}
}

// ProjectScopeMiddleware 项目作用域中间件
// 所有任务和数据源操作都以 X-Project-ID 为隔离边界
func ProjectScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.GetHeader("X-Project-ID")
		if projectID == "" {
			Error(c, http.StatusBadRequest, "missing project scope", "X-Project-ID header is required")
			c.Abort()
			return
		}
		if err := utils.ValidateProjectID(projectID); err != nil {
			Error(c, http.StatusBadRequest, "invalid project scope", err.Error())
			c.Abort()
			return
		}
		c.Set(projectIDKey, projectID)
		c.Next()
	}
}

// ProjectID 从请求上下文取出项目 ID
func ProjectID(c *gin.Context) string {
	return c.GetString(projectIDKey)
}

// RateLimiter 全局限流器
// 阈值可在运行时调整,配合配置热更新使用
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter 创建限流器
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Update 调整限流阈值,对后续请求即时生效
func (r *RateLimiter) Update(rps float64, burst int) {
	r.limiter.SetLimit(rate.Limit(rps))
	r.limiter.SetBurst(burst)
}

// Middleware 限流中间件
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Code:    429,
				Message: "too many requests",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CORSMiddleware CORS 中间件
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		// 检查是否允许所有源
		allowAll := false
		for _, allowedOrigin := range allowedOrigins {
			if allowedOrigin == "*" {
				allowAll = true
				break
			}
		}

		if allowAll {
			// 允许所有源时,不能设置 credentials
			c.Header("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowedOrigin := range allowedOrigins {
				if allowedOrigin == origin && origin != "" {
					c.Header("Access-Control-Allow-Origin", origin)
					c.Header("Access-Control-Allow-Credentials", "true")
					break
				}
			}
		}

		// 设置其他 CORS 头
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-Project-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400") // 24 小时

		// 处理预检请求
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
