package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dfops/collect-gin/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadDefaults 测试无配置文件时加载默认值
func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "collect", cfg.Database.DBName)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 100.0, cfg.RateLimit.RPS)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "http://localhost:14268/api/traces", cfg.Tracing.JaegerEndpoint)
}

// TestLoadFromFile 测试从配置文件加载
func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 9090
database:
  dbname: collect_test
rate_limit:
  enabled: true
  rps: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "collect_test", cfg.Database.DBName)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 50.0, cfg.RateLimit.RPS)

	// 未覆盖的键保持默认值
	assert.Equal(t, "localhost", cfg.Database.Host)
}

// TestLoadMissingFile 测试指定的配置文件不存在时报错
func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load("/no/such/config.yaml")
	assert.Error(t, err)
}

// TestIsProduction 测试环境判断
func TestIsProduction(t *testing.T) {
	assert.False(t, config.IsProduction(nil))
	assert.False(t, config.IsProduction(&config.Config{Env: "development"}))
	assert.True(t, config.IsProduction(&config.Config{Env: "production"}))
}

// TestDefault 测试默认配置构造
func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
}
