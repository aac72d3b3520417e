package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfops/collect-gin/internal/config"
)

// writeConfigFile 写入测试配置文件
func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
}

// TestWatcherNotifiesOnHotChange 测试热更新配置变更触发回调
func TestWatcherNotifiesOnHotChange(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, configPath, `
log:
  level: info
rate_limit:
  enabled: true
  rps: 50
  burst: 100
`)

	cfg, err := config.Load(configPath)
	require.NoError(t, err)

	var mu sync.Mutex
	var got []config.HotSettings

	watcher := config.NewWatcher(configPath, cfg, func(s config.HotSettings) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, s)
	})
	err = watcher.Start()
	require.NoError(t, err)
	defer watcher.Stop()

	// 等待监听就绪
	time.Sleep(100 * time.Millisecond)

	writeConfigFile(t, configPath, `
log:
  level: warn
rate_limit:
  enabled: true
  rps: 20
  burst: 40
`)

	// 等待文件变更事件传播
	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, got, "callback should fire on hot settings change")
	last := got[len(got)-1]
	assert.Equal(t, "warn", last.LogLevel)
	assert.Equal(t, float64(20), last.RateLimit.RPS)
	assert.Equal(t, 40, last.RateLimit.Burst)
	assert.Equal(t, last, watcher.Current())
}

// TestWatcherIgnoresColdChange 测试非热更新配置变更不触发回调
func TestWatcherIgnoresColdChange(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, configPath, `
server:
  port: 8080
log:
  level: info
`)

	cfg, err := config.Load(configPath)
	require.NoError(t, err)

	var mu sync.Mutex
	fired := false

	watcher := config.NewWatcher(configPath, cfg, func(config.HotSettings) {
		mu.Lock()
		defer mu.Unlock()
		fired = true
	})
	baseline := watcher.Current()
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)

	// 只修改需要重启才生效的配置项
	writeConfigFile(t, configPath, `
server:
  port: 9090
log:
  level: info
`)

	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, fired, "cold settings change should not fire callback")
	assert.Equal(t, baseline, watcher.Current())
}

// TestWatcherStop 测试停止后不再触发回调
func TestWatcherStop(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, configPath, `
log:
  level: info
`)

	cfg, err := config.Load(configPath)
	require.NoError(t, err)

	var mu sync.Mutex
	fired := false

	watcher := config.NewWatcher(configPath, cfg, func(config.HotSettings) {
		mu.Lock()
		defer mu.Unlock()
		fired = true
	})
	require.NoError(t, watcher.Start())

	time.Sleep(100 * time.Millisecond)
	watcher.Stop()

	writeConfigFile(t, configPath, `
log:
  level: error
`)

	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, fired, "callback should not fire after Stop")
}
