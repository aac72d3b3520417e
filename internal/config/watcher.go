package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// HotSettings 支持热更新的配置子集
// 日志级别和限流阈值即时生效,其余配置项(监听端口、数据库连接等)
// 的变更需要重启进程
type HotSettings struct {
	LogLevel  string
	RateLimit RateLimitConfig
}

// hotSettingsOf 从完整配置提取热更新子集
func hotSettingsOf(cfg *Config) HotSettings {
	return HotSettings{
		LogLevel:  cfg.Log.Level,
		RateLimit: cfg.RateLimit,
	}
}

// Watcher 配置文件监听器
// 监听配置文件变更,只在热更新子集真正变化时触发回调,
// 编辑文件中的冷配置项不会产生通知
type Watcher struct {
	viper    *viper.Viper
	onChange func(HotSettings)

	mu      sync.RWMutex
	current HotSettings
	stopped bool
}

// NewWatcher 创建配置监听器
// 以当前配置的热更新子集作为比较基线
func NewWatcher(configPath string, cfg *Config, onChange func(HotSettings)) *Watcher {
	v := viper.New()
	// 文件中缺失的键回落到默认值,避免不完整的配置文件触发零值更新
	setDefaults(v)
	v.SetConfigFile(configPath)

	return &Watcher{
		viper:    v,
		onChange: onChange,
		current:  hotSettingsOf(cfg),
	}
}

// Start 启动配置监听
func (w *Watcher) Start() error {
	if err := w.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	w.viper.WatchConfig()
	w.viper.OnConfigChange(func(fsnotify.Event) {
		var cfg Config
		if err := w.viper.Unmarshal(&cfg); err != nil {
			// 文件处于编辑中间状态时可能暂时无法解析,等下一次变更
			return
		}
		next := hotSettingsOf(&cfg)

		w.mu.Lock()
		if w.stopped || next == w.current {
			w.mu.Unlock()
			return
		}
		w.current = next
		callback := w.onChange
		w.mu.Unlock()

		// 回调在锁外执行,避免回调内读取 Current 时死锁
		if callback != nil {
			callback(next)
		}
	})

	return nil
}

// Stop 停止配置监听
// 停止后文件变更不再触发回调
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
}

// Current 返回当前生效的热更新子集
func (w *Watcher) Current() HotSettings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}
