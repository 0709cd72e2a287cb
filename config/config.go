// Package config 提供音频路由代理的统一配置
//
// 主 Config 由各组件的子配置组成，每个子配置在独立文件中定义：
//   - Routing: 路由搜索（路径数、环路上限、缓存）
//   - Dispatch: 操作分发（句柄池、准入上限）
//   - Log: 日志级别与输出
//   - Metrics: Prometheus 指标
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Routing.MaxPaths = 10
//
//	// 应用预设
//	config.ApplyPreset(cfg, "embedded")
//
//	// 从文件加载
//	cfg, err := config.LoadFile("audiomgr.json")
package config

import (
	"errors"

	"go.uber.org/multierr"
)

// ErrInvalidConfig 配置无效
var ErrInvalidConfig = errors.New("config: invalid")

// Config 音频路由代理的完整配置
type Config struct {
	// Routing 路由搜索配置
	Routing RoutingConfig `json:"routing"`

	// Dispatch 操作分发配置
	Dispatch DispatchConfig `json:"dispatch"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Routing:  DefaultRoutingConfig(),
		Dispatch: DefaultDispatchConfig(),
		Log:      DefaultLogConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// Validate 验证所有子配置，返回聚合错误
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	return multierr.Combine(
		c.Routing.Validate(),
		c.Dispatch.Validate(),
		c.Log.Validate(),
		c.Metrics.Validate(),
	)
}
