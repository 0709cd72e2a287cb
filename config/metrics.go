package config

import (
	"fmt"
	"strings"
)

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否注册 Prometheus 指标
	Enabled bool `json:"enabled"`

	// Addr 指标 HTTP 监听地址，为空时不启动
	Addr string `json:"addr,omitempty"`

	// Path 指标路径
	Path string `json:"path,omitempty"`
}

// DefaultMetricsConfig 默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enabled: true, Path: "/metrics"}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if c.Addr != "" && !c.Enabled {
		return fmt.Errorf("%w: metrics.addr set while metrics disabled", ErrInvalidConfig)
	}
	if c.Path != "" && !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("%w: metrics.path must start with /", ErrInvalidConfig)
	}
	return nil
}
