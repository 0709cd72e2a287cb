package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-audiomgr/config"
)

// BootstrapOption Bootstrap 配置选项
type BootstrapOption func(*Bootstrap)

// WithConfig 设置配置
func WithConfig(cfg *config.Config) BootstrapOption {
	return func(b *Bootstrap) {
		if cfg != nil {
			b.config = cfg
		}
	}
}

// WithModules 追加 fx 模块，例如 dispatcher.ProvidePlugin
func WithModules(opts ...fx.Option) BootstrapOption {
	return func(b *Bootstrap) {
		b.extra = append(b.extra, opts...)
	}
}

// WithRegisterer 使用调用方的指标注册器
func WithRegisterer(reg prometheus.Registerer) BootstrapOption {
	return func(b *Bootstrap) {
		b.registerer = reg
	}
}

// WithBuildOptions 设置构建选项
func WithBuildOptions(o BuildOptions) BootstrapOption {
	return func(b *Bootstrap) {
		if o.StartTimeout > 0 {
			b.build.StartTimeout = o.StartTimeout
		}
		if o.StopTimeout > 0 {
			b.build.StopTimeout = o.StopTimeout
		}
	}
}

// BuildOptions 构建选项
type BuildOptions struct {
	// StartTimeout 启动超时
	StartTimeout time.Duration

	// StopTimeout 停止超时
	StopTimeout time.Duration
}

// DefaultBuildOptions 默认构建选项
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		StartTimeout: 30 * time.Second,
		StopTimeout:  30 * time.Second,
	}
}
