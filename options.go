package audiomgr

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-audiomgr/config"
	"github.com/dep2p/go-audiomgr/internal/core/dispatcher"
	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置，未设置时使用 config.NewConfig()
	config *config.Config

	// 预设，在 config 之后应用
	preset string

	// 日志文件
	logFile string

	// 指标注册器
	registerer prometheus.Registerer

	// 追加的 fx 模块（插件、监听器、格式策略）
	modules []fx.Option
}

func newOptions() *options {
	return &options{}
}

// resolveConfig 合成最终配置
func (o *options) resolveConfig() (*config.Config, error) {
	cfg := config.CloneConfig(o.config)
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := config.ApplyPreset(cfg, o.preset); err != nil {
		return nil, err
	}
	if o.logFile != "" {
		cfg.Log.File = o.logFile
	}
	return cfg, nil
}

// WithConfig 使用完整配置
//
// 后续的 WithPreset、WithLogFile 在此基础上覆盖。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithPreset 应用预设："default"、"embedded" 或 "test"
func WithPreset(name string) Option {
	return func(o *options) error {
		switch name {
		case "", "default", "embedded", "test":
			o.preset = name
			return nil
		default:
			return fmt.Errorf("unknown preset: %s", name)
		}
	}
}

// WithLogFile 把日志写入文件
func WithLogFile(path string) Option {
	return func(o *options) error {
		o.logFile = path
		return nil
	}
}

// WithRegisterer 使用调用方的 Prometheus 注册器
//
// 注册器同时实现 prometheus.Gatherer 时，Manager.Gatherer() 返回它。
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithPlugin 登记负责 domainID 的插件
//
// 同一个域登记两次时 New 返回错误。
func WithPlugin(domainID types.DomainID, p pkgif.RoutingPlugin) Option {
	return func(o *options) error {
		if p == nil {
			return ErrNilPlugin
		}
		o.modules = append(o.modules, dispatcher.ProvidePlugin(domainID, p))
		return nil
	}
}

// WithAckListener 登记确认监听器，可多次调用
func WithAckListener(l pkgif.AckListener) Option {
	return func(o *options) error {
		if l == nil {
			return errors.New("nil ack listener")
		}
		o.modules = append(o.modules, dispatcher.ProvideAckListener(l))
		return nil
	}
}

// WithFormatChooser 设置连接格式偏好策略
//
// 未设置时按音源格式列表的原始顺序尝试。只能设置一次。
func WithFormatChooser(c pkgif.FormatChooser) Option {
	return func(o *options) error {
		if c == nil {
			return errors.New("nil format chooser")
		}
		o.modules = append(o.modules, fx.Provide(func() pkgif.FormatChooser { return c }))
		return nil
	}
}
