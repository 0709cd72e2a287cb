// Package app 提供音频路由核心的应用编排层
//
// app 包负责：
// - fx 模块组装
// - 日志输出设置
// - 生命周期管理
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-audiomgr/config"
	"github.com/dep2p/go-audiomgr/pkg/lib/log"
)

var logger = log.Logger("app")

// Bootstrap 应用引导程序
//
// Bootstrap 负责：
// - 校验配置
// - 组装 fx 模块
// - 管理应用生命周期
type Bootstrap struct {
	config     *config.Config
	extra      []fx.Option
	registerer prometheus.Registerer
	build      BuildOptions

	fxApp   *fx.App
	logFile *os.File
	rt      Runtime
}

// NewBootstrap 创建引导程序，cfg 为 nil 时使用默认配置
func NewBootstrap(cfg *config.Config, opts ...BootstrapOption) *Bootstrap {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	b := &Bootstrap{
		config: cfg,
		build:  DefaultBuildOptions(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build 构建并启动 fx 应用
//
// 启动后路由图已完成首次加载，分发器已登记全部插件。
func (b *Bootstrap) Build(ctx context.Context) (*Runtime, error) {
	if err := config.ValidateAll(b.config); err != nil {
		return nil, err
	}

	// 日志必须在所有模块初始化之前设置
	if err := b.setupLogging(); err != nil {
		return nil, fmt.Errorf("设置日志失败: %w", err)
	}

	b.fxApp = fx.New(
		fx.Options(b.setupModules()...),
		fx.NopLogger,
		fx.Populate(&b.rt.Store, &b.rt.Router, &b.rt.Dispatcher),
		fx.Invoke(func(p runtimeParams) {
			b.rt.Gatherer = p.Gatherer
			b.rt.Metrics = p.Server
		}),
	)
	if err := b.fxApp.Err(); err != nil {
		_ = b.closeLogFile()
		return nil, fmt.Errorf("组装模块失败: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, b.build.StartTimeout)
	defer cancel()
	if err := b.fxApp.Start(startCtx); err != nil {
		_ = b.closeLogFile()
		return nil, fmt.Errorf("启动应用失败: %w", err)
	}

	logger.Info("应用已启动",
		"domains", len(b.rt.Store.ListDomains()),
		"plugins", len(b.rt.Dispatcher.Plugins().Domains()))

	rt := b.rt
	rt.stop = b.Stop
	return &rt, nil
}

// Stop 停止应用
func (b *Bootstrap) Stop(ctx context.Context) error {
	if b.fxApp == nil {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, b.build.StopTimeout)
	defer cancel()

	err := b.fxApp.Stop(stopCtx)
	logger.Info("应用已停止")
	return multierr.Append(err, b.closeLogFile())
}

// setupModules 组装所有 fx 模块
func (b *Bootstrap) setupModules() []fx.Option {
	return []fx.Option{
		// 配置
		fx.Supply(b.config),

		// 基础层：事件总线、实体存储
		CoreModules(),

		// 指标
		MetricsModule(b.config.Metrics, b.registerer),

		// 业务层：路由、分发
		RoutingModules(),

		// 调用方追加的插件、监听器等
		fx.Options(b.extra...),
	}
}

// setupLogging 配置日志输出
//
// 指定了日志文件时所有日志写入该文件，否则写标准错误。
func (b *Bootstrap) setupLogging() error {
	level, err := log.ParseLevel(b.config.Log.Level)
	if err != nil {
		return err
	}

	out := os.Stderr
	if b.config.Log.File != "" {
		file, err := os.OpenFile(b.config.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		b.logFile = file
		out = file
	}

	log.SetOutputWithLevel(out, level, b.config.Log.JSON)
	if b.logFile != nil {
		logger.Info("日志文件初始化成功", "path", b.config.Log.File)
	}
	return nil
}

func (b *Bootstrap) closeLogFile() error {
	if b.logFile == nil {
		return nil
	}
	log.SetOutputWithLevel(os.Stderr, log.LevelInfo, false)
	err := b.logFile.Close()
	b.logFile = nil
	return err
}
