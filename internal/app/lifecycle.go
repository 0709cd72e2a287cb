package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// App 应用接口
//
// App 提供进程级别的生命周期管理：构建运行时、等待退出信号、优雅关闭。
type App interface {
	// Runtime 返回已启动的运行时
	Runtime() *Runtime

	// Wait 阻塞直到收到退出信号、ctx 结束或 Stop 被调用
	Wait(ctx context.Context)

	// Stop 停止应用
	Stop() error
}

// internalApp App 的内部实现
type internalApp struct {
	runtime     *Runtime
	stopTimeout time.Duration
	stopOnce    sync.Once
	stopped     chan struct{}
}

// RunApp 构建并启动运行时
//
// 示例:
//
//	a, err := app.RunApp(ctx, app.NewBootstrap(cfg))
//	if err != nil {
//	    return err
//	}
//	defer a.Stop()
//	a.Wait(ctx)
func RunApp(ctx context.Context, bootstrap *Bootstrap) (App, error) {
	rt, err := bootstrap.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("启动应用失败: %w", err)
	}

	return &internalApp{
		runtime:     rt,
		stopTimeout: bootstrap.build.StopTimeout,
		stopped:     make(chan struct{}),
	}, nil
}

// Runtime 返回运行时
func (a *internalApp) Runtime() *Runtime {
	return a.runtime
}

// Wait 等待退出信号
func (a *internalApp) Wait(ctx context.Context) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		logger.Info("收到信号，正在退出", "signal", sig.String())
	case <-ctx.Done():
	case <-a.stopped:
		return
	}

	_ = a.Stop()
}

// Stop 停止应用，可重复调用
func (a *internalApp) Stop() error {
	var err error
	a.stopOnce.Do(func() {
		close(a.stopped)

		ctx, cancel := context.WithTimeout(context.Background(), a.stopTimeout)
		defer cancel()
		if stopErr := a.runtime.Stop(ctx); stopErr != nil {
			err = fmt.Errorf("停止运行时失败: %w", stopErr)
		}
	})
	return err
}
