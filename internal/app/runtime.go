package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-audiomgr/internal/core/dispatcher"
	"github.com/dep2p/go-audiomgr/internal/core/entitystore"
	"github.com/dep2p/go-audiomgr/internal/core/routing"
)

// Runtime 表示一个已通过 fx 组装并启动的运行时
//
// 根包 Facade（Manager）组合 Runtime 对外暴露路由与分发 API。
type Runtime struct {
	Store      *entitystore.Store
	Router     *routing.Router
	Dispatcher *dispatcher.Dispatcher

	// Gatherer 指标关闭或注册器不可采集时为 nil
	Gatherer prometheus.Gatherer

	// Metrics 未配置 metrics.addr 时为 nil
	Metrics *MetricsServer

	stop func(ctx context.Context) error
}

// Stop 停止运行时（触发 fx 生命周期 OnStop）
func (r *Runtime) Stop(ctx context.Context) error {
	if r.stop == nil {
		return nil
	}
	return r.stop(ctx)
}
