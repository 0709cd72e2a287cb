package routing

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-audiomgr/config"
	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
)

// Params 路由器依赖参数
type Params struct {
	fx.In

	Config     *config.Config `optional:"true"`
	Store      pkgif.EntityStore
	Bus        pkgif.EventBus        `optional:"true"`
	Chooser    pkgif.FormatChooser   `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Result 路由器导出结果
type Result struct {
	fx.Out

	Router *Router
}

// Module 路由 Fx 模块
var Module = fx.Module("routing",
	fx.Provide(ProvideRouter),
	fx.Invoke(registerLifecycle),
)

// ProvideRouter 提供路由器
func ProvideRouter(p Params) (Result, error) {
	opts := []Option{WithRegisterer(p.Registerer)}
	if p.Chooser != nil {
		opts = append(opts, WithFormatChooser(p.Chooser))
	}

	r, err := NewRouter(ConfigFromUnified(p.Config), p.Store, p.Bus, opts...)
	if err != nil {
		return Result{}, err
	}
	return Result{Router: r}, nil
}

func registerLifecycle(lc fx.Lifecycle, r *Router) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return r.Load()
		},
		OnStop: func(_ context.Context) error {
			return r.Close()
		},
	})
}
