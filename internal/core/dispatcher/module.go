package dispatcher

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-audiomgr/config"
	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

// PluginEntry 通过 fx 值组登记的域插件
type PluginEntry struct {
	DomainID types.DomainID
	Plugin   pkgif.RoutingPlugin
}

// Params 分发器依赖参数
type Params struct {
	fx.In

	Config     *config.Config `optional:"true"`
	Store      pkgif.EntityStore
	Clock      clock.Clock           `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`

	Plugins   []PluginEntry       `group:"plugins"`
	Listeners []pkgif.AckListener `group:"ack_listeners"`
}

// Result 分发器导出结果
type Result struct {
	fx.Out

	Dispatcher  *Dispatcher
	AckReceiver pkgif.AckReceiver
}

// Module 操作分发 Fx 模块
var Module = fx.Module("dispatcher",
	fx.Provide(ProvideDispatcher),
	fx.Invoke(registerLifecycle),
)

// ProvidePlugin 把域插件加入 plugins 值组
func ProvidePlugin(domainID types.DomainID, p pkgif.RoutingPlugin) fx.Option {
	return fx.Provide(fx.Annotate(
		func() PluginEntry { return PluginEntry{DomainID: domainID, Plugin: p} },
		fx.ResultTags(`group:"plugins"`),
	))
}

// ProvideAckListener 把监听器加入 ack_listeners 值组
func ProvideAckListener(l pkgif.AckListener) fx.Option {
	return fx.Provide(fx.Annotate(
		func() pkgif.AckListener { return l },
		fx.ResultTags(`group:"ack_listeners"`),
	))
}

// ProvideDispatcher 提供分发器
func ProvideDispatcher(p Params) (Result, error) {
	opts := []Option{WithRegisterer(p.Registerer)}
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}
	for _, l := range p.Listeners {
		opts = append(opts, WithAckListener(l))
	}

	d, err := New(ConfigFromUnified(p.Config), p.Store, opts...)
	if err != nil {
		return Result{}, err
	}
	for _, e := range p.Plugins {
		if err := d.RegisterPlugin(e.DomainID, e.Plugin); err != nil {
			return Result{}, err
		}
	}
	return Result{Dispatcher: d, AckReceiver: d}, nil
}

func registerLifecycle(lc fx.Lifecycle, d *Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("分发器已启动", "plugins", len(d.Plugins().Domains()), "poolSize", d.handles.Size())
			return nil
		},
		OnStop: func(_ context.Context) error {
			return d.Close()
		},
	})
}
