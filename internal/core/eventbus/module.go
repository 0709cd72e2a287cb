package eventbus

import (
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
)

// Result Fx 模块输出
type Result struct {
	fx.Out

	EventBus pkgif.EventBus
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideEventBus),
	)
}

// ProvideEventBus 提供 EventBus 实例
func ProvideEventBus() Result {
	return Result{EventBus: NewBus()}
}
