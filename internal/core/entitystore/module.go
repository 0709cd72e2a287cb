package entitystore

import (
	"context"

	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
)

// Params 依赖参数
type Params struct {
	fx.In

	Bus pkgif.EventBus `optional:"true"`
}

// Result 导出结果
type Result struct {
	fx.Out

	Store       *Store
	EntityStore pkgif.EntityStore
}

// Module 实体存储 Fx 模块
var Module = fx.Module("entitystore",
	fx.Provide(ProvideStore),
	fx.Invoke(registerLifecycle),
)

// ProvideStore 提供实体存储
func ProvideStore(p Params) (Result, error) {
	s, err := New(p.Bus)
	if err != nil {
		return Result{}, err
	}
	return Result{Store: s, EntityStore: s}, nil
}

func registerLifecycle(lc fx.Lifecycle, s *Store) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return s.Close()
		},
	})
}
