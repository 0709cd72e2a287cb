// Package app 提供模块集合清单
//
// modulesets.go 集中维护"哪些模块属于哪一层"，是 Bootstrap 组装的唯一模块来源。
package app

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-audiomgr/internal/core/dispatcher"
	"github.com/dep2p/go-audiomgr/internal/core/entitystore"
	"github.com/dep2p/go-audiomgr/internal/core/eventbus"
	"github.com/dep2p/go-audiomgr/internal/core/routing"
)

// CoreModules 基础层模块组合
//
// 事件总线与实体存储，路由器和分发器都依赖它们。
func CoreModules() fx.Option {
	return fx.Options(
		eventbus.Module(),
		entitystore.Module,
	)
}

// RoutingModules 业务层模块组合
//
// 路由搜索与操作分发。
func RoutingModules() fx.Option {
	return fx.Options(
		routing.Module,
		dispatcher.Module,
	)
}
