package routing

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dep2p/go-audiomgr/pkg/types"
)

// ============================================================================
//                              路由缓存
// ============================================================================

// cacheKey 缓存键，绑定图版本
type cacheKey struct {
	version   uint64
	sourceID  types.SourceID
	sinkID    types.SinkID
	maxCycles int
	maxPaths  int
}

// routeCache 路由结果缓存（LRU + TTL）
//
// 只缓存 onlyFree=false 的结果，onlyFree 的结果依赖连接状态。
type routeCache struct {
	lru *expirable.LRU[cacheKey, []types.Route]
}

// newRouteCache 创建缓存，size 为 0 时返回 nil（禁用）
func newRouteCache(size int, ttl time.Duration) *routeCache {
	if size <= 0 {
		return nil
	}
	return &routeCache{lru: expirable.NewLRU[cacheKey, []types.Route](size, nil, ttl)}
}

func (c *routeCache) get(k cacheKey) ([]types.Route, bool) {
	if c == nil {
		return nil, false
	}
	routes, ok := c.lru.Get(k)
	if !ok {
		return nil, false
	}
	return cloneRoutes(routes), true
}

func (c *routeCache) put(k cacheKey, routes []types.Route) {
	if c == nil {
		return
	}
	c.lru.Add(k, cloneRoutes(routes))
}

func (c *routeCache) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *routeCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func cloneRoutes(routes []types.Route) []types.Route {
	out := make([]types.Route, len(routes))
	for i, r := range routes {
		out[i] = r.Clone()
	}
	return out
}
