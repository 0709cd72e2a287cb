package config

import (
	"fmt"
	"time"
)

// RoutingConfig 路由搜索配置
type RoutingConfig struct {
	// MaxPaths 单次查询返回的最大路由数
	MaxPaths int `json:"max_paths"`

	// MaxCycles 默认的域重入上限，负数表示不限
	MaxCycles int `json:"max_cycles"`

	// MaxHops 单条路由的最大跳数
	MaxHops int `json:"max_hops"`

	// AutoReload 查询前若拓扑已变更则自动重建图
	AutoReload bool `json:"auto_reload"`

	// CacheSize 路由结果缓存条目数，0 表示禁用缓存
	CacheSize int `json:"cache_size"`

	// CacheTTL 缓存条目存活时间
	CacheTTL Duration `json:"cache_ttl"`
}

// DefaultRoutingConfig 默认路由配置
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		MaxPaths:   5,
		MaxCycles:  0,
		MaxHops:    16,
		AutoReload: true,
		CacheSize:  256,
		CacheTTL:   Duration(5 * time.Minute),
	}
}

// Validate 验证路由配置
func (c RoutingConfig) Validate() error {
	if c.MaxPaths <= 0 {
		return fmt.Errorf("%w: routing.max_paths must be positive", ErrInvalidConfig)
	}
	if c.MaxHops <= 0 {
		return fmt.Errorf("%w: routing.max_hops must be positive", ErrInvalidConfig)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: routing.cache_size must not be negative", ErrInvalidConfig)
	}
	if c.CacheSize > 0 && c.CacheTTL <= 0 {
		return fmt.Errorf("%w: routing.cache_ttl must be positive when cache is enabled", ErrInvalidConfig)
	}
	return nil
}
