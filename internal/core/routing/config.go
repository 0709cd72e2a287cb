package routing

import (
	"fmt"
	"time"

	"github.com/dep2p/go-audiomgr/config"
)

// ============================================================================
//                              配置定义
// ============================================================================

// Config 路由器配置
type Config struct {
	// 搜索
	MaxPaths  int // 默认最大路由数
	MaxCycles int // 默认域重入上限，负数不限
	MaxHops   int // 单条路由最大跳数

	// 图
	AutoReload         bool // 查询前自动重建脏图
	SubscriptionBuffer int  // 拓扑事件订阅缓冲

	// 缓存
	CacheSize int           // 0 表示禁用
	CacheTTL  time.Duration // 条目存活时间
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		MaxPaths:           5,
		MaxCycles:          0,
		MaxHops:            16,
		AutoReload:         true,
		SubscriptionBuffer: 64,
		CacheSize:          256,
		CacheTTL:           5 * time.Minute,
	}
}

// ConfigFromUnified 从统一配置转换
func ConfigFromUnified(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	r := cfg.Routing
	c.MaxPaths = r.MaxPaths
	c.MaxCycles = r.MaxCycles
	c.MaxHops = r.MaxHops
	c.AutoReload = r.AutoReload
	c.CacheSize = r.CacheSize
	c.CacheTTL = r.CacheTTL.Duration()
	return c
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.MaxPaths <= 0 {
		return fmt.Errorf("%w: MaxPaths must be positive", ErrInvalidConfig)
	}
	if c.MaxHops <= 0 {
		return fmt.Errorf("%w: MaxHops must be positive", ErrInvalidConfig)
	}
	if c.SubscriptionBuffer < 0 {
		return fmt.Errorf("%w: SubscriptionBuffer must not be negative", ErrInvalidConfig)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: CacheSize must not be negative", ErrInvalidConfig)
	}
	if c.CacheSize > 0 && c.CacheTTL <= 0 {
		return fmt.Errorf("%w: CacheTTL must be positive", ErrInvalidConfig)
	}
	return nil
}

// Clone 克隆配置
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
