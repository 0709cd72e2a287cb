package dispatcher

import (
	"fmt"

	"github.com/dep2p/go-audiomgr/config"
	"github.com/dep2p/go-audiomgr/internal/core/handles"
)

// Config 分发器配置
type Config struct {
	// HandlePoolSize 句柄池大小，1..1023
	HandlePoolSize int

	// MaxInFlight 在途操作上限，0 表示不限
	MaxInFlight int

	// LegacyZeroHandle 句柄池耗尽时以句柄 0 下发且不跟踪
	// 句柄 0 的 connect 确认按连接 ID 使 reserved 连接生效或移除
	LegacyZeroHandle bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		HandlePoolSize: handles.MaxSize,
	}
}

// ConfigFromUnified 从统一配置转换
func ConfigFromUnified(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.HandlePoolSize = cfg.Dispatch.HandlePoolSize
	c.MaxInFlight = cfg.Dispatch.MaxInFlight
	c.LegacyZeroHandle = cfg.Dispatch.LegacyZeroHandle
	return c
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.HandlePoolSize <= 0 || c.HandlePoolSize > handles.MaxSize {
		return fmt.Errorf("%w: HandlePoolSize must be in 1..%d", ErrInvalidConfig, handles.MaxSize)
	}
	if c.MaxInFlight < 0 {
		return fmt.Errorf("%w: MaxInFlight must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Clone 克隆配置
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
