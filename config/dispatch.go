package config

import "fmt"

// MaxHandlePoolSize 句柄 ID 上限（0 保留为"无句柄"）
const MaxHandlePoolSize = 1023

// DispatchConfig 操作分发配置
type DispatchConfig struct {
	// HandlePoolSize 句柄池大小，取值 1..1023
	HandlePoolSize int `json:"handle_pool_size"`

	// MaxInFlight 同时在途的操作上限，0 表示不限
	MaxInFlight int `json:"max_in_flight"`

	// LegacyZeroHandle 句柄池耗尽时以句柄 0 下发且不跟踪，返回成功
	// 句柄 0 的 connect 确认按连接 ID 使 reserved 连接生效或移除
	LegacyZeroHandle bool `json:"legacy_zero_handle"`
}

// DefaultDispatchConfig 默认分发配置
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		HandlePoolSize: MaxHandlePoolSize,
		MaxInFlight:    0,
	}
}

// Validate 验证分发配置
func (c DispatchConfig) Validate() error {
	if c.HandlePoolSize <= 0 || c.HandlePoolSize > MaxHandlePoolSize {
		return fmt.Errorf("%w: dispatch.handle_pool_size must be in 1..%d", ErrInvalidConfig, MaxHandlePoolSize)
	}
	if c.MaxInFlight < 0 {
		return fmt.Errorf("%w: dispatch.max_in_flight must not be negative", ErrInvalidConfig)
	}
	return nil
}
