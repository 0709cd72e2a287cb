package config

import (
	"fmt"
)

// ValidateAll 验证整个配置，nil 视为无效配置
//
// 错误均包装 ErrInvalidConfig，可用 errors.Is 判断。
func ValidateAll(c *Config) error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ValidateAndFix 修复常见问题后再验证
//
// 可修复的问题：
//   - 非正的路径数、跳数 -> 默认值
//   - 空的日志级别 -> info
//   - 超出范围的句柄池 -> 1023
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	def := NewConfig()
	if c.Routing.MaxPaths <= 0 {
		c.Routing.MaxPaths = def.Routing.MaxPaths
	}
	if c.Routing.MaxHops <= 0 {
		c.Routing.MaxHops = def.Routing.MaxHops
	}
	if c.Routing.CacheSize > 0 && c.Routing.CacheTTL <= 0 {
		c.Routing.CacheTTL = def.Routing.CacheTTL
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Dispatch.HandlePoolSize <= 0 || c.Dispatch.HandlePoolSize > MaxHandlePoolSize {
		c.Dispatch.HandlePoolSize = MaxHandlePoolSize
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}
	return c, nil
}
