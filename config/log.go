package config

import (
	"fmt"
	"strings"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别：debug, info, warn, error
	Level string `json:"level"`

	// File 日志文件路径，空表示 stderr
	File string `json:"file,omitempty"`

	// JSON 以 JSON 格式输出
	JSON bool `json:"json"`
}

// DefaultLogConfig 默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level: "info",
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Level)
	}
}
