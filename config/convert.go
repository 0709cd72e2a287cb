package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值，未知字段视为错误：
//
//	{
//	  "routing": {"max_paths": 10, "max_cycles": 1},
//	  "dispatch": {"max_in_flight": 64}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 读取并校验配置文件
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyPreset 应用预设
//
// 支持的预设：
//   - "default": 默认值
//   - "embedded": 车机等资源受限环境（小缓存、有限在途操作）
//   - "test": 单元测试（关闭缓存、调试日志、不限路径环路）
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case "", "default":
		return nil
	case "embedded":
		applyEmbeddedPreset(cfg)
		return nil
	case "test":
		applyTestPreset(cfg)
		return nil
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
}

func applyEmbeddedPreset(cfg *Config) {
	cfg.Routing.MaxPaths = 3
	cfg.Routing.MaxHops = 8
	cfg.Routing.CacheSize = 32
	cfg.Routing.CacheTTL = Duration(time.Minute)
	cfg.Dispatch.MaxInFlight = 64
	cfg.Log.Level = "warn"
}

func applyTestPreset(cfg *Config) {
	cfg.Routing.CacheSize = 0
	cfg.Log.Level = "debug"
	cfg.Metrics.Enabled = false
	cfg.Metrics.Addr = ""
}

// CloneConfig 克隆配置
func CloneConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	cloned := *cfg
	return &cloned
}
