package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/dep2p/go-audiomgr/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// 环境变量，均使用 AUDIOMGR_ 前缀
const (
	envPrefix      = "AUDIOMGR_"
	envPreset      = "PRESET"
	envLogFile     = "LOG_FILE"
	envLogLevel    = "LOG_LEVEL"
	envMetricsAddr = "METRICS_ADDR"
	envMaxPaths    = "MAX_PATHS"
	envMaxCycles   = "MAX_CYCLES"
)

// loadConfig 按 配置文件 → 预设 → 环境变量 → 命令行 的顺序合成配置
func loadConfig(o *cliOptions) (*config.Config, error) {
	cfg := config.NewConfig()
	if o.configFile != "" {
		loaded, err := config.LoadFile(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	presetName := o.preset
	if presetName == "" {
		presetName = os.Getenv(envPrefix + envPreset)
	}
	if err := config.ApplyPreset(cfg, presetName); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if o.logFile != "" {
		cfg.Log.File = o.logFile
	}
	if o.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = o.metricsAddr
	}
	if o.quiet {
		cfg.Log.Level = "error"
	}
	return cfg, config.ValidateAll(cfg)
}

// applyEnvOverrides 应用环境变量覆盖配置
//
// 支持的环境变量：
//   - AUDIOMGR_LOG_FILE: 日志文件路径
//   - AUDIOMGR_LOG_LEVEL: 日志级别
//   - AUDIOMGR_METRICS_ADDR: 指标 HTTP 监听地址
//   - AUDIOMGR_MAX_PATHS: 单次查询最大路由数
//   - AUDIOMGR_MAX_CYCLES: 域重入上限
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv(envPrefix + envLogFile); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv(envPrefix + envLogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(envPrefix + envMetricsAddr); v != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = v
	}
	if n, ok := envInt(envMaxPaths); ok {
		cfg.Routing.MaxPaths = n
	}
	if n, ok := envInt(envMaxCycles); ok {
		cfg.Routing.MaxCycles = n
	}
}

func envInt(name string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(envPrefix + name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("忽略无效的环境变量", "name", envPrefix+name, "value", v)
		return 0, false
	}
	return n, true
}
