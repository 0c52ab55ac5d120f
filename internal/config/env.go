package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides 收集可以覆盖配置文件的环境变量。
type EnvOverrides struct {
	ConfigPath string `env:"PITWALL_CONFIG"`
	LogLevel   string `env:"PITWALL_LOG_LEVEL"`
	Season     int    `env:"PITWALL_SEASON"`
	CacheDir   string `env:"PITWALL_CACHE_DIR"`
	DataDir    string `env:"PITWALL_DATA_DIR"`
}

// ParseEnv 从进程环境变量读取覆盖项。
func ParseEnv() (EnvOverrides, error) {
	var overrides EnvOverrides
	if err := env.Parse(&overrides); err != nil {
		return EnvOverrides{}, fmt.Errorf("解析环境变量失败: %w", err)
	}
	return overrides, nil
}

// Apply 将非空的覆盖项写入配置。
func (o EnvOverrides) Apply(cfg *Config) {
	if o.LogLevel != "" {
		cfg.Global.LogLevel = o.LogLevel
	}
	if o.Season != 0 {
		cfg.Global.Season = o.Season
	}
	if o.CacheDir != "" {
		cfg.Cache.Dir = o.CacheDir
	}
	if o.DataDir != "" {
		cfg.Cache.DataDir = o.DataDir
	}
}
