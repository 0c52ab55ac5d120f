package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/pitwall-hub/pitwall/internal/cache"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值、环境变量覆盖与校验逻辑。
// path 为空时只使用默认值与环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	overrides, err := ParseEnv()
	if err != nil {
		return nil, err
	}
	overrides.Apply(&cfg)

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Cache.Dir, err = filepath.Abs(cfg.Cache.Dir); err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	if cfg.Cache.DataDir, err = filepath.Abs(cfg.Cache.DataDir); err != nil {
		return nil, fmt.Errorf("无法解析数据目录: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("Season", 0)
	v.SetDefault("Team", "Ferrari")
	v.SetDefault("WeekendTimezone", "Local")

	v.SetDefault("Cache.Dir", "./cache")
	v.SetDefault("Cache.DataDir", "./public/data")
	v.SetDefault("Cache.MetadataFile", cache.DefaultMetadataFile)
	v.SetDefault("Cache.RetentionDays", 7)
	v.SetDefault("Cache.ResponseTTL", "1h")
	v.SetDefault("Cache.ScheduleTTL", "24h")
	v.SetDefault("Cache.SessionActiveTTL", "5m")
	v.SetDefault("Cache.SessionIdleTTL", "1h")
	v.SetDefault("Cache.StandingsActiveTTL", "30m")
	v.SetDefault("Cache.StandingsIdleTTL", "2h")

	v.SetDefault("Upstream.BaseURL", "https://api.jolpi.ca/ergast/f1")
	v.SetDefault("Upstream.Timeout", "30s")
	v.SetDefault("Upstream.MaxRetries", 3)
	v.SetDefault("Upstream.InitialBackoff", "2s")
	v.SetDefault("Upstream.BackoffFactor", 2.0)

	v.SetDefault("Job.StageTimeout", "300s")
	v.SetDefault("Job.CleanupTimeout", "30s")
	v.SetDefault("Job.RefreshInterval", "5m")

	v.SetDefault("Server.ListenPort", 4321)
}

// applyDefaults 在显式写入零值时回填默认阈值，避免策略退化为“永远过期”。
func applyDefaults(cfg *Config) {
	defaults := cache.DefaultThresholds()
	c := &cfg.Cache
	if c.MetadataFile == "" {
		c.MetadataFile = cache.DefaultMetadataFile
	}
	if c.ScheduleTTL.DurationValue() == 0 {
		c.ScheduleTTL = Duration(defaults.Schedule)
	}
	if c.SessionActiveTTL.DurationValue() == 0 {
		c.SessionActiveTTL = Duration(defaults.SessionActive)
	}
	if c.SessionIdleTTL.DurationValue() == 0 {
		c.SessionIdleTTL = Duration(defaults.SessionIdle)
	}
	if c.StandingsActiveTTL.DurationValue() == 0 {
		c.StandingsActiveTTL = Duration(defaults.StandingsActive)
	}
	if c.StandingsIdleTTL.DurationValue() == 0 {
		c.StandingsIdleTTL = Duration(defaults.StandingsIdle)
	}
	if cfg.Upstream.InitialBackoff.DurationValue() == 0 {
		cfg.Upstream.InitialBackoff = Duration(2 * time.Second)
	}
	if cfg.Upstream.Timeout.DurationValue() == 0 {
		cfg.Upstream.Timeout = Duration(30 * time.Second)
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
