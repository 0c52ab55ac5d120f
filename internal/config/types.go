package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pitwall-hub/pitwall/internal/cache"
	"github.com/pitwall-hub/pitwall/internal/guard"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述日志与赛季等全局参数。
type GlobalConfig struct {
	LogLevel        string `mapstructure:"LogLevel"`
	LogFilePath     string `mapstructure:"LogFilePath"`
	LogMaxSize      int    `mapstructure:"LogMaxSize"`
	LogMaxBackups   int    `mapstructure:"LogMaxBackups"`
	LogCompress     bool   `mapstructure:"LogCompress"`
	Season          int    `mapstructure:"Season"`
	Team            string `mapstructure:"Team"`
	WeekendTimezone string `mapstructure:"WeekendTimezone"`
}

// CacheConfig 描述缓存目录、产物目录与各类别的过期阈值。
type CacheConfig struct {
	Dir                string   `mapstructure:"Dir"`
	DataDir            string   `mapstructure:"DataDir"`
	MetadataFile       string   `mapstructure:"MetadataFile"`
	RetentionDays      int      `mapstructure:"RetentionDays"`
	ResponseTTL        Duration `mapstructure:"ResponseTTL"`
	ScheduleTTL        Duration `mapstructure:"ScheduleTTL"`
	SessionActiveTTL   Duration `mapstructure:"SessionActiveTTL"`
	SessionIdleTTL     Duration `mapstructure:"SessionIdleTTL"`
	StandingsActiveTTL Duration `mapstructure:"StandingsActiveTTL"`
	StandingsIdleTTL   Duration `mapstructure:"StandingsIdleTTL"`
}

// UpstreamConfig 描述 Ergast 兼容数据源以及重试参数。
type UpstreamConfig struct {
	BaseURL        string   `mapstructure:"BaseURL"`
	Timeout        Duration `mapstructure:"Timeout"`
	MaxRetries     int      `mapstructure:"MaxRetries"`
	InitialBackoff Duration `mapstructure:"InitialBackoff"`
	BackoffFactor  float64  `mapstructure:"BackoffFactor"`
}

// JobConfig 控制更新流水线每个阶段的超时与 serve 模式下的刷新间隔。
type JobConfig struct {
	StageTimeout    Duration `mapstructure:"StageTimeout"`
	CleanupTimeout  Duration `mapstructure:"CleanupTimeout"`
	RefreshInterval Duration `mapstructure:"RefreshInterval"`
}

// ServerConfig 描述只读 HTTP 服务。
type ServerConfig struct {
	ListenPort int `mapstructure:"ListenPort"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global   GlobalConfig   `mapstructure:",squash"`
	Cache    CacheConfig    `mapstructure:"Cache"`
	Upstream UpstreamConfig `mapstructure:"Upstream"`
	Job      JobConfig      `mapstructure:"Job"`
	Server   ServerConfig   `mapstructure:"Server"`
}

// Thresholds 将配置转换为缓存策略阈值。
func (c CacheConfig) Thresholds() cache.Thresholds {
	return cache.Thresholds{
		Schedule:        c.ScheduleTTL.DurationValue(),
		SessionActive:   c.SessionActiveTTL.DurationValue(),
		SessionIdle:     c.SessionIdleTTL.DurationValue(),
		StandingsActive: c.StandingsActiveTTL.DurationValue(),
		StandingsIdle:   c.StandingsIdleTTL.DurationValue(),
	}
}

// RetryPolicy 将上游配置转换为重试策略。
func (u UpstreamConfig) RetryPolicy() guard.Policy {
	return guard.Policy{
		MaxRetries: u.MaxRetries,
		Delay:      u.InitialBackoff.DurationValue(),
		Backoff:    u.BackoffFactor,
	}
}

// Location 返回活跃窗口计算所用的时区，空值或 "Local" 表示进程本地时区。
func (g GlobalConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(g.WeekendTimezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// EffectiveSeason 返回配置的赛季，未配置时回退到 now 所在年份。
func (g GlobalConfig) EffectiveSeason(now time.Time) int {
	if g.Season > 0 {
		return g.Season
	}
	return now.UTC().Year()
}
