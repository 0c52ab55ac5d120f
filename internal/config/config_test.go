package config

import (
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfgPath := testConfigPath(t, "valid.toml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.Season != 2025 {
		t.Fatalf("Season 应当被解析，得到 %d", cfg.Global.Season)
	}
	if cfg.Cache.ScheduleTTL.DurationValue() != 24*time.Hour {
		t.Fatalf("ScheduleTTL 应该自动填充默认值")
	}
	if cfg.Cache.StandingsIdleTTL.DurationValue() != 2*time.Hour {
		t.Fatalf("整数秒应被解析为 Duration，得到 %s", cfg.Cache.StandingsIdleTTL.DurationValue())
	}
	if cfg.Upstream.Timeout.DurationValue() != 20*time.Second {
		t.Fatalf("Upstream.Timeout 应被解析")
	}
	if cfg.Job.RefreshInterval.DurationValue() != 5*time.Minute {
		t.Fatalf("RefreshInterval 应使用默认值")
	}
	if cfg.Cache.MetadataFile != "cache_metadata.json" {
		t.Fatalf("MetadataFile 默认值错误: %s", cfg.Cache.MetadataFile)
	}
	if cfg.Cache.Dir == "" || cfg.Cache.Dir[0] != '/' {
		t.Fatalf("Cache.Dir 应被转换为绝对路径: %s", cfg.Cache.Dir)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("无配置文件时应使用默认值: %v", err)
	}
	if cfg.Global.Team != "Ferrari" {
		t.Fatalf("Team 默认值错误: %s", cfg.Global.Team)
	}
	if cfg.Cache.RetentionDays != 7 {
		t.Fatalf("RetentionDays 默认值错误: %d", cfg.Cache.RetentionDays)
	}
	if th := cfg.Cache.Thresholds(); th.SessionActive != 5*time.Minute || th.StandingsActive != 30*time.Minute {
		t.Fatalf("默认阈值错误: %+v", th)
	}
	if p := cfg.Upstream.RetryPolicy(); p.MaxRetries != 3 || p.Delay != 2*time.Second || p.Backoff != 2 {
		t.Fatalf("默认重试策略错误: %+v", p)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfgPath := testConfigPath(t, "missing.toml")

	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("不合法的配置应返回错误")
	}
}

func TestValidateFields(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Global.LogLevel = "loud" }},
		{"bad season", func(c *Config) { c.Global.Season = 1800 }},
		{"bad timezone", func(c *Config) { c.Global.WeekendTimezone = "Mars/Olympus" }},
		{"empty data dir", func(c *Config) { c.Cache.DataDir = "" }},
		{"metadata path", func(c *Config) { c.Cache.MetadataFile = "../meta.json" }},
		{"retention", func(c *Config) { c.Cache.RetentionDays = 0 }},
		{"zero threshold", func(c *Config) { c.Cache.SessionIdleTTL = 0 }},
		{"upstream scheme", func(c *Config) { c.Upstream.BaseURL = "ftp://x" }},
		{"retries", func(c *Config) { c.Upstream.MaxRetries = 0 }},
		{"backoff factor", func(c *Config) { c.Upstream.BackoffFactor = 0.5 }},
		{"stage timeout", func(c *Config) { c.Job.StageTimeout = 0 }},
		{"listen port", func(c *Config) { c.Server.ListenPort = 70000 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestEffectiveSeasonFallsBackToCurrentYear(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := (GlobalConfig{}).EffectiveSeason(now); got != 2026 {
		t.Fatalf("expected 2026, got %d", got)
	}
	if got := (GlobalConfig{Season: 2024}).EffectiveSeason(now); got != 2024 {
		t.Fatalf("expected explicit season, got %d", got)
	}
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			LogLevel:        "info",
			Season:          2025,
			WeekendTimezone: "UTC",
		},
		Cache: CacheConfig{
			Dir:                "./cache",
			DataDir:            "./public/data",
			MetadataFile:       "cache_metadata.json",
			RetentionDays:      7,
			ResponseTTL:        Duration(time.Hour),
			ScheduleTTL:        Duration(24 * time.Hour),
			SessionActiveTTL:   Duration(5 * time.Minute),
			SessionIdleTTL:     Duration(time.Hour),
			StandingsActiveTTL: Duration(30 * time.Minute),
			StandingsIdleTTL:   Duration(2 * time.Hour),
		},
		Upstream: UpstreamConfig{
			BaseURL:        "https://api.jolpi.ca/ergast/f1",
			Timeout:        Duration(time.Second),
			MaxRetries:     3,
			InitialBackoff: Duration(time.Second),
			BackoffFactor:  2,
		},
		Job: JobConfig{
			StageTimeout:    Duration(time.Minute),
			CleanupTimeout:  Duration(time.Second),
			RefreshInterval: Duration(time.Minute),
		},
		Server: ServerConfig{ListenPort: 4321},
	}
}
