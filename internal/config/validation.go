package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validate 针对语义级别做进一步校验，防止非法配置进入更新流程。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("Global.LogLevel", "无法识别的日志级别")
	}
	if g.Season != 0 && (g.Season < 1950 || g.Season > 2100) {
		return newFieldError("Global.Season", "必须为 0（当前年份）或 1950-2100")
	}
	if _, err := g.Location(); err != nil {
		return newFieldError("Global.WeekendTimezone", fmt.Sprintf("无法加载时区: %v", err))
	}

	if err := c.Cache.validate(); err != nil {
		return err
	}
	if err := c.Upstream.validate(); err != nil {
		return err
	}

	j := c.Job
	if j.StageTimeout.DurationValue() <= 0 {
		return newFieldError(sectionField("Job", "StageTimeout"), "必须大于 0")
	}
	if j.CleanupTimeout.DurationValue() <= 0 {
		return newFieldError(sectionField("Job", "CleanupTimeout"), "必须大于 0")
	}
	if j.RefreshInterval.DurationValue() <= 0 {
		return newFieldError(sectionField("Job", "RefreshInterval"), "必须大于 0")
	}

	if port := c.Server.ListenPort; port <= 0 || port > 65535 {
		return newFieldError(sectionField("Server", "ListenPort"), "必须在 1-65535")
	}
	return nil
}

func (c CacheConfig) validate() error {
	if strings.TrimSpace(c.Dir) == "" {
		return newFieldError(sectionField("Cache", "Dir"), "不能为空")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return newFieldError(sectionField("Cache", "DataDir"), "不能为空")
	}
	if strings.ContainsAny(c.MetadataFile, `/\`) {
		return newFieldError(sectionField("Cache", "MetadataFile"), "只能是文件名，不能包含路径")
	}
	if c.RetentionDays < 1 {
		return newFieldError(sectionField("Cache", "RetentionDays"), "必须大于等于 1")
	}
	if c.ResponseTTL.DurationValue() < 0 {
		return newFieldError(sectionField("Cache", "ResponseTTL"), "不能为负数")
	}

	for field, value := range map[string]Duration{
		"ScheduleTTL":        c.ScheduleTTL,
		"SessionActiveTTL":   c.SessionActiveTTL,
		"SessionIdleTTL":     c.SessionIdleTTL,
		"StandingsActiveTTL": c.StandingsActiveTTL,
		"StandingsIdleTTL":   c.StandingsIdleTTL,
	} {
		if value.DurationValue() <= 0 {
			return newFieldError(sectionField("Cache", field), "必须大于 0")
		}
	}
	return nil
}

func (u UpstreamConfig) validate() error {
	if err := validateUpstream(u.BaseURL); err != nil {
		return fmt.Errorf("%s: %w", sectionField("Upstream", "BaseURL"), err)
	}
	if u.Timeout.DurationValue() <= 0 {
		return newFieldError(sectionField("Upstream", "Timeout"), "必须大于 0")
	}
	if u.MaxRetries < 1 {
		return newFieldError(sectionField("Upstream", "MaxRetries"), "必须大于等于 1")
	}
	if u.InitialBackoff.DurationValue() <= 0 {
		return newFieldError(sectionField("Upstream", "InitialBackoff"), "必须大于 0")
	}
	if u.BackoffFactor < 1 {
		return newFieldError(sectionField("Upstream", "BackoffFactor"), "必须大于等于 1")
	}
	return nil
}

func validateUpstream(raw string) error {
	if raw == "" {
		return errors.New("缺少上游地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https，上游: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("上游缺少 Host: %s", raw)
	}
	return nil
}
