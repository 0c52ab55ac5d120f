package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pitwall-hub/pitwall/internal/cache"
	"github.com/pitwall-hub/pitwall/internal/config"
	"github.com/pitwall-hub/pitwall/internal/f1data"
	"github.com/pitwall-hub/pitwall/internal/logging"
	"github.com/pitwall-hub/pitwall/internal/updater"
)

const defaultConfigFile = "config.toml"

// commandEnv 是一次命令执行所需的全部依赖。
type commandEnv struct {
	configPath string
	cfg        *config.Config
	logger     *logrus.Logger
	cache      *cache.Manager
	season     int
}

// resolveConfigPath 依次使用 --config、PITWALL_CONFIG、当前目录下的 config.toml；
// 都不存在时返回空串，表示只使用默认值。
func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	overrides, err := config.ParseEnv()
	if err != nil {
		return "", err
	}
	if overrides.ConfigPath != "" {
		return overrides.ConfigPath, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", nil
}

// loadConfig 解析配置路径并初始化日志。
func (s *cliState) loadConfig(action string) (*commandEnv, error) {
	path, err := resolveConfigPath(s.configFlag)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	logger.WithFields(logging.BaseFields(action, path)).Debug("配置加载完成")

	return &commandEnv{
		configPath: path,
		cfg:        cfg,
		logger:     logger,
		season:     cfg.Global.EffectiveSeason(time.Now()),
	}, nil
}

// bootstrap 在 loadConfig 基础上构造缓存上下文。
func (s *cliState) bootstrap(action string) (*commandEnv, error) {
	rt, err := s.loadConfig(action)
	if err != nil {
		return nil, err
	}
	loc, err := rt.cfg.Global.Location()
	if err != nil {
		return nil, err
	}
	manager, err := cache.New(cache.Options{
		CacheDir:     rt.cfg.Cache.Dir,
		DataDir:      rt.cfg.Cache.DataDir,
		MetadataFile: rt.cfg.Cache.MetadataFile,
		Thresholds:   rt.cfg.Cache.Thresholds(),
		Location:     loc,
		ResponseTTL:  rt.cfg.Cache.ResponseTTL.DurationValue(),
		Logger:       rt.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化缓存目录失败: %w", err)
	}
	rt.cache = manager
	return rt, nil
}

// newJob 组装数据客户端与更新任务。
func (rt *commandEnv) newJob() (*updater.Job, error) {
	if rt.cache == nil {
		return nil, errors.New("cache context not initialised")
	}
	client, err := f1data.NewClient(f1data.Options{
		BaseURL:    rt.cfg.Upstream.BaseURL,
		HTTPClient: f1data.NewHTTPClient(rt.cfg.Upstream.Timeout.DurationValue()),
		Responses:  rt.cache.Responses(),
		Logger:     rt.logger,
	})
	if err != nil {
		return nil, err
	}
	return updater.NewJob(updater.Options{
		Cache:          rt.cache,
		Fetcher:        client,
		Season:         rt.season,
		Team:           rt.cfg.Global.Team,
		Retry:          rt.cfg.Upstream.RetryPolicy(),
		StageTimeout:   rt.cfg.Job.StageTimeout.DurationValue(),
		CleanupTimeout: rt.cfg.Job.CleanupTimeout.DurationValue(),
		RetentionDays:  rt.cfg.Cache.RetentionDays,
		Logger:         rt.logger,
	})
}

// fail 打印错误并设置失败退出码。
func (s *cliState) fail(err error) {
	fmt.Fprintln(stdErr, err.Error())
	s.exitCode = exitFailure
}
