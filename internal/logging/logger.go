package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pitwall-hub/pitwall/internal/config"
)

// InitLogger 创建 JSON 日志器并同步到 logrus 全局实例。
// 结构化日志只写文件或 stderr，stdout 留给 update/stats 等命令的结果输出。
func InitLogger(cfg config.GlobalConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	sink, sinkErr := openSink(cfg)

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(sink)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	logrus.SetFormatter(logger.Formatter)
	logrus.SetOutput(logger.Out)
	logrus.SetLevel(level)

	if sinkErr != nil {
		logger.WithError(sinkErr).WithFields(logrus.Fields{
			"action": "logger_fallback",
			"path":   cfg.LogFilePath,
		}).Warn("log file unavailable, writing to stderr")
	}
	return logger, nil
}

// openSink 未配置日志文件时直接用 stderr；配置了则交给 lumberjack 轮转，
// 目录建不出来时退回 stderr，并把原因交给调用方记录。
func openSink(cfg config.GlobalConfig) (io.Writer, error) {
	if cfg.LogFilePath == "" {
		return os.Stderr, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0o755); err != nil {
		return os.Stderr, fmt.Errorf("create log dir: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   cfg.LogCompress,
		LocalTime:  true,
	}, nil
}
