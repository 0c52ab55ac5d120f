package cache

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pitwall-hub/pitwall/internal/guard"
)

// SweepReport 汇总一次清理的结果。Err 仅在根目录无法遍历时设置。
type SweepReport struct {
	Scanned int
	Removed int
	Failed  int
	Err     error
}

// Sweeper 删除缓存目录中超过保留期限的文件，与新鲜度策略无关。
type Sweeper struct {
	root   string
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewSweeper 构造清理器，root 为需要递归清理的目录。
func NewSweeper(root string, logger logrus.FieldLogger, now func() time.Time) Sweeper {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return Sweeper{root: root, logger: logger, now: now}
}

// Sweep 递归删除修改时间早于 now - maxAgeDays 的文件。单个文件删除失败只记录并跳过，
// 根目录不可读时提前结束；两种情况都不会向调用方返回错误。
func (s Sweeper) Sweep(maxAgeDays int) SweepReport {
	cutoff := s.now().Add(-time.Duration(maxAgeDays) * 24 * time.Hour)
	var report SweepReport

	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			s.logger.WithError(err).WithFields(logrus.Fields{
				"action": "cache_cleanup",
				"path":   path,
			}).Warn("skipping unreadable path")
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		report.Scanned++
		info, err := d.Info()
		if err != nil {
			report.Failed++
			s.logger.WithError(err).WithField("path", path).Warn("cannot stat cache file")
			return nil
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}

		if guard.SafeFile(s.logger, "cache_cleanup", func() error { return os.Remove(path) }) {
			report.Removed++
			s.logger.WithFields(logrus.Fields{
				"action": "cache_cleanup",
				"file":   d.Name(),
			}).Info("removed old cache file")
		} else {
			report.Failed++
		}
		return nil
	})
	if walkErr != nil {
		report.Err = fmt.Errorf("sweep %s: %w", s.root, walkErr)
		s.logger.WithError(walkErr).WithFields(logrus.Fields{
			"action": "cache_cleanup",
			"root":   s.root,
		}).Error("cache cleanup aborted")
	}
	return report
}
