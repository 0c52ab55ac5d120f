package cache

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

const bytesPerMB = 1024 * 1024

// Stats 汇总缓存目录与数据目录的占用情况以及最近刷新时间。
type Stats struct {
	CacheFiles          int        `json:"cache_files"`
	CacheSizeMB         float64    `json:"cache_size_mb"`
	DataFiles           int        `json:"data_files"`
	DataSizeMB          float64    `json:"data_size_mb"`
	LastScheduleUpdate  *time.Time `json:"last_schedule_update"`
	LastStandingsUpdate *time.Time `json:"last_standings_update"`
}

// dirUsage 统计目录下满足 match 的常规文件数量与总字节数。
func dirUsage(root string, match func(name string) bool) (int, int64, error) {
	var (
		count int
		size  int64
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !match(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if errors.Is(err, fs.ErrNotExist) {
			// 原子写入的临时文件可能在遍历期间被重命名。
			return nil
		}
		if err != nil {
			return err
		}
		count++
		size += info.Size()
		return nil
	})
	return count, size, err
}

func anyFile(string) bool { return true }

func jsonFile(name string) bool {
	return strings.HasSuffix(name, ".json")
}
