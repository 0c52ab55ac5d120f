package cache

import (
	"context"
	"math"
	"time"
)

// Inspector 仅依据文件修改时间回答新鲜度问题，与元数据记录互不相关。
type Inspector struct {
	store Store
	now   func() time.Time
}

// NewInspector 基于某个 Store（通常是数据目录）构造检查器。
func NewInspector(store Store, now func() time.Time) Inspector {
	if now == nil {
		now = time.Now
	}
	return Inspector{store: store, now: now}
}

// FileAgeMinutes 返回文件自最后修改以来的分钟数；文件不存在时返回 +Inf。
func (i Inspector) FileAgeMinutes(name string) float64 {
	entry, err := i.store.Stat(context.Background(), Locator{Path: name})
	if err != nil {
		return math.Inf(1)
	}
	return i.now().Sub(entry.ModTime).Minutes()
}

// IsFileFresh 当且仅当文件年龄严格小于 maxAgeMinutes 时返回 true。
func (i Inspector) IsFileFresh(name string, maxAgeMinutes float64) bool {
	return i.FileAgeMinutes(name) < maxAgeMinutes
}
