package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// Store 负责管理磁盘缓存的读写。磁盘布局遵循：
//
//	<Root>/<Namespace>/<Path>
//
// 每个条目仅由正文文件组成，文件的 ModTime/Size 由文件系统提供。
type Store interface {
	// Get 返回一个可流式读取的缓存条目。若不存在则返回 ErrNotFound。
	Get(ctx context.Context, locator Locator) (*ReadResult, error)

	// Stat 只读取文件信息，不打开正文。若不存在则返回 ErrNotFound。
	Stat(ctx context.Context, locator Locator) (*Entry, error)

	// Put 写入正文并产出新的 Entry 描述。实现需通过临时文件 + rename
	// 保证整文件覆盖的原子性，并在失败时清理临时文件。可选地根据 opts.ModTime 设置文件时间戳。
	Put(ctx context.Context, locator Locator, body io.Reader, opts PutOptions) (*Entry, error)

	// Remove 删除正文文件，文件不存在时视为成功。
	Remove(ctx context.Context, locator Locator) error

	// Root 返回缓存根目录的绝对路径。
	Root() string
}

// PutOptions 控制写入过程中的可选属性。
type PutOptions struct {
	ModTime time.Time
}

// Locator 唯一定位一个缓存条目（可选 Namespace + 相对路径），路径均为 URL 路径风格。
type Locator struct {
	Namespace string
	Path      string
}

// Entry 描述一个缓存文件，包含绝对路径及文件信息。
type Entry struct {
	Locator   Locator   `json:"locator"`
	FilePath  string    `json:"file_path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

// ReadResult 组合 Entry 与正文 Reader。
type ReadResult struct {
	Entry  Entry
	Reader io.ReadSeekCloser
}

// ErrNotFound 表示缓存不存在。
var ErrNotFound = errors.New("cache entry not found")
