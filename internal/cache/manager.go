package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Options 描述 Manager 的构造参数。
type Options struct {
	CacheDir     string
	DataDir      string
	MetadataFile string
	Thresholds   Thresholds
	// Location 用于活跃窗口的星期计算。
	Location *time.Location
	// ResponseTTL 控制原始上游响应的复用时长。
	ResponseTTL time.Duration
	Logger      logrus.FieldLogger
	Now         func() time.Time
}

// Manager 是每个进程构造一次的缓存上下文，显式传递给所有调用方。
type Manager struct {
	cacheStore Store
	dataStore  Store
	metadata   *MetadataStore
	policy     Policy
	inspector  Inspector
	sweeper    Sweeper
	responses  ResponseCache
	now        func() time.Time
}

// New 创建缓存与数据目录并加载元数据记录。
func New(opts Options) (*Manager, error) {
	if opts.CacheDir == "" {
		return nil, errors.New("cache dir required")
	}
	if opts.DataDir == "" {
		return nil, errors.New("data dir required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}

	cacheStore, err := NewStore(opts.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	dataStore, err := NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	responses := NewResponseCache(cacheStore, opts.ResponseTTL)
	responses.now = opts.Now

	return &Manager{
		cacheStore: cacheStore,
		dataStore:  dataStore,
		metadata:   OpenMetadataStore(cacheStore, opts.MetadataFile, opts.Logger, opts.Now),
		policy:     NewPolicy(opts.Thresholds, opts.Location),
		inspector:  NewInspector(dataStore, opts.Now),
		sweeper:    NewSweeper(cacheStore.Root(), opts.Logger, opts.Now),
		responses:  responses,
		now:        opts.Now,
	}, nil
}

// ShouldUpdateSchedule 判断赛程是否需要刷新。
func (m *Manager) ShouldUpdateSchedule() bool {
	return m.policy.ShouldUpdateSchedule(m.metadata.Snapshot(), m.now())
}

// ShouldUpdateSession 判断某个 session 的结果是否需要刷新。
func (m *Manager) ShouldUpdateSession(eventName, sessionType string) bool {
	return m.policy.ShouldUpdateSession(m.metadata.Snapshot(), eventName, sessionType, m.now())
}

// ShouldUpdateStandings 判断积分榜是否需要刷新。
func (m *Manager) ShouldUpdateStandings() bool {
	return m.policy.ShouldUpdateStandings(m.metadata.Snapshot(), m.now())
}

// MarkUpdated 记录刷新时间并立即落盘。
func (m *Manager) MarkUpdated(category Category, key string) error {
	return m.metadata.MarkUpdated(category, key)
}

// Metadata 返回当前元数据快照。
func (m *Manager) Metadata() Metadata {
	return m.metadata.Snapshot()
}

// Policy 返回生效的新鲜度策略。
func (m *Manager) Policy() Policy {
	return m.policy
}

// FileAgeMinutes 返回数据目录中某个产物的年龄（分钟）。
func (m *Manager) FileAgeMinutes(name string) float64 {
	return m.inspector.FileAgeMinutes(name)
}

// IsFileFresh 判断数据目录中某个产物是否足够新。
func (m *Manager) IsFileFresh(name string, maxAgeMinutes float64) bool {
	return m.inspector.IsFileFresh(name, maxAgeMinutes)
}

// Cleanup 清理缓存目录中超过 maxAgeDays 的文件。
func (m *Manager) Cleanup(maxAgeDays int) SweepReport {
	return m.sweeper.Sweep(maxAgeDays)
}

// Stats 统计缓存与数据目录。
func (m *Manager) Stats() (Stats, error) {
	cacheFiles, cacheBytes, err := dirUsage(m.cacheStore.Root(), anyFile)
	if err != nil {
		return Stats{}, fmt.Errorf("scan cache dir: %w", err)
	}
	dataFiles, dataBytes, err := dirUsage(m.dataStore.Root(), jsonFile)
	if err != nil {
		return Stats{}, fmt.Errorf("scan data dir: %w", err)
	}
	meta := m.metadata.Snapshot()
	return Stats{
		CacheFiles:          cacheFiles,
		CacheSizeMB:         float64(cacheBytes) / bytesPerMB,
		DataFiles:           dataFiles,
		DataSizeMB:          float64(dataBytes) / bytesPerMB,
		LastScheduleUpdate:  meta.LastScheduleFetch,
		LastStandingsUpdate: meta.LastStandingsUpdate,
	}, nil
}

// CacheStore 返回缓存目录的 Store。
func (m *Manager) CacheStore() Store {
	return m.cacheStore
}

// DataStore 返回数据目录（公开产物）的 Store。
func (m *Manager) DataStore() Store {
	return m.dataStore
}

// Responses 返回原始上游响应缓存。
func (m *Manager) Responses() ResponseCache {
	return m.responses
}
