package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrUnknownCategory 表示 MarkUpdated 收到了未定义的类别。
	ErrUnknownCategory = errors.New("unknown cache category")
	// ErrSessionKeyRequired 表示 session 类别缺少复合键。
	ErrSessionKeyRequired = errors.New("session key required")
)

// MetadataStore 负责元数据记录的加载与整文件回写。单进程单写者，不做跨进程加锁。
type MetadataStore struct {
	store  Store
	name   string
	logger logrus.FieldLogger
	now    func() time.Time

	mu     sync.RWMutex
	record Metadata
}

// OpenMetadataStore 加载已有记录；文件缺失或损坏时记录告警并从空记录开始，永不失败。
func OpenMetadataStore(store Store, name string, logger logrus.FieldLogger, now func() time.Time) *MetadataStore {
	if name == "" {
		name = DefaultMetadataFile
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &MetadataStore{
		store:  store,
		name:   name,
		logger: logger,
		now:    now,
	}

	record, err := s.Load()
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"action": "metadata_load",
			"file":   name,
		}).Warn("cache metadata unavailable, starting empty")
	}
	s.record = record
	return s
}

// Load 读取并解析元数据文件；失败时返回空记录以及错误原因。
func (s *MetadataStore) Load() (Metadata, error) {
	result, err := s.store.Get(context.Background(), s.locator())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return EmptyMetadata(), fmt.Errorf("metadata file %s: %w", s.name, err)
		}
		return EmptyMetadata(), fmt.Errorf("open metadata: %w", err)
	}
	defer result.Reader.Close()

	raw, err := io.ReadAll(result.Reader)
	if err != nil {
		return EmptyMetadata(), fmt.Errorf("read metadata: %w", err)
	}

	var record Metadata
	if err := json.Unmarshal(raw, &record); err != nil {
		return EmptyMetadata(), fmt.Errorf("decode metadata: %w", err)
	}
	return record, nil
}

// Save 将内存中的记录整文件回写。失败时内存状态保持不变，由调用方决定如何处理。
func (s *MetadataStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.save()
}

func (s *MetadataStore) save() error {
	payload, err := json.MarshalIndent(s.record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if _, err := s.store.Put(context.Background(), s.locator(), bytes.NewReader(payload), PutOptions{}); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// MarkUpdated 将类别（或 session 键）的时间戳设置为当前时刻并立即保存。
// 已记录的时间晚于当前时刻时保留原值，时间戳只增不减。
func (s *MetadataStore) MarkUpdated(category Category, key string) error {
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch category {
	case CategorySchedule:
		s.record.LastScheduleFetch = advance(s.record.LastScheduleFetch, now)
	case CategoryStandings:
		s.record.LastStandingsUpdate = advance(s.record.LastStandingsUpdate, now)
	case CategorySession:
		if key == "" {
			return ErrSessionKeyRequired
		}
		if s.record.SessionCache == nil {
			s.record.SessionCache = map[string]time.Time{}
		}
		s.record.SessionCache[key] = *advance(s.record.SessionUpdatedAt(key), now)
		s.record.LastSessionUpdate = advance(s.record.LastSessionUpdate, now)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	if err := s.save(); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"action":   "metadata_save",
			"category": string(category),
			"key":      key,
		}).Error("cache metadata not persisted")
		return err
	}
	return nil
}

// Snapshot 返回当前记录的深拷贝。
func (s *MetadataStore) Snapshot() Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.Clone()
}

func (s *MetadataStore) locator() Locator {
	return Locator{Path: s.name}
}

func advance(current *time.Time, now time.Time) *time.Time {
	if current != nil && current.After(now) {
		v := *current
		return &v
	}
	return &now
}
