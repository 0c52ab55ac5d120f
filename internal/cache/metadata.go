package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category 是新鲜度跟踪的单位。
type Category string

const (
	CategorySchedule  Category = "schedule"
	CategorySession   Category = "session"
	CategoryStandings Category = "standings"
)

// DefaultMetadataFile 是元数据文件在缓存目录中的默认文件名。
const DefaultMetadataFile = "cache_metadata.json"

// legacyTimestampLayout 兼容旧版本写入的无时区 ISO-8601 时间。
const legacyTimestampLayout = "2006-01-02T15:04:05.999999999"

// Metadata 记录每个类别最近一次刷新的时间，所有时间均为 UTC。
type Metadata struct {
	LastScheduleFetch   *time.Time
	LastSessionUpdate   *time.Time
	LastStandingsUpdate *time.Time
	// CachedFiles 原样保留，pitwall 不写入该字段。
	CachedFiles  map[string]json.RawMessage
	SessionCache map[string]time.Time
}

// SessionKey 构造 session_cache 的复合键。
func SessionKey(eventName, sessionType string) string {
	return eventName + "_" + sessionType
}

// EmptyMetadata 返回首次运行时的空记录。
func EmptyMetadata() Metadata {
	return Metadata{
		CachedFiles:  map[string]json.RawMessage{},
		SessionCache: map[string]time.Time{},
	}
}

// Clone 返回深拷贝，调用方可以自由修改。
func (m Metadata) Clone() Metadata {
	out := Metadata{
		LastScheduleFetch:   cloneTime(m.LastScheduleFetch),
		LastSessionUpdate:   cloneTime(m.LastSessionUpdate),
		LastStandingsUpdate: cloneTime(m.LastStandingsUpdate),
		CachedFiles:         make(map[string]json.RawMessage, len(m.CachedFiles)),
		SessionCache:        make(map[string]time.Time, len(m.SessionCache)),
	}
	for k, v := range m.CachedFiles {
		out.CachedFiles[k] = append(json.RawMessage(nil), v...)
	}
	for k, v := range m.SessionCache {
		out.SessionCache[k] = v
	}
	return out
}

// SessionUpdatedAt 返回某个 session 键的最近刷新时间。
func (m Metadata) SessionUpdatedAt(key string) *time.Time {
	ts, ok := m.SessionCache[key]
	if !ok {
		return nil
	}
	return &ts
}

type metadataDocument struct {
	LastScheduleFetch   *string                    `json:"last_schedule_fetch"`
	LastSessionUpdate   *string                    `json:"last_session_update"`
	LastStandingsUpdate *string                    `json:"last_standings_update"`
	CachedFiles         map[string]json.RawMessage `json:"cached_files"`
	SessionCache        map[string]string          `json:"session_cache"`
}

// MarshalJSON 以 RFC 3339 UTC 字符串输出时间，缺失的时间输出 null。
func (m Metadata) MarshalJSON() ([]byte, error) {
	doc := metadataDocument{
		LastScheduleFetch:   formatTimestamp(m.LastScheduleFetch),
		LastSessionUpdate:   formatTimestamp(m.LastSessionUpdate),
		LastStandingsUpdate: formatTimestamp(m.LastStandingsUpdate),
		CachedFiles:         m.CachedFiles,
		SessionCache:        make(map[string]string, len(m.SessionCache)),
	}
	if doc.CachedFiles == nil {
		doc.CachedFiles = map[string]json.RawMessage{}
	}
	for k, v := range m.SessionCache {
		doc.SessionCache[k] = v.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON 解析元数据文档，任何时间字段无法解析都视为整份记录损坏。
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var doc metadataDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	out := EmptyMetadata()
	var err error
	if out.LastScheduleFetch, err = parseOptionalTimestamp("last_schedule_fetch", doc.LastScheduleFetch); err != nil {
		return err
	}
	if out.LastSessionUpdate, err = parseOptionalTimestamp("last_session_update", doc.LastSessionUpdate); err != nil {
		return err
	}
	if out.LastStandingsUpdate, err = parseOptionalTimestamp("last_standings_update", doc.LastStandingsUpdate); err != nil {
		return err
	}
	for k, v := range doc.CachedFiles {
		out.CachedFiles[k] = v
	}
	for k, raw := range doc.SessionCache {
		ts, err := parseTimestamp(raw)
		if err != nil {
			return fmt.Errorf("session_cache[%s]: %w", k, err)
		}
		out.SessionCache[k] = ts
	}

	*m = out
	return nil
}

func parseOptionalTimestamp(field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	ts, err := parseTimestamp(*raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &ts, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.ParseInLocation(legacyTimestampLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
	}
	return ts.UTC(), nil
}

func formatTimestamp(ts *time.Time) *string {
	if ts == nil {
		return nil
	}
	s := ts.UTC().Format(time.RFC3339Nano)
	return &s
}

func cloneTime(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	v := *ts
	return &v
}
