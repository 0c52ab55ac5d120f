package cache

import "time"

// Thresholds 定义各类别的过期阈值；Active 值用于周五至周日的活跃窗口。
type Thresholds struct {
	Schedule        time.Duration
	SessionActive   time.Duration
	SessionIdle     time.Duration
	StandingsActive time.Duration
	StandingsIdle   time.Duration
}

// DefaultThresholds 返回默认阈值：赛程 24h，session 5m/60m，积分榜 30m/2h。
func DefaultThresholds() Thresholds {
	return Thresholds{
		Schedule:        24 * time.Hour,
		SessionActive:   5 * time.Minute,
		SessionIdle:     time.Hour,
		StandingsActive: 30 * time.Minute,
		StandingsIdle:   2 * time.Hour,
	}
}

// Policy 是纯函数式的新鲜度判断，不做任何 I/O。
//
// 活跃窗口只看星期几（周一为 0，周五及之后为活跃），并不查询真实赛历。
type Policy struct {
	Thresholds Thresholds
	// Location 决定按哪个时区计算星期几，为空时使用 time.Local。
	Location *time.Location
}

// NewPolicy 使用给定阈值构造策略。
func NewPolicy(thresholds Thresholds, loc *time.Location) Policy {
	return Policy{Thresholds: thresholds, Location: loc}
}

// Weekday 返回周一为 0、周日为 6 的星期索引。
func (p Policy) Weekday(now time.Time) int {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	return (int(now.In(loc).Weekday()) + 6) % 7
}

// ActiveWindow 判断 now 是否处于周五至周日。
func (p Policy) ActiveWindow(now time.Time) bool {
	return p.Weekday(now) >= 4
}

// ShouldUpdateSchedule 在无记录或距上次获取超过 Schedule 阈值时返回 true。
func (p Policy) ShouldUpdateSchedule(meta Metadata, now time.Time) bool {
	return Stale(meta.LastScheduleFetch, now, p.Thresholds.Schedule)
}

// ShouldUpdateSession 依据 session_cache["<event>_<type>"] 与活跃窗口阈值判断。
func (p Policy) ShouldUpdateSession(meta Metadata, eventName, sessionType string, now time.Time) bool {
	threshold := p.Thresholds.SessionIdle
	if p.ActiveWindow(now) {
		threshold = p.Thresholds.SessionActive
	}
	return Stale(meta.SessionUpdatedAt(SessionKey(eventName, sessionType)), now, threshold)
}

// ShouldUpdateStandings 依据 last_standings_update 与活跃窗口阈值判断。
func (p Policy) ShouldUpdateStandings(meta Metadata, now time.Time) bool {
	threshold := p.Thresholds.StandingsIdle
	if p.ActiveWindow(now) {
		threshold = p.Thresholds.StandingsActive
	}
	return Stale(meta.LastStandingsUpdate, now, threshold)
}

// Stale 在 last 缺失或经过时间严格大于 threshold 时返回 true。
func Stale(last *time.Time, now time.Time, threshold time.Duration) bool {
	if last == nil {
		return true
	}
	return now.Sub(*last) > threshold
}
