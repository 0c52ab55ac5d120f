package f1data

import (
	"strings"
	"time"
)

// SessionType 是 session_cache 键中使用的 session 名称。
type SessionType string

const (
	SessionRace       SessionType = "Race"
	SessionQualifying SessionType = "Qualifying"
	SessionSprint     SessionType = "Sprint"
)

// resource 返回该 session 在 API 中的资源名与结果字段。
func (s SessionType) resource() (endpoint, field string, ok bool) {
	switch s {
	case SessionRace:
		return "results", "Results", true
	case SessionQualifying:
		return "qualifying", "QualifyingResults", true
	case SessionSprint:
		return "sprint", "SprintResults", true
	default:
		return "", "", false
	}
}

// Event 是赛历中的一站，所有时间均为 UTC。
type Event struct {
	Season           int        `json:"season"`
	Round            int        `json:"round"`
	Name             string     `json:"name"`
	Circuit          string     `json:"circuit"`
	Location         string     `json:"location"`
	Country          string     `json:"country"`
	FirstPractice    *time.Time `json:"fp1,omitempty"`
	SecondPractice   *time.Time `json:"fp2,omitempty"`
	ThirdPractice    *time.Time `json:"fp3,omitempty"`
	SprintQualifying *time.Time `json:"sprint_qualifying,omitempty"`
	Sprint           *time.Time `json:"sprint,omitempty"`
	Qualifying       *time.Time `json:"qualifying,omitempty"`
	Race             *time.Time `json:"race,omitempty"`
}

// Start 返回指定 session 的开始时间，未安排时返回 nil。
func (e Event) Start(session SessionType) *time.Time {
	switch session {
	case SessionRace:
		return e.Race
	case SessionQualifying:
		return e.Qualifying
	case SessionSprint:
		return e.Sprint
	default:
		return nil
	}
}

// Driver 描述车手身份。
type Driver struct {
	Number     int    `json:"number"`
	Code       string `json:"code"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// FullName 返回 "名 姓"。
func (d Driver) FullName() string {
	return strings.TrimSpace(d.GivenName + " " + d.FamilyName)
}

// Result 是某个 session 中的一行成绩。
type Result struct {
	Position int     `json:"position"`
	Driver   Driver  `json:"driver"`
	Team     string  `json:"team"`
	Points   float64 `json:"points"`
	Status   string  `json:"status"`
	Time     string  `json:"time"`
	// Millis 是完赛总用时（毫秒），未完赛时为 0。
	Millis   int64   `json:"millis,omitempty"`
	Q1       string  `json:"q1,omitempty"`
	Q2       string  `json:"q2,omitempty"`
	Q3       string  `json:"q3,omitempty"`
}

// Session 是一站中某个 session 的完整成绩。
type Session struct {
	Event   Event       `json:"event"`
	Type    SessionType `json:"type"`
	Results []Result    `json:"results"`
}

// DriverStanding 是车手积分榜中的一行。
type DriverStanding struct {
	Position int     `json:"position"`
	Points   float64 `json:"points"`
	Wins     int     `json:"wins"`
	Driver   Driver  `json:"driver"`
	Team     string  `json:"team"`
}

// ConstructorStanding 是车队积分榜中的一行。
type ConstructorStanding struct {
	Position int     `json:"position"`
	Points   float64 `json:"points"`
	Wins     int     `json:"wins"`
	Team     string  `json:"team"`
}

// DriverTable 是某赛季截至某轮的车手积分榜。
type DriverTable struct {
	Season  int              `json:"season"`
	Round   int              `json:"round"`
	Entries []DriverStanding `json:"entries"`
}

// ConstructorTable 是某赛季截至某轮的车队积分榜。
type ConstructorTable struct {
	Season  int                   `json:"season"`
	Round   int                   `json:"round"`
	Entries []ConstructorStanding `json:"entries"`
}
