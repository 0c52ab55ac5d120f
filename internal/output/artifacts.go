package output

import (
	"fmt"
	"time"

	"github.com/pitwall-hub/pitwall/internal/f1data"
)

const (
	// LatestSessionFile 保存最近一次 session 的成绩。
	LatestSessionFile = "latest-session.json"
	// NextRaceFile 保存下一站比赛及其各 session 时间。
	NextRaceFile = "next-race.json"
)

// ScheduleFile 返回赛历产物文件名。
func ScheduleFile(year int) string {
	return fmt.Sprintf("schedule-%d.json", year)
}

// DriverStandingsFile 返回车手积分榜产物文件名。
func DriverStandingsFile(year int) string {
	return fmt.Sprintf("driver-standings-%d.json", year)
}

// ConstructorStandingsFile 返回车队积分榜产物文件名。
func ConstructorStandingsFile(year int) string {
	return fmt.Sprintf("constructor-standings-%d.json", year)
}

// ResultRow 是 latest-session.json 中的一行。
type ResultRow struct {
	DriverNumber int     `json:"driver_number"`
	Name         string  `json:"name"`
	Team         string  `json:"team"`
	Position     int     `json:"position"`
	Time         string  `json:"time"`
	Status       string  `json:"status"`
	Points       float64 `json:"points"`
	Q1           string  `json:"q1,omitempty"`
	Q2           string  `json:"q2,omitempty"`
	Q3           string  `json:"q3,omitempty"`
}

// LatestSession 是 latest-session.json 的结构。TotalDrivers 为过滤前的参赛人数。
type LatestSession struct {
	Event        string      `json:"event"`
	Location     string      `json:"location"`
	Country      string      `json:"country"`
	Round        int         `json:"round"`
	SessionType  string      `json:"session_type"`
	Date         *time.Time  `json:"date"`
	Results      []ResultRow `json:"results"`
	TotalDrivers int         `json:"total_drivers"`
}

// DriverRow 是车手积分榜的一行。
type DriverRow struct {
	Position     int     `json:"position"`
	DriverNumber int     `json:"driver_number"`
	FullName     string  `json:"full_name"`
	TeamName     string  `json:"team_name"`
	TotalPoints  float64 `json:"total_points"`
	Wins         int     `json:"wins"`
}

// DriverStandings 是 driver-standings-<year>.json 的结构。
type DriverStandings struct {
	Season         int         `json:"season"`
	LastUpdated    time.Time   `json:"last_updated"`
	CompletedRaces int         `json:"completed_races"`
	Standings      []DriverRow `json:"standings"`
}

// ConstructorRow 是车队积分榜的一行。
type ConstructorRow struct {
	Position    int      `json:"position"`
	TeamName    string   `json:"team_name"`
	TotalPoints float64  `json:"total_points"`
	Wins        int      `json:"wins"`
	Drivers     []string `json:"drivers"`
}

// ConstructorStandings 是 constructor-standings-<year>.json 的结构。
type ConstructorStandings struct {
	Season         int              `json:"season"`
	LastUpdated    time.Time        `json:"last_updated"`
	CompletedRaces int              `json:"completed_races"`
	Standings      []ConstructorRow `json:"standings"`
}

// Schedule 是 schedule-<year>.json 的结构。
type Schedule struct {
	Season      int            `json:"season"`
	LastUpdated time.Time      `json:"last_updated"`
	Events      []f1data.Event `json:"events"`
}

// SessionTimes 按固定顺序列出一站中各 session 的开始时间。
type SessionTimes struct {
	FP1              *time.Time `json:"fp1"`
	FP2              *time.Time `json:"fp2"`
	FP3              *time.Time `json:"fp3"`
	SprintQualifying *time.Time `json:"sprint_qualifying"`
	Sprint           *time.Time `json:"sprint"`
	Qualifying       *time.Time `json:"qualifying"`
	Race             *time.Time `json:"race"`
}

// NextRace 是 next-race.json 的结构。
type NextRace struct {
	Name     string       `json:"name"`
	Location string       `json:"location"`
	Country  string       `json:"country"`
	Date     *time.Time   `json:"date"`
	Circuit  string       `json:"circuit"`
	Round    int          `json:"round"`
	Sessions SessionTimes `json:"sessions"`
}

// UpcomingSession 描述下一场即将开始的 session。
type UpcomingSession struct {
	Event   string    `json:"event"`
	Round   int       `json:"round"`
	Session string    `json:"session"`
	Start   time.Time `json:"start"`
}
