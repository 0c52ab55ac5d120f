package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/pitwall-hub/pitwall/internal/f1data"
)

// BuildLatestSession 将 session 成绩转换为产物；team 非空时只保留该车队的车手（不区分大小写的子串匹配）。
func BuildLatestSession(session f1data.Session, team string) LatestSession {
	team = strings.ToLower(strings.TrimSpace(team))
	rows := make([]ResultRow, 0, len(session.Results))
	for _, r := range session.Results {
		if team != "" && !strings.Contains(strings.ToLower(r.Team), team) {
			continue
		}
		rows = append(rows, ResultRow{
			DriverNumber: r.Driver.Number,
			Name:         r.Driver.FullName(),
			Team:         r.Team,
			Position:     r.Position,
			Time:         resultTime(r),
			Status:       r.Status,
			Points:       r.Points,
			Q1:           r.Q1,
			Q2:           r.Q2,
			Q3:           r.Q3,
		})
	}
	return LatestSession{
		Event:        session.Event.Name,
		Location:     session.Event.Location,
		Country:      session.Event.Country,
		Round:        session.Event.Round,
		SessionType:  string(session.Type),
		Date:         session.Event.Start(session.Type),
		Results:      rows,
		TotalDrivers: len(session.Results),
	}
}

// resultTime 对差距（"+x"）原样保留，绝对用时统一为 F1 格式。
func resultTime(r f1data.Result) string {
	if r.Millis > 0 && !strings.HasPrefix(r.Time, "+") {
		return FormatLapTime(time.Duration(r.Millis) * time.Millisecond)
	}
	return r.Time
}

// BuildDriverStandings 转换车手积分榜。
func BuildDriverStandings(table f1data.DriverTable, now time.Time) DriverStandings {
	rows := make([]DriverRow, 0, len(table.Entries))
	for _, e := range table.Entries {
		rows = append(rows, DriverRow{
			Position:     e.Position,
			DriverNumber: e.Driver.Number,
			FullName:     e.Driver.FullName(),
			TeamName:     e.Team,
			TotalPoints:  e.Points,
			Wins:         e.Wins,
		})
	}
	return DriverStandings{
		Season:         table.Season,
		LastUpdated:    now.UTC(),
		CompletedRaces: table.Round,
		Standings:      rows,
	}
}

// BuildConstructorStandings 转换车队积分榜，并从车手积分榜中补全每支车队的车手名单。
func BuildConstructorStandings(table f1data.ConstructorTable, drivers f1data.DriverTable, now time.Time) ConstructorStandings {
	roster := make(map[string][]string)
	for _, d := range drivers.Entries {
		roster[d.Team] = append(roster[d.Team], d.Driver.FullName())
	}
	rows := make([]ConstructorRow, 0, len(table.Entries))
	for _, e := range table.Entries {
		names := roster[e.Team]
		if names == nil {
			names = []string{}
		}
		rows = append(rows, ConstructorRow{
			Position:    e.Position,
			TeamName:    e.Team,
			TotalPoints: e.Points,
			Wins:        e.Wins,
			Drivers:     names,
		})
	}
	return ConstructorStandings{
		Season:         table.Season,
		LastUpdated:    now.UTC(),
		CompletedRaces: table.Round,
		Standings:      rows,
	}
}

// BuildSchedule 转换赛历。
func BuildSchedule(season int, events []f1data.Event, now time.Time) Schedule {
	if events == nil {
		events = []f1data.Event{}
	}
	return Schedule{Season: season, LastUpdated: now.UTC(), Events: events}
}

// BuildNextRace 返回正赛开始时间晚于 now 的第一站；赛季已结束时返回 false。
func BuildNextRace(events []f1data.Event, now time.Time) (NextRace, bool) {
	for _, e := range events {
		if e.Race == nil || !e.Race.After(now) {
			continue
		}
		return NextRace{
			Name:     e.Name,
			Location: e.Location,
			Country:  e.Country,
			Date:     e.Race,
			Circuit:  e.Circuit,
			Round:    e.Round,
			Sessions: SessionTimes{
				FP1:              e.FirstPractice,
				FP2:              e.SecondPractice,
				FP3:              e.ThirdPractice,
				SprintQualifying: e.SprintQualifying,
				Sprint:           e.Sprint,
				Qualifying:       e.Qualifying,
				Race:             e.Race,
			},
		}, true
	}
	return NextRace{}, false
}

// NextSession 按 fp1、fp2、fp3、sprint_qualifying、sprint、qualifying、race 的顺序
// 返回第一个在 now 之后开始的 session。
func NextSession(race NextRace, now time.Time) (UpcomingSession, bool) {
	ordered := []struct {
		name  string
		start *time.Time
	}{
		{"fp1", race.Sessions.FP1},
		{"fp2", race.Sessions.FP2},
		{"fp3", race.Sessions.FP3},
		{"sprint_qualifying", race.Sessions.SprintQualifying},
		{"sprint", race.Sessions.Sprint},
		{"qualifying", race.Sessions.Qualifying},
		{"race", race.Sessions.Race},
	}
	for _, s := range ordered {
		if s.start != nil && s.start.After(now) {
			return UpcomingSession{
				Event:   race.Name,
				Round:   race.Round,
				Session: s.name,
				Start:   s.start.UTC(),
			}, true
		}
	}
	return UpcomingSession{}, false
}

// FormatLapTime 以 F1 计时格式输出时长，分钟不进位到小时："1:26.296"、"102:06.304"。
func FormatLapTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%d:%02d.%03d", ms/60_000, ms/1000%60, ms%1000)
}
