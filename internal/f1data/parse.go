package f1data

import (
	"time"

	"github.com/tidwall/gjson"
)

func parseEvent(race gjson.Result) Event {
	return Event{
		Season:           int(race.Get("season").Int()),
		Round:            int(race.Get("round").Int()),
		Name:             race.Get("raceName").String(),
		Circuit:          race.Get("Circuit.circuitName").String(),
		Location:         race.Get("Circuit.Location.locality").String(),
		Country:          race.Get("Circuit.Location.country").String(),
		FirstPractice:    parseStart(race.Get("FirstPractice")),
		SecondPractice:   parseStart(race.Get("SecondPractice")),
		ThirdPractice:    parseStart(race.Get("ThirdPractice")),
		SprintQualifying: parseStart(race.Get("SprintQualifying")),
		Sprint:           parseStart(race.Get("Sprint")),
		Qualifying:       parseStart(race.Get("Qualifying")),
		Race:             parseStart(race),
	}
}

// parseStart 将 {date, time} 组合为 UTC 时间；缺少 time 时取当天 00:00 UTC。
func parseStart(node gjson.Result) *time.Time {
	date := node.Get("date").String()
	if date == "" {
		return nil
	}
	clock := node.Get("time").String()
	if clock == "" {
		t, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return nil
		}
		return &t
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, date+"T"+clock); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func parseDriver(node gjson.Result) Driver {
	return Driver{
		Number:     int(node.Get("permanentNumber").Int()),
		Code:       node.Get("code").String(),
		GivenName:  node.Get("givenName").String(),
		FamilyName: node.Get("familyName").String(),
	}
}

func parseResult(row gjson.Result) Result {
	driver := parseDriver(row.Get("Driver"))
	if n := row.Get("number"); n.Exists() {
		driver.Number = int(n.Int())
	}
	return Result{
		Position: int(row.Get("position").Int()),
		Driver:   driver,
		Team:     row.Get("Constructor.name").String(),
		Points:   row.Get("points").Float(),
		Status:   row.Get("status").String(),
		Time:     row.Get("Time.time").String(),
		Millis:   row.Get("Time.millis").Int(),
		Q1:       row.Get("Q1").String(),
		Q2:       row.Get("Q2").String(),
		Q3:       row.Get("Q3").String(),
	}
}

// parseDriverStanding 取车手所属的最后一支车队作为当前车队。
func parseDriverStanding(row gjson.Result) DriverStanding {
	teams := row.Get("Constructors").Array()
	team := ""
	if len(teams) > 0 {
		team = teams[len(teams)-1].Get("name").String()
	}
	return DriverStanding{
		Position: int(row.Get("position").Int()),
		Points:   row.Get("points").Float(),
		Wins:     int(row.Get("wins").Int()),
		Driver:   parseDriver(row.Get("Driver")),
		Team:     team,
	}
}
