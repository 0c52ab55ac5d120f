package output

import (
	"testing"
	"time"

	"github.com/pitwall-hub/pitwall/internal/f1data"
)

func at(t time.Time) *time.Time { return &t }

func sampleSession() f1data.Session {
	race := time.Date(2025, 3, 16, 4, 0, 0, 0, time.UTC)
	return f1data.Session{
		Event: f1data.Event{Name: "Australian Grand Prix", Location: "Melbourne", Country: "Australia", Round: 1, Race: &race},
		Type:  f1data.SessionRace,
		Results: []f1data.Result{
			{Position: 1, Driver: f1data.Driver{Number: 4, GivenName: "Lando", FamilyName: "Norris"}, Team: "McLaren", Points: 25, Status: "Finished", Time: "1:42:06.304", Millis: 6126304},
			{Position: 8, Driver: f1data.Driver{Number: 16, GivenName: "Charles", FamilyName: "Leclerc"}, Team: "Ferrari", Points: 4, Status: "Finished", Time: "+19.826", Millis: 6146130},
			{Position: 10, Driver: f1data.Driver{Number: 44, GivenName: "Lewis", FamilyName: "Hamilton"}, Team: "Ferrari", Points: 1, Status: "Finished", Time: "+22.473", Millis: 6148777},
		},
	}
}

func TestBuildLatestSessionFiltersTeam(t *testing.T) {
	doc := BuildLatestSession(sampleSession(), "ferrari")
	if doc.TotalDrivers != 3 {
		t.Fatalf("expected total drivers 3, got %d", doc.TotalDrivers)
	}
	if len(doc.Results) != 2 {
		t.Fatalf("expected 2 ferrari rows, got %d", len(doc.Results))
	}
	if doc.Results[0].Name != "Charles Leclerc" || doc.Results[0].Time != "+19.826" {
		t.Fatalf("unexpected row: %+v", doc.Results[0])
	}
	if doc.SessionType != "Race" || doc.Date == nil || doc.Event != "Australian Grand Prix" {
		t.Fatalf("unexpected header: %+v", doc)
	}
}

func TestBuildLatestSessionAllDrivers(t *testing.T) {
	doc := BuildLatestSession(sampleSession(), "")
	if len(doc.Results) != 3 {
		t.Fatalf("expected all rows, got %d", len(doc.Results))
	}
	if doc.Results[0].Time != "102:06.304" {
		t.Fatalf("expected formatted winner time, got %s", doc.Results[0].Time)
	}
}

func TestBuildConstructorStandingsRoster(t *testing.T) {
	now := time.Date(2025, 5, 5, 12, 0, 0, 0, time.UTC)
	drivers := f1data.DriverTable{Season: 2025, Round: 6, Entries: []f1data.DriverStanding{
		{Position: 5, Driver: f1data.Driver{GivenName: "Charles", FamilyName: "Leclerc"}, Team: "Ferrari"},
		{Position: 6, Driver: f1data.Driver{GivenName: "Lewis", FamilyName: "Hamilton"}, Team: "Ferrari"},
	}}
	teams := f1data.ConstructorTable{Season: 2025, Round: 6, Entries: []f1data.ConstructorStanding{
		{Position: 2, Team: "Ferrari", Points: 94},
		{Position: 9, Team: "Sauber", Points: 6},
	}}

	doc := BuildConstructorStandings(teams, drivers, now)
	if doc.CompletedRaces != 6 || !doc.LastUpdated.Equal(now) {
		t.Fatalf("unexpected header: %+v", doc)
	}
	if got := doc.Standings[0].Drivers; len(got) != 2 || got[0] != "Charles Leclerc" {
		t.Fatalf("unexpected roster: %v", got)
	}
	if doc.Standings[1].Drivers == nil {
		t.Fatalf("empty roster should encode as []")
	}
}

func TestBuildNextRaceAndNextSession(t *testing.T) {
	events := []f1data.Event{
		{Name: "Australian Grand Prix", Round: 1, Race: at(time.Date(2025, 3, 16, 4, 0, 0, 0, time.UTC))},
		{
			Name:             "Chinese Grand Prix",
			Round:            2,
			SprintQualifying: at(time.Date(2025, 3, 21, 7, 30, 0, 0, time.UTC)),
			Sprint:           at(time.Date(2025, 3, 22, 3, 0, 0, 0, time.UTC)),
			Qualifying:       at(time.Date(2025, 3, 22, 7, 0, 0, 0, time.UTC)),
			Race:             at(time.Date(2025, 3, 23, 7, 0, 0, 0, time.UTC)),
		},
	}

	now := time.Date(2025, 3, 22, 5, 0, 0, 0, time.UTC)
	race, ok := BuildNextRace(events, now)
	if !ok || race.Round != 2 {
		t.Fatalf("expected round 2, got %+v ok=%v", race, ok)
	}

	next, ok := NextSession(race, now)
	if !ok || next.Session != "qualifying" {
		t.Fatalf("expected qualifying next, got %+v ok=%v", next, ok)
	}

	if _, ok := BuildNextRace(events, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)); ok {
		t.Fatalf("expected no next race after season end")
	}
	if _, ok := NextSession(race, time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC)); ok {
		t.Fatalf("expected no session after race")
	}
}

func TestFormatLapTime(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{86296 * time.Millisecond, "1:26.296"},
		{6126304 * time.Millisecond, "102:06.304"},
		{59*time.Second + 5*time.Millisecond, "0:59.005"},
		{-time.Second, "0:00.000"},
	}
	for _, tc := range cases {
		if got := FormatLapTime(tc.in); got != tc.want {
			t.Fatalf("FormatLapTime(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
