package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pitwall-hub/pitwall/internal/cache"
	"github.com/pitwall-hub/pitwall/internal/f1data"
	"github.com/pitwall-hub/pitwall/internal/output"
)

// errScheduleUnavailable 表示赛历阶段没有产出可用赛历。
var errScheduleUnavailable = errors.New("schedule unavailable")

// updateSchedule 在元数据过期、赛历产物不够新或强制刷新时重新获取赛历。
func (j *Job) updateSchedule(ctx context.Context, state *runState) (outcome, error) {
	name := output.ScheduleFile(j.season)
	maxAge := j.cache.Policy().Thresholds.Schedule.Minutes()
	refresh := state.force || j.cache.ShouldUpdateSchedule() || !j.cache.IsFileFresh(name, maxAge)

	if !refresh {
		doc, err := j.writer.ReadSchedule(ctx, j.season)
		if err == nil {
			state.events = doc.Events
			if _, err := j.publishNextRace(ctx, doc.Events, j.now()); err != nil {
				return outcome{}, err
			}
			age := j.cache.FileAgeMinutes(name)
			return outcome{skipped: true, detail: fmt.Sprintf("schedule fresh (%.0f min old)", age)}, nil
		}
		j.logger.WithError(err).WithField("file", name).Warn("schedule artifact unreadable, refetching")
	}

	events, err := fetch(ctx, j, "fetch_schedule", func(ctx context.Context) ([]f1data.Event, error) {
		return j.fetcher.Schedule(ctx, j.season)
	})
	if err != nil {
		return outcome{}, err
	}

	now := j.now()
	if err := j.writer.WriteSchedule(ctx, output.BuildSchedule(j.season, events, now)); err != nil {
		return outcome{}, err
	}
	state.events = events

	detail := fmt.Sprintf("%d events", len(events))
	next, err := j.publishNextRace(ctx, events, now)
	if err != nil {
		return outcome{}, err
	}
	if next != "" {
		detail += ", next: " + next
	}

	j.markUpdated(cache.CategorySchedule, "")
	return outcome{detail: detail}, nil
}

// publishNextRace 根据赛历重新推导 next-race.json。赛历未过期时正赛也可能已经开始，
// 因此每次运行都要比对；内容未变时不重写。赛季结束后撤下旧产物。
func (j *Job) publishNextRace(ctx context.Context, events []f1data.Event, now time.Time) (string, error) {
	race, ok := output.BuildNextRace(events, now)
	if !ok {
		if err := j.writer.RemoveNextRace(ctx); err != nil {
			return "", err
		}
		return "", nil
	}

	current, err := j.writer.ReadNextRace(ctx)
	if err == nil && current.Round == race.Round && current.Name == race.Name && sameInstant(current.Date, race.Date) {
		return race.Name, nil
	}
	if err := j.writer.WriteNextRace(ctx, race); err != nil {
		return "", err
	}
	j.logger.WithFields(logrus.Fields{"event": race.Name, "round": race.Round}).Info("next race published")
	return race.Name, nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// updateLatestSession 选择最近一站已经开始的 session，优先正赛，其次排位赛。
func (j *Job) updateLatestSession(ctx context.Context, state *runState) (outcome, error) {
	if state.events == nil {
		return outcome{}, errScheduleUnavailable
	}

	event, types, ok := latestStarted(state.events, j.now())
	if !ok {
		return outcome{skipped: true, detail: "no session started yet"}, nil
	}

	for _, sessionType := range types {
		if !state.force && !j.cache.ShouldUpdateSession(event.Name, string(sessionType)) && j.publishedSession(ctx, event, sessionType) {
			return outcome{skipped: true, detail: fmt.Sprintf("%s %s fresh", event.Name, sessionType)}, nil
		}

		session, err := fetch(ctx, j, "fetch_session_results", func(ctx context.Context) (f1data.Session, error) {
			return j.fetcher.SessionResults(ctx, j.season, event.Round, sessionType)
		})
		if errors.Is(err, f1data.ErrDataNotAvailable) {
			j.logger.WithFields(logrus.Fields{
				"event":   event.Name,
				"session": string(sessionType),
			}).Info("session results not published yet")
			continue
		}
		if err != nil {
			return outcome{}, err
		}

		doc := output.BuildLatestSession(session, j.team)
		if j.team != "" && len(doc.Results) == 0 {
			j.logger.WithFields(logrus.Fields{
				"event":   event.Name,
				"session": string(sessionType),
				"team":    j.team,
			}).Warn("team filter matched no drivers, keeping previous latest session")
			return outcome{skipped: true, detail: fmt.Sprintf("no %s drivers in %s %s", j.team, event.Name, sessionType)}, nil
		}
		if err := j.writer.WriteLatestSession(ctx, doc); err != nil {
			return outcome{}, err
		}
		j.markUpdated(cache.CategorySession, cache.SessionKey(event.Name, string(sessionType)))
		return outcome{detail: fmt.Sprintf("%s %s", event.Name, sessionType)}, nil
	}
	return outcome{skipped: true, detail: "results not published yet"}, nil
}

// publishedSession 判断 latest-session.json 是否已经是该 event/session 的结果。
func (j *Job) publishedSession(ctx context.Context, event f1data.Event, sessionType f1data.SessionType) bool {
	doc, err := j.writer.ReadLatestSession(ctx)
	if err != nil {
		return false
	}
	return doc.Event == event.Name && doc.SessionType == string(sessionType)
}

// updateStandings 同时刷新车手与车队积分榜。
func (j *Job) updateStandings(ctx context.Context, state *runState) (outcome, error) {
	if !state.force && !j.cache.ShouldUpdateStandings() && j.standingsPublished(ctx) {
		return outcome{skipped: true, detail: "standings fresh"}, nil
	}

	drivers, err := fetch(ctx, j, "fetch_driver_standings", func(ctx context.Context) (f1data.DriverTable, error) {
		return j.fetcher.DriverStandings(ctx, j.season)
	})
	if errors.Is(err, f1data.ErrDataNotAvailable) {
		return outcome{skipped: true, detail: "standings not published yet"}, nil
	}
	if err != nil {
		return outcome{}, err
	}
	teams, err := fetch(ctx, j, "fetch_constructor_standings", func(ctx context.Context) (f1data.ConstructorTable, error) {
		return j.fetcher.ConstructorStandings(ctx, j.season)
	})
	if err != nil {
		return outcome{}, err
	}

	now := j.now()
	if err := j.writer.WriteDriverStandings(ctx, output.BuildDriverStandings(drivers, now)); err != nil {
		return outcome{}, err
	}
	if err := j.writer.WriteConstructorStandings(ctx, output.BuildConstructorStandings(teams, drivers, now)); err != nil {
		return outcome{}, err
	}
	j.markUpdated(cache.CategoryStandings, "")
	return outcome{detail: fmt.Sprintf("after round %d", drivers.Round)}, nil
}

func (j *Job) standingsPublished(ctx context.Context) bool {
	if _, err := j.writer.ReadDriverStandings(ctx, j.season); err != nil {
		return false
	}
	_, err := j.writer.ReadConstructorStandings(ctx, j.season)
	return err == nil
}

// cleanup 清理缓存目录中的过期文件，超时后放弃等待。
func (j *Job) cleanup(ctx context.Context, _ *runState) (outcome, error) {
	done := make(chan cache.SweepReport, 1)
	go func() {
		done <- j.cache.Cleanup(j.retentionDays)
	}()

	select {
	case report := <-done:
		if report.Err != nil {
			return outcome{}, report.Err
		}
		detail := fmt.Sprintf("removed %d of %d files", report.Removed, report.Scanned)
		if report.Failed > 0 {
			detail += fmt.Sprintf(", %d failed", report.Failed)
		}
		return outcome{detail: detail}, nil
	case <-ctx.Done():
		return outcome{}, ctx.Err()
	}
}

// latestStarted 返回最近一站排位赛或正赛已开始的比赛，以及按优先级排列的 session 类型。
func latestStarted(events []f1data.Event, now time.Time) (f1data.Event, []f1data.SessionType, bool) {
	started := func(ts *time.Time) bool {
		return ts != nil && !ts.After(now)
	}
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		switch {
		case started(e.Race):
			return e, []f1data.SessionType{f1data.SessionRace, f1data.SessionQualifying}, true
		case started(e.Qualifying):
			return e, []f1data.SessionType{f1data.SessionQualifying}, true
		}
	}
	return f1data.Event{}, nil, false
}
