package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pitwall-hub/pitwall/internal/cache"
	"github.com/pitwall-hub/pitwall/internal/f1data"
	"github.com/pitwall-hub/pitwall/internal/guard"
	"github.com/pitwall-hub/pitwall/internal/logging"
	"github.com/pitwall-hub/pitwall/internal/output"
)

const (
	StageSchedule      = "schedule"
	StageLatestSession = "latest_session"
	StageStandings     = "standings"
	StageCleanup       = "cleanup"
)

// Fetcher 抽象数据来源，便于在测试中替换为假实现。
type Fetcher interface {
	Schedule(ctx context.Context, year int) ([]f1data.Event, error)
	SessionResults(ctx context.Context, year, round int, session f1data.SessionType) (f1data.Session, error)
	DriverStandings(ctx context.Context, year int) (f1data.DriverTable, error)
	ConstructorStandings(ctx context.Context, year int) (f1data.ConstructorTable, error)
}

// Options 描述 Job 的依赖与参数。
type Options struct {
	Cache          *cache.Manager
	Fetcher        Fetcher
	Writer         *output.Writer
	Season         int
	Team           string
	Retry          guard.Policy
	StageTimeout   time.Duration
	CleanupTimeout time.Duration
	RetentionDays  int
	Logger         logrus.FieldLogger
	Now            func() time.Time
}

// Job 是一次完整的刷新流程，同一进程内只应有一个 Job 在运行。
type Job struct {
	cache          *cache.Manager
	fetcher        Fetcher
	writer         *output.Writer
	season         int
	team           string
	retry          guard.Policy
	stageTimeout   time.Duration
	cleanupTimeout time.Duration
	retentionDays  int
	logger         logrus.FieldLogger
	now            func() time.Time
}

// NewJob 校验依赖并填充默认值。
func NewJob(opts Options) (*Job, error) {
	if opts.Cache == nil {
		return nil, errors.New("updater: cache manager required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("updater: fetcher required")
	}
	if opts.Season <= 0 {
		return nil, fmt.Errorf("updater: invalid season %d", opts.Season)
	}
	if opts.Writer == nil {
		opts.Writer = output.NewWriter(opts.Cache.DataStore())
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.StageTimeout <= 0 {
		opts.StageTimeout = 300 * time.Second
	}
	if opts.CleanupTimeout <= 0 {
		opts.CleanupTimeout = 30 * time.Second
	}
	if opts.RetentionDays < 1 {
		opts.RetentionDays = 7
	}
	return &Job{
		cache:          opts.Cache,
		fetcher:        opts.Fetcher,
		writer:         opts.Writer,
		season:         opts.Season,
		team:           opts.Team,
		retry:          opts.Retry,
		stageTimeout:   opts.StageTimeout,
		cleanupTimeout: opts.CleanupTimeout,
		retentionDays:  opts.RetentionDays,
		logger:         opts.Logger,
		now:            opts.Now,
	}, nil
}

// RunOptions 控制单次运行。Force 忽略新鲜度判断强制刷新。
type RunOptions struct {
	Force bool
}

// StageResult 记录单个阶段的结果。
type StageResult struct {
	Name     string
	Critical bool
	Skipped  bool
	Detail   string
	Err      error
	Duration time.Duration
}

// OK 表示阶段成功（包括因数据足够新而跳过）。
func (r StageResult) OK() bool {
	return r.Err == nil
}

// Summary 汇总一次运行的所有阶段。
type Summary struct {
	Stages    []StageResult
	Succeeded int
	Total     int
}

// OK 在所有关键阶段都成功时返回 true，清理阶段失败不影响结果。
func (s Summary) OK() bool {
	for _, stage := range s.Stages {
		if stage.Critical && !stage.OK() {
			return false
		}
	}
	return true
}

// outcome 是阶段函数的返回值。
type outcome struct {
	skipped bool
	detail  string
}

// runState 在阶段之间传递赛历。
type runState struct {
	force  bool
	events []f1data.Event
}

// Run 依次执行赛历、最近 session、积分榜与清理阶段。
func (j *Job) Run(ctx context.Context, opts RunOptions) Summary {
	state := &runState{force: opts.Force}
	stages := []struct {
		name     string
		critical bool
		timeout  time.Duration
		run      func(context.Context, *runState) (outcome, error)
	}{
		{StageSchedule, true, j.stageTimeout, j.updateSchedule},
		{StageLatestSession, true, j.stageTimeout, j.updateLatestSession},
		{StageStandings, true, j.stageTimeout, j.updateStandings},
		{StageCleanup, false, j.cleanupTimeout, j.cleanup},
	}

	var summary Summary
	for _, stage := range stages {
		logger := j.logger.WithFields(logging.StageFields(stage.name, j.season))
		started := j.now()

		stageCtx, cancel := context.WithTimeout(ctx, stage.timeout)
		out, err := stage.run(stageCtx, state)
		cancel()

		result := StageResult{
			Name:     stage.name,
			Critical: stage.critical,
			Skipped:  out.skipped,
			Detail:   out.detail,
			Err:      err,
			Duration: j.now().Sub(started),
		}
		summary.Stages = append(summary.Stages, result)
		summary.Total++

		fields := logrus.Fields{"skipped": out.skipped, "elapsed_ms": result.Duration.Milliseconds()}
		switch {
		case err != nil && stage.critical:
			logger.WithFields(fields).WithError(err).Error("stage failed")
		case err != nil:
			logger.WithFields(fields).WithError(err).Warn("stage failed")
		default:
			summary.Succeeded++
			logger.WithFields(fields).WithField("detail", out.detail).Info("stage completed")
		}
	}
	return summary
}

// markUpdated 记录刷新时间；保存失败已由元数据层记录，这里不让阶段失败。
func (j *Job) markUpdated(category cache.Category, key string) {
	_ = j.cache.MarkUpdated(category, key)
}

// fetch 包装重试逻辑：数据不存在属于永久错误，立即返回。
// 走到这里说明策略判定需要刷新或调用方强制刷新，因此总是绕过响应缓存回源。
func fetch[T any](ctx context.Context, j *Job, operation string, fn func(context.Context) (T, error)) (T, error) {
	ctx = f1data.WithRefresh(ctx)
	return guard.Retry(ctx, j.retry, j.logger, operation, func() (T, error) {
		value, err := fn(ctx)
		if err != nil && !f1data.Retryable(err) {
			return value, guard.Permanent(err)
		}
		return value, err
	})
}
