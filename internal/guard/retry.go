package guard

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

// Policy 描述重试次数与指数退避参数。
type Policy struct {
	// MaxRetries 是总尝试次数（含首次），小于 1 时按 1 处理。
	MaxRetries int
	Delay      time.Duration
	Backoff    float64
}

// DefaultPolicy 返回 3 次尝试、2s 起步、倍数 2 的策略。
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 3, Delay: 2 * time.Second, Backoff: 2}
}

func (p Policy) attempts() uint {
	if p.MaxRetries < 1 {
		return 1
	}
	return uint(p.MaxRetries)
}

func (p Policy) backOff() backoff.BackOff {
	multiplier := p.Backoff
	if multiplier < 1 {
		multiplier = 1
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.Delay,
		RandomizationFactor: 0,
		Multiplier:          multiplier,
		MaxInterval:         time.Duration(math.MaxInt64),
	}
	b.Reset()
	return b
}

// Permanent 标记不应重试的错误，Retry 会立即返回其内部错误。
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Retry 执行 fn，失败时依次等待 Delay、Delay*Backoff、Delay*Backoff² ... 后重试，
// 最多尝试 MaxRetries 次；耗尽后返回最后一次的错误，不再额外等待。
func Retry[T any](ctx context.Context, policy Policy, logger logrus.FieldLogger, operation string, fn func() (T, error)) (T, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	attempt := 0
	notify := func(err error, wait time.Duration) {
		logger.WithError(err).WithFields(logrus.Fields{
			"action":    "retry",
			"operation": operation,
			"attempt":   attempt,
			"wait":      wait.String(),
		}).Warn("attempt failed, retrying")
	}

	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		return fn()
	},
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxTries(policy.attempts()),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"action":    "retry",
			"operation": operation,
			"attempts":  attempt,
		}).Error("operation failed")
	}
	return result, err
}
