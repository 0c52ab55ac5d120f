package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func fastPolicy(maxRetries int) Policy {
	return Policy{MaxRetries: maxRetries, Delay: time.Millisecond, Backoff: 2}
}

func countLevel(hook *test.Hook, level logrus.Level) int {
	n := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == level {
			n++
		}
	}
	return n
}

func TestRetrySucceedsOnThirdAttempt(t *testing.T) {
	logger, hook := test.NewNullLogger()
	calls := 0
	got, err := Retry(context.Background(), fastPolicy(3), logger, "fetch", func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("unexpected result: %q", got)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if delays := countLevel(hook, logrus.WarnLevel); delays != 2 {
		t.Fatalf("expected 2 delays, got %d", delays)
	}
}

func TestRetryReturnsFinalErrorWithoutTrailingDelay(t *testing.T) {
	logger, hook := test.NewNullLogger()
	calls := 0
	final := errors.New("third")
	_, err := Retry(context.Background(), fastPolicy(3), logger, "fetch", func() (int, error) {
		calls++
		if calls == 3 {
			return 0, final
		}
		return 0, errors.New("transient")
	})
	if !errors.Is(err, final) {
		t.Fatalf("expected final error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if delays := countLevel(hook, logrus.WarnLevel); delays != 2 {
		t.Fatalf("expected 2 delays, got %d", delays)
	}
	if countLevel(hook, logrus.ErrorLevel) != 1 {
		t.Fatalf("exhaustion should be logged once")
	}
}

func TestRetryBackoffGrowsExponentially(t *testing.T) {
	b := Policy{MaxRetries: 4, Delay: 10 * time.Millisecond, Backoff: 3}.backOff()
	want := []time.Duration{10 * time.Millisecond, 30 * time.Millisecond, 90 * time.Millisecond}
	for i, w := range want {
		if got := b.NextBackOff(); got != w {
			t.Fatalf("delay %d: want %s got %s", i, w, got)
		}
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	missing := errors.New("missing")
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(5), logger, "fetch", func() (int, error) {
		calls++
		return 0, Permanent(missing)
	})
	if !errors.Is(err, missing) {
		t.Fatalf("expected permanent cause, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("permanent errors must not be retried, got %d calls", calls)
	}
	if countLevel(hook, logrus.WarnLevel) != 0 {
		t.Fatalf("no delay expected for permanent errors")
	}
}

func TestRetryTreatsNonPositiveMaxAsSingleAttempt(t *testing.T) {
	logger, _ := test.NewNullLogger()
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(0), logger, "fetch", func() (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	if err == nil || calls != 1 {
		t.Fatalf("expected a single failing attempt, calls=%d err=%v", calls, err)
	}
}
