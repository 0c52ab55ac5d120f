package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestSweeperRemovesFilesPastRetention(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	old := touch(t, filepath.Join(root, "responses", "2025", "old.json"), now.Add(-8*24*time.Hour))
	recent := touch(t, filepath.Join(root, "responses", "recent.json"), now.Add(-6*24*time.Hour))
	top := touch(t, filepath.Join(root, "stale.bin"), now.Add(-30*24*time.Hour))

	logger, _ := test.NewNullLogger()
	report := NewSweeper(root, logger, func() time.Time { return now }).Sweep(7)

	if report.Err != nil {
		t.Fatalf("unexpected sweep error: %v", report.Err)
	}
	if report.Scanned != 3 || report.Removed != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	for _, gone := range []string{old, top} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Fatalf("%s should be deleted", gone)
		}
	}
	if _, err := os.Stat(recent); err != nil {
		t.Fatalf("recent file should be retained: %v", err)
	}
}

func TestSweeperToleratesMissingRoot(t *testing.T) {
	logger, hook := test.NewNullLogger()
	report := NewSweeper(filepath.Join(t.TempDir(), "absent"), logger, nil).Sweep(7)
	if report.Err == nil {
		t.Fatalf("missing root should be reported")
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.ErrorLevel {
		t.Fatalf("aborted sweep should be logged as an error")
	}
}

func TestSweeperContinuesPastUndeletableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	root := t.TempDir()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-10 * 24 * time.Hour)

	locked := filepath.Join(root, "locked")
	pinned := touch(t, filepath.Join(locked, "pinned.json"), old)
	loose := touch(t, filepath.Join(root, "loose.json"), old)
	if err := os.Chmod(locked, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	logger, hook := test.NewNullLogger()
	report := NewSweeper(root, logger, func() time.Time { return now }).Sweep(7)

	if report.Err != nil {
		t.Fatalf("single failure must not abort the sweep: %v", report.Err)
	}
	if report.Removed != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if _, err := os.Stat(loose); !os.IsNotExist(err) {
		t.Fatalf("deletable file should be gone")
	}
	if _, err := os.Stat(pinned); err != nil {
		t.Fatalf("file in read-only dir should remain: %v", err)
	}
	logged := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel && entry.Data["kind"] == "permission" {
			logged = true
		}
	}
	if !logged {
		t.Fatalf("failed deletion should be logged as a permission error")
	}
}

func touch(t *testing.T, path string, modTime time.Time) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return path
}
