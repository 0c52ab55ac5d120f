package updater

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pitwall-hub/pitwall/internal/cache"
	"github.com/pitwall-hub/pitwall/internal/f1data"
	"github.com/pitwall-hub/pitwall/internal/guard"
	"github.com/pitwall-hub/pitwall/internal/output"
)

const upstreamSchedule = `{"MRData":{"RaceTable":{"season":"2025","Races":[
 {"season":"2025","round":"1","raceName":"Australian Grand Prix",
  "Circuit":{"circuitName":"Albert Park Grand Prix Circuit","Location":{"locality":"Melbourne","country":"Australia"}},
  "date":"2025-03-16","time":"04:00:00Z","Qualifying":{"date":"2025-03-15","time":"05:00:00Z"}},
 {"season":"2025","round":"2","raceName":"Chinese Grand Prix",
  "Circuit":{"circuitName":"Shanghai International Circuit","Location":{"locality":"Shanghai","country":"China"}},
  "date":"2025-03-23","time":"07:00:00Z","Qualifying":{"date":"2025-03-22","time":"07:00:00Z"}}
]}}}`

const upstreamResultsTemplate = `{"MRData":{"RaceTable":{"Races":[
 {"season":"2025","round":"1","raceName":"Australian Grand Prix",
  "date":"2025-03-16","time":"04:00:00Z",
  "Results":[
   {"number":"16","position":"1","points":"%POINTS%","status":"Finished",
    "Driver":{"permanentNumber":"16","code":"LEC","givenName":"Charles","familyName":"Leclerc"},
    "Constructor":{"name":"Ferrari"},"Time":{"millis":"5000000","time":"1:23:20.000"}}
  ]}
]}}}`

// 活跃窗口内 session 阈值为 5 分钟，响应缓存 TTL 为 1 小时：策略判定刷新后必须拿到上游的新数据。
func TestRunRefreshIgnoresCachedUpstreamResponse(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2025, 3, 21, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var points atomic.Value
	points.Store("25")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2025.json":
			_, _ = io.WriteString(w, upstreamSchedule)
		case "/2025/1/results.json":
			_, _ = io.WriteString(w, strings.ReplaceAll(upstreamResultsTemplate, "%POINTS%", points.Load().(string)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	manager, err := cache.New(cache.Options{
		CacheDir:    filepath.Join(root, "cache"),
		DataDir:     filepath.Join(root, "data"),
		Location:    time.UTC,
		ResponseTTL: time.Hour,
		Logger:      logger,
		Now:         clock,
	})
	if err != nil {
		t.Fatalf("cache manager: %v", err)
	}
	client, err := f1data.NewClient(f1data.Options{
		BaseURL:   srv.URL,
		Responses: manager.Responses(),
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	job, err := NewJob(Options{
		Cache:   manager,
		Fetcher: client,
		Season:  2025,
		Retry:   guard.Policy{MaxRetries: 1, Delay: time.Millisecond, Backoff: 1},
		Logger:  logger,
		Now:     clock,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	writer := output.NewWriter(manager.DataStore())
	ctx := context.Background()

	job.Run(ctx, RunOptions{})
	assertPoints(t, writer, 25)

	points.Store("99")
	now = now.Add(10 * time.Minute)
	if !manager.ShouldUpdateSession("Australian Grand Prix", "Race") {
		t.Fatalf("session should be due for refresh")
	}
	job.Run(ctx, RunOptions{})
	assertPoints(t, writer, 99)

	points.Store("101")
	job.Run(ctx, RunOptions{Force: true})
	assertPoints(t, writer, 101)
}

func assertPoints(t *testing.T, writer *output.Writer, want float64) {
	t.Helper()
	latest, err := writer.ReadLatestSession(context.Background())
	if err != nil {
		t.Fatalf("read latest: %v", err)
	}
	if len(latest.Results) != 1 || latest.Results[0].Points != want {
		t.Fatalf("expected points %v, got %+v", want, latest.Results)
	}
}
