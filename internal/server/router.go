package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pitwall-hub/pitwall/internal/cache"
	"github.com/pitwall-hub/pitwall/internal/logging"
	"github.com/pitwall-hub/pitwall/internal/output"
)

// AppOptions 描述 Fiber 应用的依赖。
type AppOptions struct {
	Logger *logrus.Logger
	Cache  *cache.Manager
	// Artifacts 默认由 Cache.DataStore() 构造。
	Artifacts *output.Writer
	Season    int
	Now       func() time.Time
}

const contextKeyRequestID = "_pitwall_request_id"

// NewApp 构造挂载了产物路由与诊断接口的 Fiber 应用。
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Cache == nil {
		return nil, errors.New("cache manager is required")
	}
	if opts.Season <= 0 {
		return nil, errors.New("season is required")
	}
	if opts.Artifacts == nil {
		opts.Artifacts = output.NewWriter(opts.Cache.DataStore())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware(opts.Logger))

	h := &handlers{
		artifacts: opts.Artifacts,
		cache:     opts.Cache,
		season:    opts.Season,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	app.Get("/api/latest.json", h.latest)
	app.Get("/api/standings.json", h.standings)
	app.Get("/api/next-race.json", h.nextRace)
	app.Get("/api/next-session.json", h.nextSession)
	app.Get("/-/healthz", h.healthz)
	app.Get("/-/cache/stats", h.cacheStats)

	return app, nil
}

// requestContextMiddleware 负责生成请求 ID 并在请求结束后输出访问日志。
func requestContextMiddleware(logger *logrus.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)

		started := time.Now()
		err := c.Next()

		entry := logger.WithFields(logging.RequestFields(reqID, c.Method(), c.Path(), c.Response().StatusCode())).
			WithField("elapsed_ms", time.Since(started).Milliseconds())
		if err != nil {
			entry.WithError(err).Warn("request failed")
			return err
		}
		if isDiagnosticsPath(c.Path()) {
			entry.Debug("request served")
		} else {
			entry.Info("request served")
		}
		return nil
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

func isDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}
