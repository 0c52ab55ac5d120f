package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/pitwall-hub/pitwall/internal/cache"
	"github.com/pitwall-hub/pitwall/internal/output"
)

// 各产物的缓存时长（秒），回退响应使用更短的时长。
const (
	latestMaxAge            = 300
	latestFallbackMaxAge    = 60
	standingsMaxAge         = 1800
	standingsFallbackMaxAge = 300
	nextRaceMaxAge          = 300
	nextSessionMaxAge       = 60
)

type handlers struct {
	artifacts *output.Writer
	cache     *cache.Manager
	season    int
	now       func() time.Time
	logger    *logrus.Logger
}

func (h *handlers) latest(c fiber.Ctx) error {
	doc, err := h.artifacts.ReadLatestSession(c.Context())
	if err != nil {
		h.logMissing(c, output.LatestSessionFile, err)
		return fallback(c, latestFallbackMaxAge, fiber.Map{
			"event":         nil,
			"location":      nil,
			"country":       nil,
			"round":         nil,
			"session_type":  nil,
			"date":          nil,
			"results":       []output.ResultRow{},
			"total_drivers": 0,
			"message":       "latest session not available yet",
		})
	}
	return send(c, latestMaxAge, doc)
}

// standingsResponse 合并车手与车队积分榜。
type standingsResponse struct {
	Season         int                     `json:"season"`
	LastUpdated    time.Time               `json:"last_updated"`
	CompletedRaces int                     `json:"completed_races"`
	Drivers        []output.DriverRow      `json:"drivers"`
	Constructors   []output.ConstructorRow `json:"constructors"`
}

func (h *handlers) standings(c fiber.Ctx) error {
	drivers, err := h.artifacts.ReadDriverStandings(c.Context(), h.season)
	if err == nil {
		var teams output.ConstructorStandings
		teams, err = h.artifacts.ReadConstructorStandings(c.Context(), h.season)
		if err == nil {
			return send(c, standingsMaxAge, standingsResponse{
				Season:         drivers.Season,
				LastUpdated:    drivers.LastUpdated,
				CompletedRaces: drivers.CompletedRaces,
				Drivers:        drivers.Standings,
				Constructors:   teams.Standings,
			})
		}
	}
	h.logMissing(c, output.DriverStandingsFile(h.season), err)
	return fallback(c, standingsFallbackMaxAge, fiber.Map{
		"season":          h.season,
		"last_updated":    nil,
		"completed_races": 0,
		"drivers":         []output.DriverRow{},
		"constructors":    []output.ConstructorRow{},
		"message":         "standings not available yet",
	})
}

func (h *handlers) nextRace(c fiber.Ctx) error {
	doc, err := h.artifacts.ReadNextRace(c.Context())
	if err != nil {
		h.logMissing(c, output.NextRaceFile, err)
		return fallback(c, latestFallbackMaxAge, fiber.Map{
			"name":     nil,
			"location": nil,
			"country":  nil,
			"date":     nil,
			"circuit":  nil,
			"round":    nil,
			"sessions": nil,
			"message":  "next race not available yet",
		})
	}
	return send(c, nextRaceMaxAge, doc)
}

func (h *handlers) nextSession(c fiber.Ctx) error {
	race, err := h.artifacts.ReadNextRace(c.Context())
	if err == nil {
		if next, ok := output.NextSession(race, h.now()); ok {
			return send(c, nextSessionMaxAge, next)
		}
		err = fmt.Errorf("no upcoming session for %s", race.Name)
	}
	h.logMissing(c, output.NextRaceFile, err)
	return fallback(c, nextSessionMaxAge, fiber.Map{
		"event":   nil,
		"round":   nil,
		"session": nil,
		"start":   nil,
		"message": "next session not available yet",
	})
}

func (h *handlers) healthz(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *handlers) cacheStats(c fiber.Ctx) error {
	stats, err := h.cache.Stats()
	if err != nil {
		h.logger.WithError(err).WithField("request_id", RequestID(c)).Error("cache stats failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cache_stats_failed"})
	}
	return c.JSON(stats)
}

// logMissing 区分“尚未生成”（Debug）与读取失败（Warn）。
func (h *handlers) logMissing(c fiber.Ctx, name string, err error) {
	entry := h.logger.WithError(err).WithFields(logrus.Fields{
		"request_id": RequestID(c),
		"file":       name,
	})
	if errors.Is(err, cache.ErrNotFound) {
		entry.Debug("artifact missing, serving fallback")
		return
	}
	entry.Warn("artifact unreadable, serving fallback")
}

func send(c fiber.Ctx, maxAge int, body any) error {
	c.Set(fiber.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", maxAge))
	return c.JSON(body)
}

func fallback(c fiber.Ctx, maxAge int, body any) error {
	c.Set(fiber.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", maxAge))
	return c.Status(fiber.StatusAccepted).JSON(body)
}
