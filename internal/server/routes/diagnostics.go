package routes

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poke-hub/poke-hub/internal/cache"
	"github.com/poke-hub/poke-hub/internal/config"
	"github.com/poke-hub/poke-hub/internal/version"
)

// DiagnosticsOptions 汇总诊断接口依赖；Store 为空表示缓存已关闭。
type DiagnosticsOptions struct {
	Config   *config.Config
	Store    cache.Store
	Gatherer prometheus.Gatherer
}

// RegisterDiagnosticsRoutes 暴露 /-/ 前缀下的健康检查、缓存统计与 Prometheus 指标。
func RegisterDiagnosticsRoutes(app *fiber.App, opts DiagnosticsOptions) {
	if app == nil || opts.Config == nil {
		return
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	app.Get("/-/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": version.Full(),
		})
	})

	app.Get("/-/stats", func(c fiber.Ctx) error {
		return c.JSON(encodeStats(opts.Config, opts.Store))
	})

	app.Get("/-/cache/keys", func(c fiber.Ctx) error {
		if opts.Store == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cache_disabled"})
		}
		return c.JSON(fiber.Map{"keys": encodeKeys(opts.Store.Keys())})
	})

	app.Delete("/-/cache", func(c fiber.Ctx) error {
		if opts.Store == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cache_disabled"})
		}
		cleared := opts.Store.Clear()
		return c.JSON(fiber.Map{"cleared": cleared})
	})

	app.Get("/-/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

type statsPayload struct {
	Cache    cacheStatsPayload `json:"cache"`
	Upstream upstreamPayload   `json:"upstream"`
}

type cacheStatsPayload struct {
	Mode              string  `json:"mode"`
	Entries           int     `json:"entries"`
	MaxSize           int     `json:"max_size"`
	ExpirationSeconds int64   `json:"expiration_seconds"`
	Hits              uint64  `json:"hits"`
	Misses            uint64  `json:"misses"`
	Inserts           uint64  `json:"inserts"`
	Removes           uint64  `json:"removes"`
	Evictions         uint64  `json:"evictions"`
	Expirations       uint64  `json:"expirations"`
	Sweeps            uint64  `json:"sweeps"`
	HitRate           float64 `json:"hit_rate"`
}

type upstreamPayload struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int64  `json:"timeout_seconds"`
}

func encodeStats(cfg *config.Config, store cache.Store) statsPayload {
	payload := statsPayload{
		Cache: cacheStatsPayload{
			Mode:              cfg.CacheMode(),
			MaxSize:           cfg.Cache.MaxSize,
			ExpirationSeconds: int64(cfg.Cache.Expiration.DurationValue().Seconds()),
		},
		Upstream: upstreamPayload{
			BaseURL:        cfg.Upstream.BaseURL,
			TimeoutSeconds: int64(cfg.Upstream.Timeout.DurationValue().Seconds()),
		},
	}
	if store == nil {
		return payload
	}

	stats := store.Stats()
	payload.Cache.Entries = stats.Entries
	payload.Cache.Hits = stats.Hits
	payload.Cache.Misses = stats.Misses
	payload.Cache.Inserts = stats.Inserts
	payload.Cache.Removes = stats.Removes
	payload.Cache.Evictions = stats.Evictions
	payload.Cache.Expirations = stats.Expirations
	payload.Cache.Sweeps = stats.Sweeps
	payload.Cache.HitRate = stats.HitRate()
	return payload
}

func encodeKeys(keys []cache.Key) []string {
	result := make([]string, len(keys))
	for i, key := range keys {
		result[i] = key.String()
	}
	return result
}
