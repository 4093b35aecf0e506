// Package observability wires Prometheus metrics and OpenTelemetry
// tracing into the application.
package observability

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis operations across cache and
	// rate limiter paths.
	RedisErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quickforge_redis_errors_total",
		Help: "Total number of Redis operation errors",
	})

	// GenerationsTotal counts generation requests by creation type and outcome.
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quickforge_generations_total",
		Help: "Total number of generation requests",
	}, []string{"type", "outcome"})

	// QuotaDeclines counts generation requests declined by the free-tier quota.
	QuotaDeclines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quickforge_quota_declines_total",
		Help: "Total number of generation requests declined by the usage quota",
	})

	// CacheHits counts feed cache hits and misses.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quickforge_cache_requests_total",
		Help: "Cache lookups by result",
	}, []string{"result"})
)

// RegisterMetrics attaches the Prometheus middleware to the app and
// exposes the scrape endpoint at /metrics.
func RegisterMetrics(app *fiber.App, serviceName string) {
	prom := fiberprometheus.New(serviceName)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)
}
