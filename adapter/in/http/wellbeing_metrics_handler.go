package http

import (
	"wellbeing_server/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// RegisterMetrics exposes the Prometheus registry at /metrics.
func RegisterMetrics(app fiber.Router, collector *metrics.Collector) {
	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
}
