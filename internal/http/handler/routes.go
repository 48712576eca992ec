package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck returns the liveness handler. The response is a constant:
// it never touches the database, so a dependency outage does not change
// its answer.
func HealthCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	}
}

// Metrics serves the given Prometheus registry in the standard
// exposition format.
func Metrics(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// RegisterRoutes attaches the service's HTTP routes to the Fiber app.
func RegisterRoutes(app *fiber.App, g prometheus.Gatherer) {
	app.Get("/health", HealthCheck())
	app.Get("/metrics", Metrics(g))
}
