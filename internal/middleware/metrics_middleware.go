package middleware

import (
	"strconv"
	"time"

	"bookshelf/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts, latency and in-flight requests.
// Chain errors are rendered here so the recorded status is the one sent.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.InFlight.Inc()
		defer m.InFlight.Dec()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		route := c.Route().Path
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())
		m.RequestsTotal.WithLabelValues(route, method, status).Inc()
		m.ReqDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		return nil
	}
}
