package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduquery-api/internal/observability"
)

// SlowRequestThreshold marks requests that are logged with slow=true.
const SlowRequestThreshold = 500 * time.Millisecond

// Observability records request metrics and one structured log line per API, login or
// dashboard request. Static assets and the metrics scrape are skipped.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		surface := requestSurface(c.Path())
		if surface == "" {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		method := c.Method()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		status := c.Response().StatusCode()
		code := strconv.Itoa(status)

		observability.APIRequests().WithLabelValues(method, route, code).Inc()
		observability.APILatency().WithLabelValues(method, route).Observe(elapsed.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.APIErrors().WithLabelValues(method, route, code).Inc()
		}

		entry := RequestLogger(logger, c).With().
			Str("surface", surface).
			Str("method", method).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Bool("slow", elapsed > SlowRequestThreshold).
			Logger()
		if username, ok := c.Locals("username").(string); ok && username != "" {
			entry = entry.With().Str("username", username).Logger()
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error().Msg("request failed")
		case status >= fiber.StatusBadRequest:
			entry.Warn().Msg("request rejected")
		default:
			entry.Info().Msg("request completed")
		}
		return err
	}
}

func requestSurface(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/"):
		return "api"
	case path == "/login" || path == "/session":
		return "auth"
	case path == "/dashboard" || strings.HasPrefix(path, "/dashboard/"):
		return "dashboard"
	default:
		return ""
	}
}
