package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecraft-workspace/internal/observability"
)

const (
	apiPrefix       = "/api/"
	workspacesRoute = "/api/v1/workspaces/:id"
)

// Observability records Prometheus metrics and one structured log line per API request. Requests
// on workspace routes are tagged with the workspace id, so a request can be followed into the
// controller and event logs through its correlation id.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()
	base := logger.With().Str("component", "http").Logger()

	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Path(), apiPrefix) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		route := routeTemplate(c)
		method := c.Method()
		status := responseStatus(c, err)
		statusLabel := strconv.Itoa(status)

		observability.HTTPRequests().WithLabelValues(method, route, statusLabel).Inc()
		observability.HTTPLatency().WithLabelValues(method, route).Observe(duration.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.HTTPErrors().WithLabelValues(method, route, statusLabel).Inc()
		}

		requestLogger := observability.RequestLogger(c.UserContext(), base)
		event := requestEvent(&requestLogger, status).
			Str("route", route).
			Str("method", method).
			Int("status", status).
			Float64("latency_ms", float64(duration)/float64(time.Millisecond)).
			Str("latency_bucket", latencyBucket(duration)).
			Str("user_id", UserID(c))
		if strings.HasPrefix(route, workspacesRoute) {
			event = event.Str("workspace_id", c.Params("id"))
		}
		if err != nil {
			event = event.Err(err)
		}
		event.Msg(outcomeMessage(status))

		return err
	}
}

// responseStatus reports the status the client will see. Errors returned by handlers are only
// turned into responses by the error handler after the middleware chain unwinds.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

func requestEvent(logger *zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= fiber.StatusInternalServerError:
		return logger.Error()
	case status >= fiber.StatusBadRequest:
		return logger.Warn()
	default:
		return logger.Info()
	}
}

func outcomeMessage(status int) string {
	switch {
	case status == fiber.StatusSwitchingProtocols:
		return "workspace stream upgraded"
	case status >= fiber.StatusInternalServerError:
		return "request failed"
	case status >= fiber.StatusBadRequest:
		return "request completed with client error"
	default:
		return "request completed"
	}
}

func routeTemplate(c *fiber.Ctx) string {
	if c.Route() != nil && c.Route().Path != "" {
		return c.Route().Path
	}
	return c.Path()
}

func latencyBucket(duration time.Duration) string {
	switch {
	case duration <= 25*time.Millisecond:
		return "<=25ms"
	case duration <= 50*time.Millisecond:
		return "<=50ms"
	case duration <= 100*time.Millisecond:
		return "<=100ms"
	case duration <= 250*time.Millisecond:
		return "<=250ms"
	case duration <= 500*time.Millisecond:
		return "<=500ms"
	default:
		return ">500ms"
	}
}
