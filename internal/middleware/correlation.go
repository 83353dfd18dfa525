package middleware

import (
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/noah-isme/codecraft-workspace/internal/observability"
	"github.com/noah-isme/codecraft-workspace/internal/utils"
)

const (
	correlationHeader    = "X-Correlation-ID"
	requestIDHeader      = "X-Request-ID"
	maxCorrelationLength = 128
)

// CorrelationID binds a correlation id to every request. A caller supplied id is reused when it
// is a plain token; anything else is replaced by a fresh uuid. The id is echoed in the response
// and carried on the user context, where workspace logs and published events pick it up.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := acceptCorrelation(c.Get(correlationHeader))
		if id == "" {
			id = acceptCorrelation(c.Get(requestIDHeader))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(utils.CorrelationLocal, id)
		c.Set(correlationHeader, id)
		c.SetUserContext(observability.WithCorrelation(c.UserContext(), id))
		return c.Next()
	}
}

// RequestCorrelation returns the correlation id bound to the request.
func RequestCorrelation(c *fiber.Ctx) string {
	if id, ok := c.Locals(utils.CorrelationLocal).(string); ok {
		return id
	}
	return observability.CorrelationID(c.UserContext())
}

// acceptCorrelation keeps ids that are safe to log and forward on event payloads.
func acceptCorrelation(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxCorrelationLength {
		return ""
	}
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '-', '_', '.', ':':
			continue
		}
		return ""
	}
	return id
}
