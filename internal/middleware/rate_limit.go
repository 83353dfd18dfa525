package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/codecraft-workspace/internal/observability"
	"github.com/noah-isme/codecraft-workspace/internal/utils"
)

// RateLimitConfig describes a per-caller request budget.
type RateLimitConfig struct {
	// Name labels the budget in keys and metrics. Routes sharing a name share the budget.
	Name   string
	Max    int
	Window time.Duration
}

// RateLimit enforces cfg per caller. Callers are identified by their platform user id and fall
// back to the client IP when anonymous. Rejections are counted per limiter; the limiter itself
// sets Retry-After.
func RateLimit(cfg RateLimitConfig) fiber.Handler {
	if cfg.Max <= 0 {
		cfg.Max = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}

	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return cfg.Name + ":" + callerKey(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			observability.RateLimited().WithLabelValues(cfg.Name).Inc()
			return utils.SendError(c, fiber.StatusTooManyRequests, "request budget exhausted, retry later")
		},
	})
}

func callerKey(c *fiber.Ctx) string {
	if id := UserID(c); id != "" {
		return "user:" + id
	}
	return "ip:" + c.IP()
}
