package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/codecraft-workspace/internal/config"
	"github.com/noah-isme/codecraft-workspace/internal/utils"
)

const (
	componentUp       = "up"
	componentDown     = "down"
	componentDisabled = "disabled"

	healthCheckTimeout = 2 * time.Second
)

// ConnectionStatus is satisfied by *nats.Conn.
type ConnectionStatus interface {
	IsConnected() bool
}

// WorkspaceCounter reports how many workspaces are open.
type WorkspaceCounter interface {
	Active() int
}

// HealthDependencies are the optional backends checked by the health endpoint. Nil fields are
// reported as disabled.
type HealthDependencies struct {
	Redis      *redis.Client
	NATS       ConnectionStatus
	Workspaces WorkspaceCounter
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status         string            `json:"status"`
	Timestamp      time.Time         `json:"timestamp"`
	Service        string            `json:"service"`
	Environment    string            `json:"environment"`
	Platform       string            `json:"platform"`
	OpenWorkspaces int               `json:"open_workspaces"`
	Components     map[string]string `json:"components"`
}

// HealthHandler reports whether the service and the backends it was configured with are usable.
type HealthHandler struct {
	cfg  config.Config
	deps HealthDependencies
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(cfg config.Config, deps HealthDependencies) *HealthHandler {
	return &HealthHandler{cfg: cfg, deps: deps}
}

// Check answers 200 when every configured backend responds and 503 otherwise.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	payload := HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Service:     h.cfg.AppName,
		Environment: h.cfg.AppEnv,
		Platform:    h.cfg.PlatformBaseURL,
		Components: map[string]string{
			"redis": h.redisStatus(c.UserContext()),
			"nats":  h.natsStatus(),
		},
	}
	if h.deps.Workspaces != nil {
		payload.OpenWorkspaces = h.deps.Workspaces.Active()
	}

	for _, status := range payload.Components {
		if status == componentDown {
			payload.Status = "degraded"
			return utils.SendErrorWithDetails(c, fiber.StatusServiceUnavailable, "service degraded", payload)
		}
	}
	return utils.SendSuccess(c, "service healthy", payload)
}

func (h *HealthHandler) redisStatus(ctx context.Context) string {
	if h.deps.Redis == nil {
		return componentDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := h.deps.Redis.Ping(ctx).Err(); err != nil {
		return componentDown
	}
	return componentUp
}

func (h *HealthHandler) natsStatus() string {
	if h.deps.NATS == nil {
		return componentDisabled
	}
	if !h.deps.NATS.IsConnected() {
		return componentDown
	}
	return componentUp
}
