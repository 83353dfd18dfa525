package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/codecraft-workspace/internal/config"
	"github.com/noah-isme/codecraft-workspace/internal/handler"
	"github.com/noah-isme/codecraft-workspace/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	HealthHandler    *handler.HealthHandler
	WorkspaceHandler *handler.WorkspaceHandler
	StreamHandler    *handler.WorkspaceStreamHandler
	CatalogHandler   *handler.CatalogHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	health := deps.HealthHandler
	if health == nil {
		health = handler.NewHealthHandler(cfg, handler.HealthDependencies{})
	}
	api.Get("/health", health.Check)

	if deps.CatalogHandler != nil {
		deps.CatalogHandler.Register(api.Group("/problems"))
	}

	workspaces := api.Group("/workspaces")
	if deps.StreamHandler != nil {
		deps.StreamHandler.Register(workspaces)
	}
	if deps.WorkspaceHandler != nil {
		deps.WorkspaceHandler.Register(workspaces)
	}
}
