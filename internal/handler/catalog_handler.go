package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecraft-workspace/internal/dto"
	"github.com/noah-isme/codecraft-workspace/internal/service"
	"github.com/noah-isme/codecraft-workspace/internal/utils"
)

// CatalogHandler serves the filtered problem list.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// Register binds the catalog routes.
func (h *CatalogHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

func (h *CatalogHandler) list(c *fiber.Ctx) error {
	var filter dto.ProblemCatalogFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.service.List(requestContext(c), sessionFromContext(c), filter)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	c.Set("X-Cache-Hit", strconv.FormatBool(response.CacheHit))
	return utils.SendSuccess(c, "problems retrieved", response)
}
