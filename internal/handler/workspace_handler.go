package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecraft-workspace/internal/dto"
	"github.com/noah-isme/codecraft-workspace/internal/middleware"
	"github.com/noah-isme/codecraft-workspace/internal/service"
	"github.com/noah-isme/codecraft-workspace/internal/utils"
)

// WorkspaceHandler exposes problem workspaces over HTTP.
type WorkspaceHandler struct {
	service   service.WorkspaceService
	logger    zerolog.Logger
	rateLimit int
}

// NewWorkspaceHandler constructs a WorkspaceHandler. rateLimit caps run, submit and chat
// requests per caller and minute; zero disables the limiter.
func NewWorkspaceHandler(service service.WorkspaceService, rateLimit int, logger zerolog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		service:   service,
		logger:    logger.With().Str("component", "workspace_handler").Logger(),
		rateLimit: rateLimit,
	}
}

// Register binds the workspace routes.
func (h *WorkspaceHandler) Register(router fiber.Router) {
	evaluate := func(c *fiber.Ctx) error { return c.Next() }
	if h.rateLimit > 0 {
		evaluate = middleware.RateLimit(middleware.RateLimitConfig{Name: "workspace-eval", Max: h.rateLimit, Window: time.Minute})
	}

	router.Post("/", h.open)
	router.Get("/:id", h.get)
	router.Delete("/:id", h.close)
	router.Put("/:id/problem", h.loadProblem)
	router.Put("/:id/language", h.selectLanguage)
	router.Put("/:id/code", h.editCode)
	router.Put("/:id/tabs", h.selectTabs)
	router.Post("/:id/run", evaluate, h.run)
	router.Post("/:id/submit", evaluate, h.submit)
	router.Put("/:id/chat/draft", h.editChatDraft)
	router.Post("/:id/chat", evaluate, h.sendMessage)
}

func (h *WorkspaceHandler) open(c *fiber.Ctx) error {
	var req dto.OpenWorkspaceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	snapshot, err := h.service.Open(requestContext(c), sessionFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "workspace opened", snapshot)
}

func (h *WorkspaceHandler) get(c *fiber.Ctx) error {
	snapshot, err := h.service.Get(sessionFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "workspace retrieved", snapshot)
}

func (h *WorkspaceHandler) close(c *fiber.Ctx) error {
	if err := h.service.Close(requestContext(c), sessionFromContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "workspace closed", nil)
}

func (h *WorkspaceHandler) loadProblem(c *fiber.Ctx) error {
	var req dto.LoadProblemRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	snapshot, err := h.service.LoadProblem(requestContext(c), sessionFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "problem loaded", snapshot)
}

func (h *WorkspaceHandler) selectLanguage(c *fiber.Ctx) error {
	var req dto.SelectLanguageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	snapshot, err := h.service.SelectLanguage(sessionFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "language selected", snapshot)
}

func (h *WorkspaceHandler) editCode(c *fiber.Ctx) error {
	var req dto.EditCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	snapshot, err := h.service.EditCode(sessionFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "code updated", snapshot)
}

func (h *WorkspaceHandler) selectTabs(c *fiber.Ctx) error {
	var req dto.SelectTabsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	snapshot, err := h.service.SelectTabs(sessionFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "tabs selected", snapshot)
}

func (h *WorkspaceHandler) run(c *fiber.Ctx) error {
	snapshot, err := h.service.Run(requestContext(c), sessionFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "run completed", snapshot)
}

func (h *WorkspaceHandler) submit(c *fiber.Ctx) error {
	snapshot, err := h.service.Submit(requestContext(c), sessionFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "submission completed", snapshot)
}

func (h *WorkspaceHandler) editChatDraft(c *fiber.Ctx) error {
	var req dto.ChatDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	snapshot, err := h.service.EditChatDraft(sessionFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "draft updated", snapshot)
}

func (h *WorkspaceHandler) sendMessage(c *fiber.Ctx) error {
	var req dto.ChatSendRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	snapshot, err := h.service.SendMessage(requestContext(c), sessionFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assistant replied", snapshot)
}
