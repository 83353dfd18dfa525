package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecraft-workspace/internal/middleware"
	"github.com/noah-isme/codecraft-workspace/internal/observability"
	"github.com/noah-isme/codecraft-workspace/internal/service"
	"github.com/noah-isme/codecraft-workspace/internal/utils"
	"github.com/noah-isme/codecraft-workspace/internal/workspace"
	"github.com/noah-isme/codecraft-workspace/pkg/platform"
)

func sessionFromContext(c *fiber.Ctx) service.Session {
	return service.Session{
		UserID: middleware.UserID(c),
		Token:  middleware.SessionToken(c),
	}
}

func requestContext(c *fiber.Ctx) context.Context {
	return observability.WithCorrelation(c.UserContext(), middleware.RequestCorrelation(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := observability.RequestLogger(requestContext(c), base)
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}

// sendServiceError maps service and workspace errors onto the response envelope.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, "invalid payload", validationDetails(err))
	case errors.Is(err, service.ErrWorkspaceNotFound), errors.Is(err, workspace.ErrClosed):
		return utils.SendError(c, fiber.StatusNotFound, service.ErrWorkspaceNotFound.Error())
	case errors.Is(err, workspace.ErrRequestInFlight),
		errors.Is(err, workspace.ErrChatInFlight),
		errors.Is(err, workspace.ErrNotReady):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, workspace.ErrMessageTooShort):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, workspace.ErrUnknownLanguage),
		errors.Is(err, workspace.ErrUnknownTab),
		errors.Is(err, workspace.ErrNoStarterCode):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, platform.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusUnauthorized, "session rejected by platform")
	case errors.Is(err, platform.ErrNetwork):
		requestLogger(logger, c).Warn().Err(err).Msg("platform unreachable")
		return utils.SendError(c, fiber.StatusBadGateway, "platform unavailable")
	}

	var statusErr *platform.StatusError
	if errors.As(err, &statusErr) {
		requestLogger(logger, c).Warn().Err(err).Int("platform_status", statusErr.StatusCode).Msg("platform request failed")
		return utils.SendError(c, fiber.StatusBadGateway, "platform request failed")
	}

	requestLogger(logger, c).Error().Err(err).Msg("unexpected workspace error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
