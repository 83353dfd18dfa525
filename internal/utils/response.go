package utils

import "github.com/gofiber/fiber/v2"

// CorrelationLocal is the fiber local holding the request correlation id.
const CorrelationLocal = "correlation_id"

// APIResponse is the envelope of every API response. Workspace snapshots change on every
// interaction, so responses are never cacheable.
type APIResponse struct {
	Success       bool        `json:"success"`
	Data          interface{} `json:"data,omitempty"`
	Message       string      `json:"message"`
	Details       interface{} `json:"details,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}
	return write(c, status, APIResponse{Success: true, Data: data, Message: message})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	return SendErrorWithDetails(c, status, message, nil)
}

// SendErrorWithDetails sends an error carrying machine readable details, such as the failing
// fields of a request or the state of unhealthy dependencies.
func SendErrorWithDetails(c *fiber.Ctx, status int, message string, details interface{}) error {
	if message == "" {
		message = "error"
	}
	return write(c, status, APIResponse{Success: false, Message: message, Details: details})
}

func write(c *fiber.Ctx, status int, body APIResponse) error {
	if id, ok := c.Locals(CorrelationLocal).(string); ok {
		body.CorrelationID = id
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(status).JSON(body)
}
