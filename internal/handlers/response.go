package handlers

import (
	"quickbuy/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError logs err and writes the failure envelope. Internal errors carry
// the full cause, client errors only their message.
func respondError(c *fiber.Ctx, message string, err error) error {
	status := statusFor(err)
	detail := apperror.MessageOf(err)
	if status == fiber.StatusInternalServerError {
		detail = err.Error()
		zap.S().Errorw(message, "method", c.Method(), "path", c.Path(), "error", err)
	} else {
		zap.S().Debugw(message, "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   detail,
	})
}
