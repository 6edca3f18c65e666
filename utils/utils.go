package utils

import (
	"errors"
	"strconv"

	"talentdesk/fields"
	"talentdesk/repository"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse creates a standardized error response. Clients read the
// message from "detail".
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	detail := message
	if err != nil && status < fiber.StatusInternalServerError {
		detail = message + ": " + err.Error()
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"detail":  detail,
	})
}

// FieldErrorResponse reports custom field problems keyed by field name.
func FieldErrorResponse(c *fiber.Ctx, errs fields.ValidationErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "Validation failed",
		"detail":  errs.Error(),
		"fields":  errs,
	})
}

// RespondError maps repository and validation errors onto HTTP statuses.
func RespondError(c *fiber.Ctx, message string, err error) error {
	var verrs fields.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return FieldErrorResponse(c, verrs)
	case errors.Is(err, repository.ErrNotFound):
		return ErrorResponse(c, fiber.StatusNotFound, message, err)
	case errors.Is(err, repository.ErrConflict):
		return ErrorResponse(c, fiber.StatusConflict, message, err)
	default:
		LogError("request_failed", err, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
		return ErrorResponse(c, fiber.StatusInternalServerError, message, err)
	}
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// ParseUint safely parses a string to uint
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}
