package serverutils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ValidationError carries per-field messages and maps to 400.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Message: "Validation failed",
		Fields:  map[string]string{field: message},
	}
}

// NotFoundError maps to 404.
type NotFoundError struct {
	Resource string
	Id       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Id)
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, Id: id}
}

// ErrorHandlerMiddleware turns handler errors into the JSON error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}
		return WriteError(c, err)
	}
}

func WriteError(c *fiber.Ctx, err error) error {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		res := ErrorResponse(fiber.StatusBadRequest, validationErr.Message)
		res.Errors = validationErr.Fields
		return c.Status(fiber.StatusBadRequest).JSON(res)
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, notFoundErr.Error()))
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
