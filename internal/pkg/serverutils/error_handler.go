package serverutils

import (
	"errors"
	"log"

	"bookreview-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an application error to its HTTP status.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	switch apperror.KindOf(err) {
	case apperror.KindBadRequest:
		return fiber.StatusBadRequest
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := StatusFor(err)
		message := apperror.MessageOf(err)
		if status == fiber.StatusInternalServerError {
			log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
			message = "Internal server error"
		}

		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}
