package serverutils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"ai-tutor-be/pkg/fault"
)

// ErrorHandlerMiddleware maps errors returned by handlers to HTTP
// responses. Fault kinds carry the status decision; handlers never
// inspect error text.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		// Validation failures are caller errors.
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make([]string, len(validationErrs))
			for i, fe := range validationErrs {
				fields[i] = fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
			}
			return ctx.Status(fiber.StatusBadRequest).JSON(Response[[]string]{
				Success: false,
				Code:    fiber.StatusBadRequest,
				Message: "Validation failed",
				Data:    fields,
			})
		}

		// Explicit fiber errors keep their status.
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		switch fault.KindOf(err) {
		case fault.KindInvalidArgument:
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, err.Error()))
		case fault.KindRateLimited:
			return ctx.Status(fiber.StatusTooManyRequests).JSON(
				ErrorResponse(fiber.StatusTooManyRequests, "Rate limit exceeded. Please try again in a moment."))
		case fault.KindUnavailable:
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(
				ErrorResponse(fiber.StatusServiceUnavailable, "A dependency is unavailable. Please try again later."))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(
				ErrorResponse(fiber.StatusInternalServerError, fmt.Sprintf("Error: %s", err.Error())))
		}
	}
}
