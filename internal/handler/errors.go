package handler

import (
	"errors"
	"log/slog"

	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string               `json:"code"`
	Error   string               `json:"error"`
	Details []service.FieldError `json:"details,omitempty"`
}

// ErrorHandler is the fiber error handler; it maps service errors onto HTTP
// statuses and hides internal failures behind a generic message.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.ErrorContext(c.UserContext(), "request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("error", err))
		}
		return c.Status(status).JSON(body)
	}
}

func classify(err error) (int, ErrorResponse) {
	var (
		ve  *service.ValidationError
		fe  *fiber.Error
		ise *service.InsufficientStockError
	)

	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ErrorResponse{Code: "validation_failed", Error: ErrValidationMessage, Details: ve.Fields}
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound, ErrorResponse{Code: "not_found", Error: err.Error()}
	case errors.As(err, &ise):
		return fiber.StatusConflict, ErrorResponse{Code: "insufficient_stock", Error: ise.Error()}
	case errors.Is(err, service.ErrDuplicateUsername):
		return fiber.StatusConflict, ErrorResponse{Code: "duplicate_username", Error: err.Error()}
	case errors.Is(err, service.ErrDuplicateRequest):
		return fiber.StatusConflict, ErrorResponse{Code: "duplicate_request", Error: err.Error()}
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, ErrorResponse{Code: "invalid_credentials", Error: err.Error()}
	case errors.Is(err, service.ErrSessionExpired):
		return fiber.StatusUnauthorized, ErrorResponse{Code: "session_expired", Error: err.Error()}
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden, ErrorResponse{Code: "forbidden", Error: err.Error()}
	case errors.As(err, &fe):
		return fe.Code, ErrorResponse{Code: "http_error", Error: fe.Message}
	default:
		return fiber.StatusInternalServerError, ErrorResponse{Code: "internal", Error: "Internal Server Error"}
	}
}

const ErrValidationMessage = "Validation failed"

func badRequest(message string) error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}
