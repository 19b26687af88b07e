package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bookshelf/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders errors returned by handlers as {"error": message}.
// Store failures are logged and replaced with a generic message.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			validationErr *services.ValidationError
			storeErr      *services.StoreError
			fiberErr      *fiber.Error
		)

		switch {
		case errors.As(err, &validationErr):
			body := fiber.Map{"error": validationErr.Message}
			if len(validationErr.Fields) > 0 {
				body["errors"] = validationErr.Fields
			}
			return c.Status(fiber.StatusBadRequest).JSON(body)
		case errors.Is(err, services.ErrAuthentication):
			return respond(c, fiber.StatusUnauthorized, "Not authenticated")
		case errors.Is(err, services.ErrForbidden):
			return respond(c, fiber.StatusForbidden, "Not authorized")
		case errors.Is(err, services.ErrNotFound):
			return respond(c, fiber.StatusNotFound, "Not found")
		case errors.Is(err, services.ErrEmailTaken):
			return respond(c, fiber.StatusConflict, "Email already registered")
		case errors.As(err, &storeErr):
			requestLogger(c, log).Error("store failure", zap.String("op", storeErr.Op), zap.Error(storeErr.Err))
			return respond(c, fiber.StatusInternalServerError, "Failed to "+storeErr.Op)
		case errors.As(err, &fiberErr):
			if fiberErr.Code >= fiber.StatusInternalServerError {
				requestLogger(c, log).Error("request failed", zap.Error(err))
			}
			return respond(c, fiberErr.Code, fiberErr.Message)
		default:
			requestLogger(c, log).Error("unhandled error", zap.Error(err))
			return respond(c, fiber.StatusInternalServerError, "Internal server error")
		}
	}
}

func respond(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// requestLogger attaches the request id and method/path.
func requestLogger(c *fiber.Ctx, log *zap.Logger) *zap.Logger {
	return log.With(
		zap.String("request_id", fmt.Sprint(c.Locals("requestid"))),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	)
}

// newValidator returns a validator that reports JSON field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError converts validator output into a 400 response body.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &services.ValidationError{Message: "Validation failed"}
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &services.ValidationError{Message: "Validation failed", Fields: fields}
}

func invalidBody() error {
	return &services.ValidationError{Message: "Invalid request body"}
}
