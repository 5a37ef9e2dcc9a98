package api

import (
	"errors"

	"unihub/internal/fault"

	"github.com/gofiber/fiber/v2"
)

// respondFault translates a typed engine failure into an HTTP response.
// Unclassified errors never leak details to the client.
func (h *Handler) respondFault(c *fiber.Ctx, err error) error {
	var ferr *fault.Error
	if !errors.As(err, &ferr) {
		h.logger.ErrorContext(c.Context(), "Unclassified error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	body := fiber.Map{"error": ferr.Message, "kind": string(ferr.Kind)}
	if len(ferr.FieldErrors) > 0 {
		body["fields"] = ferr.FieldErrors
	}

	switch ferr.Kind {
	case fault.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(body)
	case fault.KindForbidden:
		return c.Status(fiber.StatusForbidden).JSON(body)
	case fault.KindNoTenant:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
	case fault.KindInvalidState:
		return c.Status(fiber.StatusConflict).JSON(body)
	case fault.KindValidationFailed:
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case fault.KindDependencyFailed:
		h.logger.ErrorContext(c.Context(), "Dependency failure", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": ferr.Message, "kind": string(ferr.Kind)})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
