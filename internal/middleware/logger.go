package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

func Logger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logger.InfoContext(c.Context(), "Request",
			"method", c.Method(),
			"url", c.OriginalURL(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
			"ip", c.IP(),
		)
		return err
	}
}
