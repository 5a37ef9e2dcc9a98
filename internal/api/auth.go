package api

import (
	"errors"
	"strings"

	"unihub/internal/audit"
	"unihub/internal/database"
	"unihub/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email and password are required"})
	}

	if err := h.limiter.CheckLogin(c.Context(), email); err != nil {
		if errors.Is(err, ratelimit.ErrTooManyAttempts) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many login attempts. Please try again later."})
		}
		h.logger.ErrorContext(c.Context(), "Login rate limit check failed", "error", err)
	}

	user, err := h.db.GetUserByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			// Generic answer, no email enumeration.
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		}
		h.logger.ErrorContext(c.Context(), "Failed to get user by email", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	sess, err := h.sessionStore.Get(c)
	if err != nil {
		h.logger.ErrorContext(c.Context(), "Failed to get session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}
	sess.Set("user_id", user.ID.String())
	if err := sess.Save(); err != nil {
		h.logger.ErrorContext(c.Context(), "Failed to save session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save session"})
	}

	h.logger.InfoContext(c.Context(), "User logged in", "user_id", user.ID, "ip", c.IP())

	if err := h.auditor.LogEvent(c.Context(), audit.LogEventParam{
		ActorID: user.ID,
		Type:    audit.AuditLogEventTypeUserLogin,
		Data:    map[string]any{"ip": c.IP()},
	}); err != nil {
		h.logger.ErrorContext(c.Context(), "Failed to write audit log event", "error", err)
	}

	return c.JSON(fiber.Map{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    user.Role,
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	sess, err := h.sessionStore.Get(c)
	if err != nil {
		h.logger.ErrorContext(c.Context(), "Failed to get session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Session error"})
	}

	sess.Delete("user_id")
	if err := sess.Save(); err != nil {
		h.logger.ErrorContext(c.Context(), "Failed to save session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save session"})
	}

	return c.JSON(fiber.Map{"success": true})
}
