package api

import (
	"errors"
	"time"

	"unihub/internal/database"
	"unihub/internal/middleware"
	"unihub/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) ListUnreadNotifications(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	unread, err := h.notifications.Unread(c.Context(), principal.ID)
	if err != nil {
		h.logger.ErrorContext(c.Context(), "Failed to list notifications", "user_id", principal.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list notifications"})
	}

	type notificationResponse struct {
		ID        uuid.UUID              `json:"id"`
		Title     string                 `json:"title"`
		Message   string                 `json:"message"`
		Category  notifications.Category `json:"category"`
		ActionURL string                 `json:"action_url"`
		CreatedAt time.Time              `json:"created_at"`
	}
	response := make([]notificationResponse, len(unread))
	for i, notification := range unread {
		response[i] = notificationResponse{
			ID:        notification.ID,
			Title:     notification.Title,
			Message:   notification.Message,
			Category:  notification.Category,
			ActionURL: notification.ActionURL,
			CreatedAt: notification.CreatedAt,
		}
	}
	return c.JSON(fiber.Map{"notifications": response})
}

func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	notificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification ID"})
	}

	if err := h.notifications.MarkRead(c.Context(), principal.ID, notificationID); err != nil {
		if errors.Is(err, database.ErrNotificationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
		}
		h.logger.ErrorContext(c.Context(), "Failed to mark notification read", "notification_id", notificationID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notification"})
	}
	return c.JSON(fiber.Map{"success": true})
}
