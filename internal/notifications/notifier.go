package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"unihub/internal/database"
	"unihub/internal/util"

	"github.com/google/uuid"
)

type Manager struct {
	logger *slog.Logger
	db     *database.Database
}

func NewManager(logger *slog.Logger, db *database.Database) Manager {
	return Manager{logger: logger, db: db}
}

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Message   string
	Category  Category
	IsRead    bool
	ActionURL string
	CreatedAt time.Time
}

type Category string

const (
	CategoryInfo    Category = "info"
	CategorySuccess Category = "success"
	CategoryWarning Category = "warning"
	CategoryError   Category = "error"
)

type NotifyParam struct {
	OwnerID   uuid.UUID
	Title     string
	Message   string
	Category  Category
	ActionURL string
}

func (n *Manager) Notify(ctx context.Context, params NotifyParam) error {
	if _, err := n.db.CreateNotification(ctx, database.CreateNotificationParams{
		OwnerUserID: params.OwnerID,
		Type:        string(params.Category),
		Title:       params.Title,
		Message:     params.Message,
		ActionURL:   params.ActionURL,
	}); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (n *Manager) Unread(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	notifications, err := n.db.ListNotifications(ctx, database.ListNotificationsParams{
		OwnerUserID:      util.Some(userID),
		Limit:            util.Some(uint16(10)),
		OrderByCreatedAt: util.Some(database.OrderByDESC),
		Read:             util.Some(false),
	})
	if err != nil {
		return nil, err
	}

	result := make([]Notification, len(notifications))
	for i, notif := range notifications {
		result[i] = Notification{
			ID:        notif.ID,
			UserID:    notif.OwnerUserID,
			Title:     notif.Title,
			Message:   notif.Message,
			Category:  Category(notif.Type),
			IsRead:    notif.IsRead,
			ActionURL: notif.ActionURL,
			CreatedAt: notif.CreatedAt,
		}
	}

	return result, nil
}

func (n *Manager) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := n.db.MarkNotificationRead(ctx, notificationID, userID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
