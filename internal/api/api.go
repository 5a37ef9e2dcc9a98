package api

import (
	"log/slog"

	"unihub/internal/audit"
	"unihub/internal/database"
	"unihub/internal/identity"
	"unihub/internal/meeting"
	"unihub/internal/middleware"
	"unihub/internal/notifications"
	"unihub/internal/ratelimit"
	"unihub/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

type Handler struct {
	sessionStore  *session.Store
	db            *database.Database
	resolver      identity.Resolver
	meetings      meeting.Manager
	notifications notifications.Manager
	storage       storage.Storage
	auditor       audit.Auditor
	limiter       *ratelimit.RateLimiter
	logger        *slog.Logger
}

func NewHandler(
	sessionStore *session.Store,
	db *database.Database,
	resolver identity.Resolver,
	meetings meeting.Manager,
	notificationManager notifications.Manager,
	storageBackend storage.Storage,
	auditor audit.Auditor,
	limiter *ratelimit.RateLimiter,
	logger *slog.Logger,
) Handler {
	return Handler{
		sessionStore:  sessionStore,
		db:            db,
		resolver:      resolver,
		meetings:      meetings,
		notifications: notificationManager,
		storage:       storageBackend,
		auditor:       auditor,
		limiter:       limiter,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/auth/login", h.Login)
	app.Post("/auth/logout", h.Logout)

	api := app.Group("/api", middleware.AuthenticatedSession(h.sessionStore, h.resolver))

	api.Get("/meetings", h.ListMeetings)
	api.Post("/meetings", h.CreateMeeting)
	api.Get("/meetings/:id", h.GetMeeting)
	api.Patch("/meetings/:id", h.UpdateMeeting)
	api.Delete("/meetings/:id", h.DeleteMeeting)
	api.Post("/meetings/:id/approve", h.ApproveMeeting)
	api.Post("/meetings/:id/reject", h.RejectMeeting)
	api.Post("/meetings/:id/minutes", h.AddMinutes)
	api.Get("/meetings/:id/minutes/file", h.DownloadMinutes)
	api.Get("/meetings/:id/participants", h.ListParticipants)

	api.Get("/notifications", h.ListUnreadNotifications)
	api.Post("/notifications/:id/read", h.MarkNotificationRead)
}
