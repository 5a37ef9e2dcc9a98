package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"unihub/internal/database"

	"github.com/google/uuid"
)

type AuditLogEventType string

const (
	AuditLogEventTypeUserLogin           AuditLogEventType = "user.login"
	AuditLogEventTypeUserLogout          AuditLogEventType = "user.logout"
	AuditLogEventTypeMeetingCreate       AuditLogEventType = "meeting.create"
	AuditLogEventTypeMeetingUpdate       AuditLogEventType = "meeting.update"
	AuditLogEventTypeMeetingApprove      AuditLogEventType = "meeting.approve"
	AuditLogEventTypeMeetingReject       AuditLogEventType = "meeting.reject"
	AuditLogEventTypeMeetingMinutesAdded AuditLogEventType = "meeting.minutes_added"
	AuditLogEventTypeMeetingDelete       AuditLogEventType = "meeting.delete"
)

type Auditor struct {
	logger *slog.Logger
	db     *database.Database
}

func NewAuditor(logger *slog.Logger, db *database.Database) Auditor {
	return Auditor{logger: logger, db: db}
}

type LogEventParam struct {
	ActorID uuid.UUID
	Type    AuditLogEventType
	Data    map[string]any
}

func (a *Auditor) LogEvent(ctx context.Context, params LogEventParam) error {
	data, err := json.Marshal(params.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal audit log event data: %w", err)
	}

	if _, err = a.db.CreateAuditLogEvent(ctx, database.CreateAuditLogEventParams{
		ActorID:   params.ActorID,
		EventType: string(params.Type),
		EventData: data,
	}); err != nil {
		return fmt.Errorf("failed to create audit log event: %w", err)
	}
	return nil
}
