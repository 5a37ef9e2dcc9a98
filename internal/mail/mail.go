package mail

import (
	"context"
	"log/slog"
)

// TemplateKind selects the email rendered for a recipient. Each recipient role
// in the meeting lifecycle has its own template.
type TemplateKind string

const (
	// TemplateRequestSubmitted goes to the approvers when a request is filed.
	TemplateRequestSubmitted TemplateKind = "request-submitted"
	// TemplateStatusChanged goes to the requester on approval or rejection.
	TemplateStatusChanged TemplateKind = "status-changed"
	// TemplateInvitation goes to each participant of an approved meeting.
	TemplateInvitation TemplateKind = "invitation"
)

// Payload carries the template variables.
type Payload struct {
	RecipientName  string
	MeetingTitle   string
	UniversityName string
	MeetingTime    string
	Venue          string
	Status         string
	ActionURL      string
}

// Mailer is the outbound email boundary. The SMTP (or API) transport is
// provided by the deployment; this package only defines the contract and a
// development implementation.
type Mailer interface {
	Send(ctx context.Context, toAddress string, kind TemplateKind, payload Payload) error
}

// LogMailer writes every email to the log instead of sending it. Used in
// development and as the fallback when no transport is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, toAddress string, kind TemplateKind, payload Payload) error {
	m.logger.InfoContext(ctx, "Outbound email (log transport)",
		"to", toAddress,
		"template", string(kind),
		"meeting", payload.MeetingTitle,
		"status", payload.Status,
	)
	return nil
}
