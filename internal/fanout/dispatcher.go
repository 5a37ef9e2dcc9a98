package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"unihub/internal/config"
	"unihub/internal/database"
	"unihub/internal/mail"
	"unihub/internal/notifications"
	"unihub/internal/tenant"

	"github.com/google/uuid"
)

// Notifier is the in-app channel.
type Notifier interface {
	Notify(ctx context.Context, params notifications.NotifyParam) error
}

// Directory resolves tenant names and approver addresses for recipients.
type Directory interface {
	UniversityName(ctx context.Context, universityID uuid.UUID) (string, error)
	ApproversForUniversity(ctx context.Context, universityID uuid.UUID) ([]tenant.Approver, error)
}

// Dispatcher fans a committed lifecycle transition out to its recipients.
// Everything here is best effort: the transition is already committed, so a
// failed channel is logged (recipient, channel, reason) and never surfaces to
// the caller. Each outbound call runs under its own timeout so a slow channel
// cannot stall the request.
type Dispatcher struct {
	mailer    mail.Mailer
	notifier  Notifier
	directory Directory
	logger    *slog.Logger
	cfg       config.MailConfig
}

func NewDispatcher(mailer mail.Mailer, notifier Notifier, directory Directory, logger *slog.Logger, cfg config.MailConfig) Dispatcher {
	return Dispatcher{
		mailer:    mailer,
		notifier:  notifier,
		directory: directory,
		logger:    logger,
		cfg:       cfg,
	}
}

// MeetingRequested emails every approver of the hosting university.
func (d *Dispatcher) MeetingRequested(ctx context.Context, meeting database.Meeting, creator database.User) {
	universityName := d.universityName(ctx, meeting)

	approvers, err := d.directory.ApproversForUniversity(ctx, meeting.UniversityID)
	if err != nil {
		d.logger.ErrorContext(ctx, "Fan-out could not resolve approvers",
			"meeting_id", meeting.ID, "university_id", meeting.UniversityID, "error", err)
		return
	}

	for _, approver := range approvers {
		d.sendMail(ctx, meeting, approver.Email, mail.TemplateRequestSubmitted, mail.Payload{
			RecipientName:  approver.Name,
			MeetingTitle:   meeting.Title,
			UniversityName: universityName,
			MeetingTime:    formatMeetingTime(meeting),
			Venue:          venue(meeting),
			Status:         string(meeting.Status),
			ActionURL:      d.meetingURL(meeting),
		})
	}
}

// MeetingApproved notifies the creator on both channels and sends every
// participant a full invitation email.
func (d *Dispatcher) MeetingApproved(ctx context.Context, meeting database.Meeting, creator database.User, participants []database.User) {
	universityName := d.universityName(ctx, meeting)

	d.sendMail(ctx, meeting, creator.Email, mail.TemplateStatusChanged, mail.Payload{
		RecipientName:  creator.Name,
		MeetingTitle:   meeting.Title,
		UniversityName: universityName,
		MeetingTime:    formatMeetingTime(meeting),
		Venue:          venue(meeting),
		Status:         string(meeting.Status),
		ActionURL:      d.meetingURL(meeting),
	})

	d.notifyCreator(ctx, meeting, creator, notifications.CategorySuccess,
		"Meeting approved",
		fmt.Sprintf("Your meeting %q has been approved.", meeting.Title))

	for _, participant := range participants {
		d.sendMail(ctx, meeting, participant.Email, mail.TemplateInvitation, mail.Payload{
			RecipientName:  participant.Name,
			MeetingTitle:   meeting.Title,
			UniversityName: universityName,
			MeetingTime:    formatMeetingTime(meeting),
			Venue:          venue(meeting),
			Status:         string(meeting.Status),
			ActionURL:      d.meetingURL(meeting),
		})
	}
}

// MeetingRejected notifies the creator only; participants never hear about
// meetings that were not approved.
func (d *Dispatcher) MeetingRejected(ctx context.Context, meeting database.Meeting, creator database.User) {
	d.sendMail(ctx, meeting, creator.Email, mail.TemplateStatusChanged, mail.Payload{
		RecipientName:  creator.Name,
		MeetingTitle:   meeting.Title,
		UniversityName: d.universityName(ctx, meeting),
		MeetingTime:    formatMeetingTime(meeting),
		Venue:          venue(meeting),
		Status:         string(meeting.Status),
		ActionURL:      d.meetingURL(meeting),
	})

	d.notifyCreator(ctx, meeting, creator, notifications.CategoryWarning,
		"Meeting rejected",
		fmt.Sprintf("Your meeting %q has been rejected.", meeting.Title))
}

func (d *Dispatcher) sendMail(ctx context.Context, meeting database.Meeting, toAddress string, kind mail.TemplateKind, payload mail.Payload) {
	callCtx, cancel := context.WithTimeout(ctx, d.sendTimeout())
	defer cancel()

	if err := d.mailer.Send(callCtx, toAddress, kind, payload); err != nil {
		d.logger.ErrorContext(ctx, "Fan-out channel failed",
			"channel", "email",
			"recipient", toAddress,
			"template", string(kind),
			"meeting_id", meeting.ID,
			"error", err,
		)
	}
}

func (d *Dispatcher) notifyCreator(ctx context.Context, meeting database.Meeting, creator database.User, category notifications.Category, title, message string) {
	callCtx, cancel := context.WithTimeout(ctx, d.sendTimeout())
	defer cancel()

	if err := d.notifier.Notify(callCtx, notifications.NotifyParam{
		OwnerID:   creator.ID,
		Title:     title,
		Message:   message,
		Category:  category,
		ActionURL: d.meetingURL(meeting),
	}); err != nil {
		d.logger.ErrorContext(ctx, "Fan-out channel failed",
			"channel", "in_app",
			"recipient", creator.ID.String(),
			"meeting_id", meeting.ID,
			"error", err,
		)
	}
}

func (d *Dispatcher) universityName(ctx context.Context, meeting database.Meeting) string {
	name, err := d.directory.UniversityName(ctx, meeting.UniversityID)
	if err != nil {
		d.logger.ErrorContext(ctx, "Fan-out could not resolve university name",
			"meeting_id", meeting.ID, "university_id", meeting.UniversityID, "error", err)
		return ""
	}
	return name
}

func (d *Dispatcher) meetingURL(meeting database.Meeting) string {
	return fmt.Sprintf("%s/meetings/%s", d.cfg.PortalURL, meeting.ID)
}

func (d *Dispatcher) sendTimeout() time.Duration {
	if d.cfg.SendTimeout <= 0 {
		return 5 * time.Second
	}
	return d.cfg.SendTimeout
}

func formatMeetingTime(meeting database.Meeting) string {
	s := meeting.StartTime.Format("Mon, 02 Jan 2006 15:04")
	if meeting.EndTime.IsSet {
		s += " - " + meeting.EndTime.Val.Format("15:04")
	}
	return s
}

func venue(meeting database.Meeting) string {
	if meeting.MeetingLink.IsSet {
		return meeting.MeetingLink.Val
	}
	return meeting.Location.UnwrapOr("")
}
