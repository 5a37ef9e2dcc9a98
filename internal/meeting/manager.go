package meeting

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"unihub/internal/audit"
	"unihub/internal/database"
	"unihub/internal/fault"
	"unihub/internal/guard"
	"unihub/internal/identity"
	"unihub/internal/util"
	"unihub/internal/validator"

	"github.com/google/uuid"
)

// Store is the persistence surface the engine needs. *database.Database
// implements it; tests plug in an in-memory fake.
type Store interface {
	CreateMeeting(ctx context.Context, params database.CreateMeetingParams) (database.Meeting, error)
	GetMeetingByID(ctx context.Context, id uuid.UUID) (database.Meeting, error)
	ListMeetings(ctx context.Context, params database.ListMeetingsParams) ([]database.Meeting, error)
	UpdateMeetingByID(ctx context.Context, id uuid.UUID, params database.UpdateMeetingParams) error
	UpdateMeetingStatus(ctx context.Context, id uuid.UUID, expected, next database.MeetingStatus) (bool, error)
	SetMeetingMinutes(ctx context.Context, id uuid.UUID, params database.SetMeetingMinutesParams) (bool, error)
	DeleteMeetingByID(ctx context.Context, id uuid.UUID) error
	ListMeetingParticipants(ctx context.Context, meetingID uuid.UUID) ([]database.User, error)
	ReplaceMeetingParticipants(ctx context.Context, meetingID uuid.UUID, userIDs []uuid.UUID) error
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

// Dispatcher receives committed transitions for best-effort notification
// fan-out. Its outcome is not part of the operation result.
type Dispatcher interface {
	MeetingRequested(ctx context.Context, meeting database.Meeting, creator database.User)
	MeetingApproved(ctx context.Context, meeting database.Meeting, creator database.User, participants []database.User)
	MeetingRejected(ctx context.Context, meeting database.Meeting, creator database.User)
}

// Auditor records lifecycle events for the audit trail.
type Auditor interface {
	LogEvent(ctx context.Context, params audit.LogEventParam) error
}

// Manager is the meeting lifecycle engine. Every mutation is gated by the
// authorization guard and every status change is a single conditional write,
// so concurrent decisions on the same meeting resolve to exactly one
// transition.
type Manager struct {
	store      Store
	dispatcher Dispatcher
	auditor    Auditor
	logger     *slog.Logger
	validate   *validator.Validator
}

func NewManager(store Store, dispatcher Dispatcher, auditor Auditor, logger *slog.Logger) Manager {
	return Manager{
		store:      store,
		dispatcher: dispatcher,
		auditor:    auditor,
		logger:     logger,
		validate:   validator.New(),
	}
}

type CreateParam struct {
	// UniversityID is the target tenant; required for super admins, ignored
	// for tenant-scoped principals who always file within their own.
	UniversityID   util.Optional[uuid.UUID]
	Type           database.MeetingType
	Title          string    `validate:"required,max=200"`
	Agenda         string    `validate:"max=20000"`
	StartTime      time.Time `validate:"required,not_past"`
	EndTime        util.Optional[time.Time]
	Location       string
	MeetingLink    string
	ParticipantIDs []uuid.UUID `validate:"required,min=1"`
}

// Create files a new meeting request in the pending state and notifies the
// tenant's approvers.
func (m *Manager) Create(ctx context.Context, principal identity.Principal, params CreateParam) (database.Meeting, error) {
	targetTenant := params.UniversityID.UnwrapOr(principal.TenantID.UnwrapOr(uuid.Nil))
	if !principal.IsSuperAdmin() && principal.TenantID.IsSet {
		targetTenant = principal.TenantID.Val
	}

	if ferr := guard.Decide(principal, database.Meeting{UniversityID: targetTenant}, guard.ActionCreate); ferr != nil {
		return database.Meeting{}, ferr
	}

	if ferr := m.validateCreate(params); ferr != nil {
		return database.Meeting{}, ferr
	}

	createParams := database.CreateMeetingParams{
		UniversityID:   targetTenant,
		CreatedBy:      principal.ID,
		Type:           params.Type,
		Title:          params.Title,
		Agenda:         params.Agenda,
		StartTime:      params.StartTime,
		EndTime:        params.EndTime,
		ParticipantIDs: params.ParticipantIDs,
	}
	if params.Type == database.MeetingTypeOnline {
		createParams.MeetingLink = util.Some(params.MeetingLink)
	} else {
		createParams.Location = util.Some(params.Location)
	}

	meeting, err := m.store.CreateMeeting(ctx, createParams)
	if err != nil {
		return database.Meeting{}, fault.Dependency("could not save the meeting request", err)
	}

	m.audit(ctx, principal, audit.AuditLogEventTypeMeetingCreate, meeting)

	if creator, err := m.store.GetUserByID(ctx, meeting.CreatedBy); err != nil {
		m.logger.ErrorContext(ctx, "Skipping request fan-out, creator lookup failed",
			"meeting_id", meeting.ID, "creator_id", meeting.CreatedBy, "error", err)
	} else {
		m.dispatcher.MeetingRequested(ctx, meeting, creator)
	}

	return meeting, nil
}

// Approve moves a pending meeting to approved. The status check and write are
// one conditional update, so of two concurrent decisions exactly one wins and
// the other reports InvalidState.
func (m *Manager) Approve(ctx context.Context, principal identity.Principal, id uuid.UUID) (database.Meeting, error) {
	return m.decide(ctx, principal, id, guard.ActionApprove)
}

// Reject moves a pending meeting to rejected. Rejection is terminal.
func (m *Manager) Reject(ctx context.Context, principal identity.Principal, id uuid.UUID) (database.Meeting, error) {
	return m.decide(ctx, principal, id, guard.ActionReject)
}

func (m *Manager) decide(ctx context.Context, principal identity.Principal, id uuid.UUID, action guard.Action) (database.Meeting, error) {
	meeting, err := m.getMeeting(ctx, id)
	if err != nil {
		return database.Meeting{}, err
	}

	if ferr := guard.Decide(principal, meeting, action); ferr != nil {
		return database.Meeting{}, ferr
	}

	next := database.MeetingStatusApproved
	if action == guard.ActionReject {
		next = database.MeetingStatusRejected
	}

	transitioned, err := m.store.UpdateMeetingStatus(ctx, id, database.MeetingStatusPending, next)
	if err != nil {
		return database.Meeting{}, fault.Dependency("could not update the meeting status", err)
	}
	if !transitioned {
		// Another decision won the race between our read and our write.
		return database.Meeting{}, fault.InvalidState("this meeting has already been decided")
	}

	meeting.Status = next
	meeting.DeanApproved = next.DeanApproved()
	meeting.UpdatedAt = time.Now().UTC()

	eventType := audit.AuditLogEventTypeMeetingApprove
	if action == guard.ActionReject {
		eventType = audit.AuditLogEventTypeMeetingReject
	}
	m.audit(ctx, principal, eventType, meeting)

	m.fanOutDecision(ctx, meeting, action)

	return meeting, nil
}

func (m *Manager) fanOutDecision(ctx context.Context, meeting database.Meeting, action guard.Action) {
	creator, err := m.store.GetUserByID(ctx, meeting.CreatedBy)
	if err != nil {
		m.logger.ErrorContext(ctx, "Skipping decision fan-out, creator lookup failed",
			"meeting_id", meeting.ID, "creator_id", meeting.CreatedBy, "error", err)
		return
	}

	if action == guard.ActionReject {
		m.dispatcher.MeetingRejected(ctx, meeting, creator)
		return
	}

	participants, err := m.store.ListMeetingParticipants(ctx, meeting.ID)
	if err != nil {
		m.logger.ErrorContext(ctx, "Approval fan-out without participants, lookup failed",
			"meeting_id", meeting.ID, "error", err)
	}
	m.dispatcher.MeetingApproved(ctx, meeting, creator, participants)
}

type MinutesParam struct {
	Summary string `validate:"required,max=20000"`
	FileKey util.Optional[string]
}

// AddMinutes records the minutes of an approved meeting and completes it.
// Re-submitting on a completed meeting overwrites the minutes and leaves the
// status untouched.
func (m *Manager) AddMinutes(ctx context.Context, principal identity.Principal, id uuid.UUID, params MinutesParam) (database.Meeting, error) {
	meeting, err := m.getMeeting(ctx, id)
	if err != nil {
		return database.Meeting{}, err
	}

	if ferr := guard.Decide(principal, meeting, guard.ActionAddMinutes); ferr != nil {
		return database.Meeting{}, ferr
	}

	if err := m.validate.Validate(params); err != nil {
		return database.Meeting{}, fault.Validation("the minutes are incomplete", validator.FieldErrors(err))
	}

	written, err := m.store.SetMeetingMinutes(ctx, id, database.SetMeetingMinutesParams{
		Summary: util.Some(params.Summary),
		FileKey: params.FileKey,
	})
	if err != nil {
		return database.Meeting{}, fault.Dependency("could not save the meeting minutes", err)
	}
	if !written {
		return database.Meeting{}, fault.InvalidState("minutes can only be added once the meeting is approved")
	}

	meeting.Status = database.MeetingStatusCompleted
	meeting.DeanApproved = true
	meeting.MinutesSummary = util.Some(params.Summary)
	meeting.MinutesFileKey = params.FileKey
	meeting.UpdatedAt = time.Now().UTC()

	m.audit(ctx, principal, audit.AuditLogEventTypeMeetingMinutesAdded, meeting)

	return meeting, nil
}

type UpdateParam struct {
	Type           util.Optional[database.MeetingType]
	Title          util.Optional[string]
	Agenda         util.Optional[string]
	StartTime      util.Optional[time.Time]
	EndTime        util.Optional[time.Time]
	Location       util.Optional[string]
	MeetingLink    util.Optional[string]
	Status         util.Optional[database.MeetingStatus]
	ParticipantIDs util.Optional[[]uuid.UUID]
}

// Update patches the non-lifecycle fields of a meeting. A status change rides
// along only for super admins; everyone else must use approve/reject or
// add-minutes.
func (m *Manager) Update(ctx context.Context, principal identity.Principal, id uuid.UUID, params UpdateParam) (database.Meeting, error) {
	meeting, err := m.getMeeting(ctx, id)
	if err != nil {
		return database.Meeting{}, err
	}

	if ferr := guard.Decide(principal, meeting, guard.ActionEdit); ferr != nil {
		return database.Meeting{}, ferr
	}
	if params.Status.IsSet {
		if ferr := guard.Decide(principal, meeting, guard.ActionEditStatus); ferr != nil {
			return database.Meeting{}, ferr
		}
	}

	if ferr := validateUpdate(params); ferr != nil {
		return database.Meeting{}, ferr
	}

	if err := m.store.UpdateMeetingByID(ctx, id, database.UpdateMeetingParams{
		Type:        params.Type,
		Title:       params.Title,
		Agenda:      params.Agenda,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		Location:    params.Location,
		MeetingLink: params.MeetingLink,
		Status:      params.Status,
	}); err != nil {
		if errors.Is(err, database.ErrMeetingNotFound) {
			return database.Meeting{}, fault.NotFound("this meeting no longer exists")
		}
		return database.Meeting{}, fault.Dependency("could not update the meeting", err)
	}

	if params.ParticipantIDs.IsSet {
		if err := m.store.ReplaceMeetingParticipants(ctx, id, params.ParticipantIDs.Val); err != nil {
			return database.Meeting{}, fault.Dependency("could not update the participant list", err)
		}
	}

	updated, err := m.getMeeting(ctx, id)
	if err != nil {
		return database.Meeting{}, err
	}

	m.audit(ctx, principal, audit.AuditLogEventTypeMeetingUpdate, updated)

	return updated, nil
}

// Delete removes a meeting outright. Deliberately the narrowest action:
// super admins only, regardless of tenant.
func (m *Manager) Delete(ctx context.Context, principal identity.Principal, id uuid.UUID) error {
	meeting, err := m.getMeeting(ctx, id)
	if err != nil {
		return err
	}

	if ferr := guard.Decide(principal, meeting, guard.ActionDelete); ferr != nil {
		return ferr
	}

	if err := m.store.DeleteMeetingByID(ctx, id); err != nil {
		if errors.Is(err, database.ErrMeetingNotFound) {
			return fault.NotFound("this meeting no longer exists")
		}
		return fault.Dependency("could not delete the meeting", err)
	}

	m.audit(ctx, principal, audit.AuditLogEventTypeMeetingDelete, meeting)

	return nil
}

// Get returns a single meeting, subject to tenant visibility.
func (m *Manager) Get(ctx context.Context, principal identity.Principal, id uuid.UUID) (database.Meeting, error) {
	meeting, err := m.getMeeting(ctx, id)
	if err != nil {
		return database.Meeting{}, err
	}

	if ferr := guard.Decide(principal, meeting, guard.ActionRead); ferr != nil {
		return database.Meeting{}, ferr
	}

	return meeting, nil
}

type ListParam struct {
	// UniversityID narrows the listing for super admins; tenant-scoped
	// principals are always pinned to their own university.
	UniversityID util.Optional[uuid.UUID]
	Status       util.Optional[database.MeetingStatus]
	Limit        util.Optional[int]
	Offset       util.Optional[int]
}

// List returns the meetings visible to the principal. A principal without a
// tenant (and without admin rights) gets an empty list, not an error.
func (m *Manager) List(ctx context.Context, principal identity.Principal, params ListParam) ([]database.Meeting, error) {
	scope, visible := guard.ListScope(principal)
	if !visible {
		return []database.Meeting{}, nil
	}

	filter := scope
	if principal.IsSuperAdmin() && params.UniversityID.IsSet {
		filter = params.UniversityID
	}

	meetings, err := m.store.ListMeetings(ctx, database.ListMeetingsParams{
		UniversityID: filter,
		Status:       params.Status,
		Limit:        params.Limit,
		Offset:       params.Offset,
	})
	if err != nil {
		return nil, fault.Dependency("could not list meetings", err)
	}
	if meetings == nil {
		meetings = []database.Meeting{}
	}

	return meetings, nil
}

// Participants returns the invited users of a meeting, subject to the same
// visibility as Get.
func (m *Manager) Participants(ctx context.Context, principal identity.Principal, id uuid.UUID) ([]database.User, error) {
	meeting, err := m.getMeeting(ctx, id)
	if err != nil {
		return nil, err
	}

	if ferr := guard.Decide(principal, meeting, guard.ActionRead); ferr != nil {
		return nil, ferr
	}

	participants, err := m.store.ListMeetingParticipants(ctx, id)
	if err != nil {
		return nil, fault.Dependency("could not list participants", err)
	}
	return participants, nil
}

func (m *Manager) getMeeting(ctx context.Context, id uuid.UUID) (database.Meeting, error) {
	meeting, err := m.store.GetMeetingByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrMeetingNotFound) {
			return database.Meeting{}, fault.NotFound("this meeting does not exist")
		}
		return database.Meeting{}, fault.Dependency("could not load the meeting", err)
	}
	return meeting, nil
}

func (m *Manager) validateCreate(params CreateParam) *fault.Error {
	fields := validator.FieldErrors(m.validate.Validate(params))
	if fields == nil {
		fields = map[string]string{}
	}

	switch params.Type {
	case database.MeetingTypeInPerson:
		if params.Location == "" {
			fields["location"] = "is required for an in-person meeting"
		}
		if params.MeetingLink != "" {
			fields["meetinglink"] = "must be empty for an in-person meeting"
		}
	case database.MeetingTypeOnline:
		if params.MeetingLink == "" {
			fields["meetinglink"] = "is required for an online meeting"
		}
		if params.Location != "" {
			fields["location"] = "must be empty for an online meeting"
		}
	default:
		fields["type"] = "must be in_person or online"
	}

	if params.EndTime.IsSet && !params.EndTime.Val.After(params.StartTime) {
		fields["endtime"] = "must be after the start time"
	}

	if len(fields) > 0 {
		return fault.Validation("the meeting request is incomplete", fields)
	}
	return nil
}

func validateUpdate(params UpdateParam) *fault.Error {
	fields := map[string]string{}

	if params.Location.IsSet && params.MeetingLink.IsSet {
		fields["location"] = "cannot be combined with a meeting link"
	}
	if params.Title.IsSet && params.Title.Val == "" {
		fields["title"] = "is required"
	}
	if params.Status.IsSet {
		switch params.Status.Val {
		case database.MeetingStatusPending, database.MeetingStatusApproved,
			database.MeetingStatusRejected, database.MeetingStatusCompleted:
		default:
			fields["status"] = "is not a valid status"
		}
	}
	if params.ParticipantIDs.IsSet && len(params.ParticipantIDs.Val) == 0 {
		fields["participantids"] = "must have at least 1 entries"
	}

	if len(fields) > 0 {
		return fault.Validation("the meeting update is invalid", fields)
	}
	return nil
}

func (m *Manager) audit(ctx context.Context, principal identity.Principal, eventType audit.AuditLogEventType, meeting database.Meeting) {
	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: principal.ID,
		Type:    eventType,
		Data: map[string]any{
			"meeting_id":    meeting.ID,
			"university_id": meeting.UniversityID,
			"status":        meeting.Status,
		},
	}); err != nil {
		m.logger.ErrorContext(ctx, "Failed to write audit log event",
			"event_type", string(eventType), "meeting_id", meeting.ID, "error", err)
	}
}
