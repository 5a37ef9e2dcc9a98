package meeting

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"unihub/internal/audit"
	"unihub/internal/database"
	"unihub/internal/fault"
	"unihub/internal/identity"
	"unihub/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu           sync.Mutex
	meetings     map[uuid.UUID]database.Meeting
	participants map[uuid.UUID][]uuid.UUID
	users        map[uuid.UUID]database.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		meetings:     make(map[uuid.UUID]database.Meeting),
		participants: make(map[uuid.UUID][]uuid.UUID),
		users:        make(map[uuid.UUID]database.User),
	}
}

func (s *fakeStore) addUser(universityID uuid.UUID, role string) database.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := database.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        uuid.NewString() + "@example.edu",
		Role:         role,
		UniversityID: util.Some(universityID),
	}
	s.users[user.ID] = user
	return user
}

func (s *fakeStore) CreateMeeting(ctx context.Context, params database.CreateMeetingParams) (database.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting := database.Meeting{
		ID:           uuid.New(),
		UniversityID: params.UniversityID,
		CreatedBy:    params.CreatedBy,
		Type:         params.Type,
		Title:        params.Title,
		Agenda:       params.Agenda,
		StartTime:    params.StartTime,
		EndTime:      params.EndTime,
		Location:     params.Location,
		MeetingLink:  params.MeetingLink,
		Status:       database.MeetingStatusPending,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	s.meetings[meeting.ID] = meeting
	s.participants[meeting.ID] = append([]uuid.UUID(nil), params.ParticipantIDs...)
	return meeting, nil
}

func (s *fakeStore) GetMeetingByID(ctx context.Context, id uuid.UUID) (database.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting, ok := s.meetings[id]
	if !ok {
		return database.Meeting{}, database.ErrMeetingNotFound
	}
	return meeting, nil
}

func (s *fakeStore) ListMeetings(ctx context.Context, params database.ListMeetingsParams) ([]database.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var meetings []database.Meeting
	for _, meeting := range s.meetings {
		if params.UniversityID.IsSet && meeting.UniversityID != params.UniversityID.Val {
			continue
		}
		if params.Status.IsSet && meeting.Status != params.Status.Val {
			continue
		}
		meetings = append(meetings, meeting)
	}
	return meetings, nil
}

func (s *fakeStore) UpdateMeetingByID(ctx context.Context, id uuid.UUID, params database.UpdateMeetingParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting, ok := s.meetings[id]
	if !ok {
		return database.ErrMeetingNotFound
	}
	if params.Type.IsSet {
		meeting.Type = params.Type.Val
	}
	if params.Title.IsSet {
		meeting.Title = params.Title.Val
	}
	if params.Agenda.IsSet {
		meeting.Agenda = params.Agenda.Val
	}
	if params.StartTime.IsSet {
		meeting.StartTime = params.StartTime.Val
	}
	if params.EndTime.IsSet {
		meeting.EndTime = params.EndTime
	}
	if params.Location.IsSet {
		meeting.Location = params.Location
		meeting.MeetingLink = util.None[string]()
	}
	if params.MeetingLink.IsSet {
		meeting.MeetingLink = params.MeetingLink
		meeting.Location = util.None[string]()
	}
	if params.Status.IsSet {
		meeting.Status = params.Status.Val
		meeting.DeanApproved = params.Status.Val.DeanApproved()
	}
	meeting.UpdatedAt = time.Now().UTC()
	s.meetings[id] = meeting
	return nil
}

func (s *fakeStore) UpdateMeetingStatus(ctx context.Context, id uuid.UUID, expected, next database.MeetingStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting, ok := s.meetings[id]
	if !ok || meeting.Status != expected {
		return false, nil
	}
	meeting.Status = next
	meeting.DeanApproved = next.DeanApproved()
	meeting.UpdatedAt = time.Now().UTC()
	s.meetings[id] = meeting
	return true, nil
}

func (s *fakeStore) SetMeetingMinutes(ctx context.Context, id uuid.UUID, params database.SetMeetingMinutesParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting, ok := s.meetings[id]
	if !ok {
		return false, nil
	}
	if meeting.Status != database.MeetingStatusApproved && meeting.Status != database.MeetingStatusCompleted {
		return false, nil
	}
	meeting.MinutesSummary = params.Summary
	meeting.MinutesFileKey = params.FileKey
	meeting.Status = database.MeetingStatusCompleted
	meeting.DeanApproved = true
	meeting.UpdatedAt = time.Now().UTC()
	s.meetings[id] = meeting
	return true, nil
}

func (s *fakeStore) DeleteMeetingByID(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[id]; !ok {
		return database.ErrMeetingNotFound
	}
	delete(s.meetings, id)
	delete(s.participants, id)
	return nil
}

func (s *fakeStore) ListMeetingParticipants(ctx context.Context, meetingID uuid.UUID) ([]database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []database.User
	for _, userID := range s.participants[meetingID] {
		if user, ok := s.users[userID]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (s *fakeStore) ReplaceMeetingParticipants(ctx context.Context, meetingID uuid.UUID, userIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[meetingID] = append([]uuid.UUID(nil), userIDs...)
	return nil
}

func (s *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return database.User{}, database.ErrUserNotFound
	}
	return user, nil
}

type recordingDispatcher struct {
	mu                sync.Mutex
	requested         int
	approved          int
	rejected          int
	lastParticipants  int
	lastCreatorID     uuid.UUID
}

func (d *recordingDispatcher) MeetingRequested(ctx context.Context, meeting database.Meeting, creator database.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requested++
	d.lastCreatorID = creator.ID
}

func (d *recordingDispatcher) MeetingApproved(ctx context.Context, meeting database.Meeting, creator database.User, participants []database.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.approved++
	d.lastCreatorID = creator.ID
	d.lastParticipants = len(participants)
}

func (d *recordingDispatcher) MeetingRejected(ctx context.Context, meeting database.Meeting, creator database.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rejected++
	d.lastCreatorID = creator.ID
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.AuditLogEventType
}

func (a *recordingAuditor) LogEvent(ctx context.Context, params audit.LogEventParam) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, params.Type)
	return nil
}

func newTestManager(t *testing.T) (Manager, *fakeStore, *recordingDispatcher, *recordingAuditor) {
	t.Helper()
	store := newFakeStore()
	dispatcher := &recordingDispatcher{}
	auditor := &recordingAuditor{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(store, dispatcher, auditor, logger), store, dispatcher, auditor
}

func principalFor(user database.User) identity.Principal {
	return identity.Principal{
		ID:       user.ID,
		Role:     identity.Role(user.Role),
		TenantID: user.UniversityID,
	}
}

func validCreateParam(participants ...uuid.UUID) CreateParam {
	return CreateParam{
		Type:           database.MeetingTypeInPerson,
		Title:          "Faculty budget review",
		Agenda:         "Quarterly budget",
		StartTime:      time.Now().Add(48 * time.Hour),
		Location:       "Main hall",
		ParticipantIDs: participants,
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	universityID := uuid.New()

	t.Run("staff_creates_pending_meeting_in_own_tenant", func(t *testing.T) {
		manager, store, dispatcher, auditor := newTestManager(t)
		staff := store.addUser(universityID, "data_entry")
		participant := store.addUser(universityID, "data_entry")

		meeting, err := manager.Create(ctx, principalFor(staff), validCreateParam(participant.ID))
		require.NoError(t, err)

		assert.Equal(t, database.MeetingStatusPending, meeting.Status)
		assert.False(t, meeting.DeanApproved)
		assert.Equal(t, universityID, meeting.UniversityID)
		assert.Equal(t, staff.ID, meeting.CreatedBy)
		assert.Equal(t, 1, dispatcher.requested)
		assert.Equal(t, []audit.AuditLogEventType{audit.AuditLogEventTypeMeetingCreate}, auditor.events)
	})

	t.Run("cross_tenant_target_is_ignored_for_staff", func(t *testing.T) {
		manager, store, _, _ := newTestManager(t)
		staff := store.addUser(universityID, "data_entry")
		participant := store.addUser(universityID, "data_entry")

		params := validCreateParam(participant.ID)
		params.UniversityID = util.Some(uuid.New())

		meeting, err := manager.Create(ctx, principalFor(staff), params)
		require.NoError(t, err)
		assert.Equal(t, universityID, meeting.UniversityID)
	})

	t.Run("super_admin_needs_explicit_tenant", func(t *testing.T) {
		manager, store, _, _ := newTestManager(t)
		admin := database.User{ID: uuid.New(), Role: "super_admin"}
		store.users[admin.ID] = admin

		_, err := manager.Create(ctx, identity.Principal{ID: admin.ID, Role: identity.RoleSuperAdmin}, validCreateParam(uuid.New()))
		assert.Equal(t, fault.KindNoTenant, fault.KindOf(err))
	})

	t.Run("tenantless_staff_cannot_create", func(t *testing.T) {
		manager, _, _, _ := newTestManager(t)

		_, err := manager.Create(ctx, identity.Principal{ID: uuid.New(), Role: identity.RoleDataEntry}, validCreateParam(uuid.New()))
		assert.Equal(t, fault.KindNoTenant, fault.KindOf(err))
	})

	t.Run("validation_collects_field_errors", func(t *testing.T) {
		manager, store, dispatcher, _ := newTestManager(t)
		staff := store.addUser(universityID, "data_entry")

		params := CreateParam{
			Type:        database.MeetingTypeOnline,
			Title:       "",
			StartTime:   time.Now().Add(-2 * time.Hour),
			Location:    "Main hall",
			MeetingLink: "",
		}
		_, err := manager.Create(ctx, principalFor(staff), params)
		require.Equal(t, fault.KindValidationFailed, fault.KindOf(err))

		var ferr *fault.Error
		require.ErrorAs(t, err, &ferr)
		assert.Contains(t, ferr.FieldErrors, "title")
		assert.Contains(t, ferr.FieldErrors, "starttime")
		assert.Contains(t, ferr.FieldErrors, "meetinglink")
		assert.Contains(t, ferr.FieldErrors, "location")
		assert.Contains(t, ferr.FieldErrors, "participantids")
		assert.Equal(t, 0, dispatcher.requested)
	})

	t.Run("end_time_must_follow_start_time", func(t *testing.T) {
		manager, store, _, _ := newTestManager(t)
		staff := store.addUser(universityID, "data_entry")

		params := validCreateParam(uuid.New())
		params.EndTime = util.Some(params.StartTime.Add(-time.Hour))

		_, err := manager.Create(ctx, principalFor(staff), params)
		require.Equal(t, fault.KindValidationFailed, fault.KindOf(err))

		var ferr *fault.Error
		require.ErrorAs(t, err, &ferr)
		assert.Contains(t, ferr.FieldErrors, "endtime")
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()
	universityID := uuid.New()

	setup := func(t *testing.T) (Manager, *fakeStore, *recordingDispatcher, *recordingAuditor, database.Meeting, database.User) {
		manager, store, dispatcher, auditor := newTestManager(t)
		staff := store.addUser(universityID, "data_entry")
		p1 := store.addUser(universityID, "data_entry")
		p2 := store.addUser(universityID, "data_entry")
		p3 := store.addUser(universityID, "data_entry")

		meeting, err := manager.Create(ctx, principalFor(staff), validCreateParam(p1.ID, p2.ID, p3.ID))
		require.NoError(t, err)
		return manager, store, dispatcher, auditor, meeting, staff
	}

	t.Run("dean_approves_pending_meeting", func(t *testing.T) {
		manager, store, dispatcher, auditor, meeting, staff := setup(t)
		dean := store.addUser(universityID, "dean")

		approved, err := manager.Approve(ctx, principalFor(dean), meeting.ID)
		require.NoError(t, err)

		assert.Equal(t, database.MeetingStatusApproved, approved.Status)
		assert.True(t, approved.DeanApproved)

		stored, err := store.GetMeetingByID(ctx, meeting.ID)
		require.NoError(t, err)
		assert.Equal(t, database.MeetingStatusApproved, stored.Status)

		assert.Equal(t, 1, dispatcher.approved)
		assert.Equal(t, 3, dispatcher.lastParticipants)
		assert.Equal(t, staff.ID, dispatcher.lastCreatorID)
		assert.Contains(t, auditor.events, audit.AuditLogEventTypeMeetingApprove)
	})

	t.Run("cross_tenant_dean_is_forbidden", func(t *testing.T) {
		manager, store, dispatcher, _, meeting, _ := setup(t)
		otherDean := store.addUser(uuid.New(), "dean")

		_, err := manager.Approve(ctx, principalFor(otherDean), meeting.ID)
		assert.Equal(t, fault.KindForbidden, fault.KindOf(err))
		assert.Equal(t, 0, dispatcher.approved)
	})

	t.Run("staff_cannot_approve", func(t *testing.T) {
		manager, store, _, _, meeting, _ := setup(t)
		staff := store.addUser(universityID, "data_entry")

		_, err := manager.Approve(ctx, principalFor(staff), meeting.ID)
		assert.Equal(t, fault.KindForbidden, fault.KindOf(err))
	})

	t.Run("approving_a_decided_meeting_is_invalid_state", func(t *testing.T) {
		manager, store, _, _, meeting, _ := setup(t)
		dean := store.addUser(universityID, "dean")

		_, err := manager.Approve(ctx, principalFor(dean), meeting.ID)
		require.NoError(t, err)

		_, err = manager.Approve(ctx, principalFor(dean), meeting.ID)
		assert.Equal(t, fault.KindInvalidState, fault.KindOf(err))
	})

	t.Run("unknown_meeting_is_not_found", func(t *testing.T) {
		manager, store, _, _, _, _ := setup(t)
		dean := store.addUser(universityID, "dean")

		_, err := manager.Approve(ctx, principalFor(dean), uuid.New())
		assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
	})
}

func TestApproveConcurrent(t *testing.T) {
	ctx := context.Background()
	universityID := uuid.New()

	manager, store, dispatcher, _ := newTestManager(t)
	staff := store.addUser(universityID, "data_entry")
	dean := store.addUser(universityID, "dean")

	meeting, err := manager.Create(ctx, principalFor(staff), validCreateParam(staff.ID))
	require.NoError(t, err)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Approve(ctx, principalFor(dean), meeting.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, lostRace int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.Equal(t, fault.KindInvalidState, fault.KindOf(err))
		lostRace++
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, lostRace)
	assert.Equal(t, 1, dispatcher.approved)

	stored, err := store.GetMeetingByID(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, database.MeetingStatusApproved, stored.Status)
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	universityID := uuid.New()

	manager, store, dispatcher, auditor := newTestManager(t)
	staff := store.addUser(universityID, "data_entry")
	dean := store.addUser(universityID, "dean")
	participant := store.addUser(universityID, "data_entry")

	meeting, err := manager.Create(ctx, principalFor(staff), validCreateParam(participant.ID))
	require.NoError(t, err)

	rejected, err := manager.Reject(ctx, principalFor(dean), meeting.ID)
	require.NoError(t, err)

	assert.Equal(t, database.MeetingStatusRejected, rejected.Status)
	assert.False(t, rejected.DeanApproved)

	// Only the creator hears about a rejection.
	assert.Equal(t, 1, dispatcher.rejected)
	assert.Equal(t, 0, dispatcher.approved)
	assert.Equal(t, staff.ID, dispatcher.lastCreatorID)
	assert.Contains(t, auditor.events, audit.AuditLogEventTypeMeetingReject)

	_, err = manager.Approve(ctx, principalFor(dean), meeting.ID)
	assert.Equal(t, fault.KindInvalidState, fault.KindOf(err))
}

func TestAddMinutes(t *testing.T) {
	ctx := context.Background()
	universityID := uuid.New()

	setup := func(t *testing.T, decide bool) (Manager, *fakeStore, database.Meeting, database.User) {
		manager, store, _, _ := newTestManager(t)
		staff := store.addUser(universityID, "data_entry")
		dean := store.addUser(universityID, "dean")

		meeting, err := manager.Create(ctx, principalFor(staff), validCreateParam(staff.ID))
		require.NoError(t, err)
		if decide {
			meeting, err = manager.Approve(ctx, principalFor(dean), meeting.ID)
			require.NoError(t, err)
		}
		return manager, store, meeting, staff
	}

	t.Run("completes_an_approved_meeting", func(t *testing.T) {
		manager, _, meeting, staff := setup(t, true)

		completed, err := manager.AddMinutes(ctx, principalFor(staff), meeting.ID, MinutesParam{
			Summary: "Budget approved for next term.",
			FileKey: util.Some("minutes/2026/review.pdf"),
		})
		require.NoError(t, err)

		assert.Equal(t, database.MeetingStatusCompleted, completed.Status)
		assert.True(t, completed.DeanApproved)
		assert.Equal(t, "Budget approved for next term.", completed.MinutesSummary.Unwrap())
	})

	t.Run("resubmission_overwrites_without_status_change", func(t *testing.T) {
		manager, store, meeting, staff := setup(t, true)

		_, err := manager.AddMinutes(ctx, principalFor(staff), meeting.ID, MinutesParam{Summary: "First draft."})
		require.NoError(t, err)

		completed, err := manager.AddMinutes(ctx, principalFor(staff), meeting.ID, MinutesParam{Summary: "Final version."})
		require.NoError(t, err)
		assert.Equal(t, database.MeetingStatusCompleted, completed.Status)
		assert.Equal(t, "Final version.", completed.MinutesSummary.Unwrap())

		stored, err := store.GetMeetingByID(ctx, meeting.ID)
		require.NoError(t, err)
		assert.Equal(t, "Final version.", stored.MinutesSummary.Unwrap())
	})

	t.Run("pending_meeting_is_invalid_state", func(t *testing.T) {
		manager, _, meeting, staff := setup(t, false)

		_, err := manager.AddMinutes(ctx, principalFor(staff), meeting.ID, MinutesParam{Summary: "Too early."})
		assert.Equal(t, fault.KindInvalidState, fault.KindOf(err))
	})

	t.Run("summary_is_required", func(t *testing.T) {
		manager, _, meeting, staff := setup(t, true)

		_, err := manager.AddMinutes(ctx, principalFor(staff), meeting.ID, MinutesParam{})
		require.Equal(t, fault.KindValidationFailed, fault.KindOf(err))

		var ferr *fault.Error
		require.ErrorAs(t, err, &ferr)
		assert.Contains(t, ferr.FieldErrors, "summary")
	})

	t.Run("cross_tenant_staff_is_forbidden", func(t *testing.T) {
		manager, store, meeting, _ := setup(t, true)
		outsider := store.addUser(uuid.New(), "data_entry")

		_, err := manager.AddMinutes(ctx, principalFor(outsider), meeting.ID, MinutesParam{Summary: "Notes."})
		assert.Equal(t, fault.KindForbidden, fault.KindOf(err))
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	universityID := uuid.New()

	setup := func(t *testing.T) (Manager, *fakeStore, database.Meeting, database.User, database.User) {
		manager, store, _, _ := newTestManager(t)
		staff := store.addUser(universityID, "data_entry")
		dean := store.addUser(universityID, "dean")

		meeting, err := manager.Create(ctx, principalFor(staff), validCreateParam(staff.ID))
		require.NoError(t, err)
		return manager, store, meeting, staff, dean
	}

	t.Run("staff_edits_fields_in_own_tenant", func(t *testing.T) {
		manager, _, meeting, staff, _ := setup(t)

		updated, err := manager.Update(ctx, principalFor(staff), meeting.ID, UpdateParam{
			Title:  util.Some("Rescheduled budget review"),
			Agenda: util.Some("New agenda"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Rescheduled budget review", updated.Title)
		assert.Equal(t, database.MeetingStatusPending, updated.Status)
	})

	t.Run("switching_venue_clears_the_other_field", func(t *testing.T) {
		manager, _, meeting, staff, _ := setup(t)

		updated, err := manager.Update(ctx, principalFor(staff), meeting.ID, UpdateParam{
			Type:        util.Some(database.MeetingTypeOnline),
			MeetingLink: util.Some("https://meet.example.edu/budget"),
		})
		require.NoError(t, err)
		assert.True(t, updated.MeetingLink.IsSet)
		assert.False(t, updated.Location.IsSet)
	})

	t.Run("status_patch_needs_super_admin", func(t *testing.T) {
		manager, _, meeting, staff, dean := setup(t)

		_, err := manager.Update(ctx, principalFor(staff), meeting.ID, UpdateParam{
			Status: util.Some(database.MeetingStatusApproved),
		})
		assert.Equal(t, fault.KindForbidden, fault.KindOf(err))

		_, err = manager.Update(ctx, principalFor(dean), meeting.ID, UpdateParam{
			Status: util.Some(database.MeetingStatusApproved),
		})
		assert.Equal(t, fault.KindForbidden, fault.KindOf(err))
	})

	t.Run("super_admin_patches_status_with_projection", func(t *testing.T) {
		manager, _, meeting, _, _ := setup(t)
		admin := identity.Principal{ID: uuid.New(), Role: identity.RoleSuperAdmin}

		updated, err := manager.Update(ctx, admin, meeting.ID, UpdateParam{
			Status: util.Some(database.MeetingStatusApproved),
		})
		require.NoError(t, err)
		assert.Equal(t, database.MeetingStatusApproved, updated.Status)
		assert.True(t, updated.DeanApproved)
	})

	t.Run("completed_meeting_rejects_edits", func(t *testing.T) {
		manager, _, meeting, staff, dean := setup(t)

		_, err := manager.Approve(ctx, principalFor(dean), meeting.ID)
		require.NoError(t, err)
		_, err = manager.AddMinutes(ctx, principalFor(staff), meeting.ID, MinutesParam{Summary: "Done."})
		require.NoError(t, err)

		_, err = manager.Update(ctx, principalFor(staff), meeting.ID, UpdateParam{Title: util.Some("Late edit")})
		assert.Equal(t, fault.KindInvalidState, fault.KindOf(err))
	})

	t.Run("participant_list_is_replaced", func(t *testing.T) {
		manager, store, meeting, staff, _ := setup(t)
		replacement := store.addUser(universityID, "data_entry")

		_, err := manager.Update(ctx, principalFor(staff), meeting.ID, UpdateParam{
			ParticipantIDs: util.Some([]uuid.UUID{replacement.ID}),
		})
		require.NoError(t, err)

		participants, err := manager.Participants(ctx, principalFor(staff), meeting.ID)
		require.NoError(t, err)
		require.Len(t, participants, 1)
		assert.Equal(t, replacement.ID, participants[0].ID)
	})

	t.Run("location_and_link_together_fail_validation", func(t *testing.T) {
		manager, _, meeting, staff, _ := setup(t)

		_, err := manager.Update(ctx, principalFor(staff), meeting.ID, UpdateParam{
			Location:    util.Some("Main hall"),
			MeetingLink: util.Some("https://meet.example.edu/x"),
		})
		assert.Equal(t, fault.KindValidationFailed, fault.KindOf(err))
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	universityID := uuid.New()

	manager, store, _, auditor := newTestManager(t)
	staff := store.addUser(universityID, "data_entry")
	dean := store.addUser(universityID, "dean")

	meeting, err := manager.Create(ctx, principalFor(staff), validCreateParam(staff.ID))
	require.NoError(t, err)

	err = manager.Delete(ctx, principalFor(dean), meeting.ID)
	assert.Equal(t, fault.KindForbidden, fault.KindOf(err))

	admin := identity.Principal{ID: uuid.New(), Role: identity.RoleSuperAdmin}
	require.NoError(t, manager.Delete(ctx, admin, meeting.ID))
	assert.Contains(t, auditor.events, audit.AuditLogEventTypeMeetingDelete)

	_, err = manager.Get(ctx, admin, meeting.ID)
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}

func TestGetAndList(t *testing.T) {
	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()

	manager, store, _, _ := newTestManager(t)
	staffA := store.addUser(tenantA, "data_entry")
	staffB := store.addUser(tenantB, "data_entry")
	deanA := store.addUser(tenantA, "dean")

	meetingA, err := manager.Create(ctx, principalFor(staffA), validCreateParam(staffA.ID))
	require.NoError(t, err)
	meetingB, err := manager.Create(ctx, principalFor(staffB), validCreateParam(staffB.ID))
	require.NoError(t, err)

	t.Run("get_is_tenant_scoped", func(t *testing.T) {
		_, err := manager.Get(ctx, principalFor(deanA), meetingA.ID)
		require.NoError(t, err)

		_, err = manager.Get(ctx, principalFor(deanA), meetingB.ID)
		assert.Equal(t, fault.KindForbidden, fault.KindOf(err))
	})

	t.Run("list_pins_tenant_principals_to_their_tenant", func(t *testing.T) {
		meetings, err := manager.List(ctx, principalFor(deanA), ListParam{})
		require.NoError(t, err)
		require.Len(t, meetings, 1)
		assert.Equal(t, meetingA.ID, meetings[0].ID)
	})

	t.Run("super_admin_sees_everything_and_can_narrow", func(t *testing.T) {
		admin := identity.Principal{ID: uuid.New(), Role: identity.RoleSuperAdmin}

		meetings, err := manager.List(ctx, admin, ListParam{})
		require.NoError(t, err)
		assert.Len(t, meetings, 2)

		meetings, err = manager.List(ctx, admin, ListParam{UniversityID: util.Some(tenantB)})
		require.NoError(t, err)
		require.Len(t, meetings, 1)
		assert.Equal(t, meetingB.ID, meetings[0].ID)
	})

	t.Run("tenantless_principal_lists_nothing", func(t *testing.T) {
		meetings, err := manager.List(ctx, identity.Principal{ID: uuid.New(), Role: identity.RoleDataEntry}, ListParam{})
		require.NoError(t, err)
		assert.Empty(t, meetings)
	})

	t.Run("status_filter_applies", func(t *testing.T) {
		_, err := manager.Approve(ctx, principalFor(deanA), meetingA.ID)
		require.NoError(t, err)

		meetings, err := manager.List(ctx, principalFor(deanA), ListParam{Status: util.Some(database.MeetingStatusApproved)})
		require.NoError(t, err)
		require.Len(t, meetings, 1)
		assert.Equal(t, meetingA.ID, meetings[0].ID)
	})
}
