package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"unihub/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MeetingStatus is the lifecycle state of a meeting request. It only ever
// moves forward: pending -> approved -> completed, or pending -> rejected.
type MeetingStatus string

const (
	MeetingStatusPending   MeetingStatus = "pending"
	MeetingStatusApproved  MeetingStatus = "approved"
	MeetingStatusRejected  MeetingStatus = "rejected"
	MeetingStatusCompleted MeetingStatus = "completed"
)

// DeanApproved is the denormalized approval flag kept on the record for
// queries. It is always recomputed from the status, never stored on its own.
func (s MeetingStatus) DeanApproved() bool {
	return s == MeetingStatusApproved || s == MeetingStatusCompleted
}

type MeetingType string

const (
	MeetingTypeInPerson MeetingType = "in_person"
	MeetingTypeOnline   MeetingType = "online"
)

type Meeting struct {
	ID           uuid.UUID
	UniversityID uuid.UUID
	CreatedBy    uuid.UUID
	Type         MeetingType
	Title        string
	Agenda       string
	StartTime    time.Time
	EndTime      util.Optional[time.Time]
	// Exactly one of Location and MeetingLink is set, per Type.
	Location       util.Optional[string]
	MeetingLink    util.Optional[string]
	Status         MeetingStatus
	DeanApproved   bool
	MinutesSummary util.Optional[string]
	MinutesFileKey util.Optional[string]
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const meetingColumns = `id, university_id, created_by, type, title, agenda, start_time, end_time, location, meeting_link, status, dean_approved, minutes_summary, minutes_file_key, created_at, updated_at`

func scanMeeting(row pgx.Row) (Meeting, error) {
	var m Meeting
	err := row.Scan(&m.ID, &m.UniversityID, &m.CreatedBy, &m.Type, &m.Title, &m.Agenda,
		&m.StartTime, &m.EndTime, &m.Location, &m.MeetingLink, &m.Status, &m.DeanApproved,
		&m.MinutesSummary, &m.MinutesFileKey, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

type CreateMeetingParams struct {
	UniversityID   uuid.UUID
	CreatedBy      uuid.UUID
	Type           MeetingType
	Title          string
	Agenda         string
	StartTime      time.Time
	EndTime        util.Optional[time.Time]
	Location       util.Optional[string]
	MeetingLink    util.Optional[string]
	ParticipantIDs []uuid.UUID
}

// CreateMeeting inserts the meeting and its participant set in one
// transaction. New meetings always start out pending.
func (db *Database) CreateMeeting(ctx context.Context, params CreateMeetingParams) (Meeting, error) {
	meeting := Meeting{
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
		Status:       MeetingStatusPending,
		DeanApproved: MeetingStatusPending.DeanApproved(),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return meeting, fmt.Errorf("database: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO tbl_meeting (`+meetingColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		meeting.ID, meeting.UniversityID, meeting.CreatedBy, meeting.Type, meeting.Title, meeting.Agenda,
		meeting.StartTime, meeting.EndTime, meeting.Location, meeting.MeetingLink, meeting.Status, meeting.DeanApproved,
		meeting.MinutesSummary, meeting.MinutesFileKey, meeting.CreatedAt, meeting.UpdatedAt); err != nil {
		return meeting, fmt.Errorf("database: failed to insert meeting: %w", err)
	}

	for _, userID := range params.ParticipantIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO tbl_meeting_participant (id, meeting_id, user_id, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (meeting_id, user_id) DO NOTHING`,
			uuid.New(), meeting.ID, userID, time.Now().UTC()); err != nil {
			return meeting, fmt.Errorf("database: failed to insert meeting participant (user=%s): %w", userID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return meeting, fmt.Errorf("database: failed to commit meeting: %w", err)
	}

	return meeting, nil
}

func (db *Database) GetMeetingByID(ctx context.Context, id uuid.UUID) (Meeting, error) {
	meeting, err := scanMeeting(db.Pool.QueryRow(ctx, `SELECT `+meetingColumns+` FROM tbl_meeting WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return meeting, ErrMeetingNotFound
		}
		return meeting, fmt.Errorf("database: failed to scan meeting: %w", err)
	}
	return meeting, nil
}

type ListMeetingsParams struct {
	UniversityID util.Optional[uuid.UUID]
	CreatedBy    util.Optional[uuid.UUID]
	Status       util.Optional[MeetingStatus]
	Limit        util.Optional[int]
	Offset       util.Optional[int]
}

func (db *Database) ListMeetings(ctx context.Context, params ListMeetingsParams) ([]Meeting, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + meetingColumns + ` FROM tbl_meeting WHERE 1=1`)
	var args []any
	argNum := 1

	if params.UniversityID.IsSet {
		query.WriteString(fmt.Sprintf(" AND university_id = $%d", argNum))
		args = append(args, params.UniversityID.Val)
		argNum++
	}
	if params.CreatedBy.IsSet {
		query.WriteString(fmt.Sprintf(" AND created_by = $%d", argNum))
		args = append(args, params.CreatedBy.Val)
		argNum++
	}
	if params.Status.IsSet {
		query.WriteString(fmt.Sprintf(" AND status = $%d", argNum))
		args = append(args, params.Status.Val)
		argNum++
	}

	query.WriteString(" ORDER BY start_time DESC")

	if params.Limit.IsSet {
		query.WriteString(fmt.Sprintf(" LIMIT $%d", argNum))
		args = append(args, params.Limit.Val)
		argNum++
	}
	if params.Offset.IsSet {
		query.WriteString(fmt.Sprintf(" OFFSET $%d", argNum))
		args = append(args, params.Offset.Val)
		argNum++
	}

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("database: failed to scan meeting: %w", err)
		}
		meetings = append(meetings, meeting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate meetings: %w", err)
	}

	return meetings, nil
}

type UpdateMeetingParams struct {
	Type        util.Optional[MeetingType]
	Title       util.Optional[string]
	Agenda      util.Optional[string]
	StartTime   util.Optional[time.Time]
	EndTime     util.Optional[time.Time]
	Location    util.Optional[string]
	MeetingLink util.Optional[string]
	Status      util.Optional[MeetingStatus]
}

// UpdateMeetingByID patches non-lifecycle fields. When Status is set the
// dean_approved projection is rewritten with it; lifecycle transitions must go
// through UpdateMeetingStatus instead.
func (db *Database) UpdateMeetingByID(ctx context.Context, id uuid.UUID, params UpdateMeetingParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_meeting SET `)
	var args []any
	argNum := 1

	set := func(column string, value any) {
		query.WriteString(fmt.Sprintf("%s = $%d, ", column, argNum))
		args = append(args, value)
		argNum++
	}

	if params.Type.IsSet {
		set("type", params.Type.Val)
	}
	if params.Title.IsSet {
		set("title", params.Title.Val)
	}
	if params.Agenda.IsSet {
		set("agenda", params.Agenda.Val)
	}
	if params.StartTime.IsSet {
		set("start_time", params.StartTime.Val)
	}
	if params.EndTime.IsSet {
		set("end_time", params.EndTime.Val)
	}
	if params.Location.IsSet {
		set("location", params.Location.Val)
		set("meeting_link", nil)
	}
	if params.MeetingLink.IsSet {
		set("meeting_link", params.MeetingLink.Val)
		set("location", nil)
	}
	if params.Status.IsSet {
		set("status", params.Status.Val)
		set("dean_approved", params.Status.Val.DeanApproved())
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update meeting (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMeetingNotFound
	}
	return nil
}

// UpdateMeetingStatus performs the lifecycle transition as a single
// conditional write: the status changes only if the current status still
// matches expected. It reports whether exactly one row was transitioned, so a
// lost race shows up as false rather than a silent double transition.
func (db *Database) UpdateMeetingStatus(ctx context.Context, id uuid.UUID, expected, next MeetingStatus) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE tbl_meeting SET status = $1, dean_approved = $2, updated_at = $3 WHERE id = $4 AND status = $5`,
		next, next.DeanApproved(), time.Now().UTC(), id, expected)
	if err != nil {
		return false, fmt.Errorf("database: failed to transition meeting (id=%s, %s -> %s): %w", id, expected, next, err)
	}
	return tag.RowsAffected() == 1, nil
}

type SetMeetingMinutesParams struct {
	Summary util.Optional[string]
	FileKey util.Optional[string]
}

// SetMeetingMinutes records the minutes and completes the meeting. The write
// is conditional on the meeting being approved or already completed, so
// re-submission overwrites the minutes without touching the status.
func (db *Database) SetMeetingMinutes(ctx context.Context, id uuid.UUID, params SetMeetingMinutesParams) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE tbl_meeting SET minutes_summary = $1, minutes_file_key = $2, status = $3, dean_approved = $4, updated_at = $5 WHERE id = $6 AND status = ANY($7)`,
		params.Summary, params.FileKey, MeetingStatusCompleted, MeetingStatusCompleted.DeanApproved(), time.Now().UTC(), id,
		[]string{string(MeetingStatusApproved), string(MeetingStatusCompleted)})
	if err != nil {
		return false, fmt.Errorf("database: failed to set meeting minutes (id=%s): %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (db *Database) DeleteMeetingByID(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_meeting WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: failed to delete meeting (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMeetingNotFound
	}
	return nil
}

// ListMeetingParticipants returns the users invited to a meeting.
func (db *Database) ListMeetingParticipants(ctx context.Context, meetingID uuid.UUID) ([]User, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.university_id, u.created_at, u.updated_at
		FROM tbl_user u
		INNER JOIN tbl_meeting_participant mp ON mp.user_id = u.id
		WHERE mp.meeting_id = $1
		ORDER BY u.name ASC
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list meeting participants: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.UniversityID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan meeting participant: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate meeting participants: %w", err)
	}

	return users, nil
}

// ReplaceMeetingParticipants swaps the participant set of a meeting.
func (db *Database) ReplaceMeetingParticipants(ctx context.Context, meetingID uuid.UUID, userIDs []uuid.UUID) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("database: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tbl_meeting_participant WHERE meeting_id = $1`, meetingID); err != nil {
		return fmt.Errorf("database: failed to clear meeting participants: %w", err)
	}

	for _, userID := range userIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO tbl_meeting_participant (id, meeting_id, user_id, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (meeting_id, user_id) DO NOTHING`,
			uuid.New(), meetingID, userID, time.Now().UTC()); err != nil {
			return fmt.Errorf("database: failed to insert meeting participant (user=%s): %w", userID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("database: failed to commit participants: %w", err)
	}
	return nil
}
