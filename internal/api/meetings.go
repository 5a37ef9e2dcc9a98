package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"unihub/internal/database"
	"unihub/internal/identity"
	"unihub/internal/meeting"
	"unihub/internal/middleware"
	"unihub/internal/storage"
	"unihub/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxMinutesFileSize = 10 * 1024 * 1024

type meetingResponse struct {
	ID             uuid.UUID                 `json:"id"`
	UniversityID   uuid.UUID                 `json:"university_id"`
	CreatedBy      uuid.UUID                 `json:"created_by"`
	Type           database.MeetingType      `json:"type"`
	Title          string                    `json:"title"`
	Agenda         string                    `json:"agenda"`
	StartTime      time.Time                 `json:"start_time"`
	EndTime        util.Optional[time.Time]  `json:"end_time"`
	Location       util.Optional[string]     `json:"location"`
	MeetingLink    util.Optional[string]     `json:"meeting_link"`
	Status         database.MeetingStatus    `json:"status"`
	DeanApproved   bool                      `json:"dean_approved"`
	MinutesSummary util.Optional[string]     `json:"minutes_summary"`
	HasMinutesFile bool                      `json:"has_minutes_file"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

func presentMeeting(m database.Meeting) meetingResponse {
	return meetingResponse{
		ID:             m.ID,
		UniversityID:   m.UniversityID,
		CreatedBy:      m.CreatedBy,
		Type:           m.Type,
		Title:          m.Title,
		Agenda:         m.Agenda,
		StartTime:      m.StartTime,
		EndTime:        m.EndTime,
		Location:       m.Location,
		MeetingLink:    m.MeetingLink,
		Status:         m.Status,
		DeanApproved:   m.DeanApproved,
		MinutesSummary: m.MinutesSummary,
		HasMinutesFile: m.MinutesFileKey.IsSet,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func (h *Handler) CreateMeeting(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var req struct {
		UniversityID   util.Optional[uuid.UUID] `json:"university_id"`
		Type           string                   `json:"type"`
		Title          string                   `json:"title"`
		Agenda         string                   `json:"agenda"`
		StartTime      time.Time                `json:"start_time"`
		EndTime        util.Optional[time.Time] `json:"end_time"`
		Location       string                   `json:"location"`
		MeetingLink    string                   `json:"meeting_link"`
		ParticipantIDs []uuid.UUID              `json:"participant_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := h.meetings.Create(c.Context(), principal, meeting.CreateParam{
		UniversityID:   req.UniversityID,
		Type:           database.MeetingType(req.Type),
		Title:          req.Title,
		Agenda:         req.Agenda,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Location:       req.Location,
		MeetingLink:    req.MeetingLink,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		return h.respondFault(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(presentMeeting(created))
}

func (h *Handler) ListMeetings(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	params := meeting.ListParam{
		Limit:  util.Some(c.QueryInt("limit", 50)),
		Offset: util.Some(c.QueryInt("offset", 0)),
	}
	if status := c.Query("status"); status != "" {
		params.Status = util.Some(database.MeetingStatus(status))
	}
	if rawUniversityID := c.Query("university_id"); rawUniversityID != "" {
		universityID, err := uuid.Parse(rawUniversityID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid university ID"})
		}
		params.UniversityID = util.Some(universityID)
	}

	meetings, err := h.meetings.List(c.Context(), principal, params)
	if err != nil {
		return h.respondFault(c, err)
	}

	response := make([]meetingResponse, len(meetings))
	for i, m := range meetings {
		response[i] = presentMeeting(m)
	}
	return c.JSON(fiber.Map{"meetings": response})
}

func (h *Handler) GetMeeting(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	meetingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid meeting ID"})
	}

	found, err := h.meetings.Get(c.Context(), principal, meetingID)
	if err != nil {
		return h.respondFault(c, err)
	}
	return c.JSON(presentMeeting(found))
}

func (h *Handler) UpdateMeeting(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	meetingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid meeting ID"})
	}

	var req struct {
		Type           util.Optional[database.MeetingType]   `json:"type"`
		Title          util.Optional[string]                 `json:"title"`
		Agenda         util.Optional[string]                 `json:"agenda"`
		StartTime      util.Optional[time.Time]              `json:"start_time"`
		EndTime        util.Optional[time.Time]              `json:"end_time"`
		Location       util.Optional[string]                 `json:"location"`
		MeetingLink    util.Optional[string]                 `json:"meeting_link"`
		Status         util.Optional[database.MeetingStatus] `json:"status"`
		ParticipantIDs util.Optional[[]uuid.UUID]            `json:"participant_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updated, err := h.meetings.Update(c.Context(), principal, meetingID, meeting.UpdateParam{
		Type:           req.Type,
		Title:          req.Title,
		Agenda:         req.Agenda,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Location:       req.Location,
		MeetingLink:    req.MeetingLink,
		Status:         req.Status,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		return h.respondFault(c, err)
	}
	return c.JSON(presentMeeting(updated))
}

func (h *Handler) DeleteMeeting(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	meetingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid meeting ID"})
	}

	if err := h.meetings.Delete(c.Context(), principal, meetingID); err != nil {
		return h.respondFault(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) ApproveMeeting(c *fiber.Ctx) error {
	return h.decideMeeting(c, h.meetings.Approve)
}

func (h *Handler) RejectMeeting(c *fiber.Ctx) error {
	return h.decideMeeting(c, h.meetings.Reject)
}

func (h *Handler) decideMeeting(c *fiber.Ctx, decide func(ctx context.Context, principal identity.Principal, id uuid.UUID) (database.Meeting, error)) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	meetingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid meeting ID"})
	}

	decided, err := decide(c.Context(), principal, meetingID)
	if err != nil {
		return h.respondFault(c, err)
	}
	return c.JSON(presentMeeting(decided))
}

// AddMinutes accepts a multipart form with a summary field and an optional
// attachment. The attachment is stored first; if the engine then refuses the
// minutes, the orphaned file is removed again.
func (h *Handler) AddMinutes(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	meetingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid meeting ID"})
	}

	fileKey := util.None[string]()
	if file, err := c.FormFile("file"); err == nil {
		if file.Size > maxMinutesFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File too large (max 10MB)"})
		}

		src, err := file.Open()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open uploaded file"})
		}
		defer src.Close()

		key, err := h.storage.Save(c.Context(), meetingID, file.Filename, src, file.Header.Get("Content-Type"))
		if err != nil {
			h.logger.ErrorContext(c.Context(), "Failed to store minutes file", "meeting_id", meetingID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store file"})
		}
		fileKey = util.Some(key)
	}

	completed, err := h.meetings.AddMinutes(c.Context(), principal, meetingID, meeting.MinutesParam{
		Summary: c.FormValue("summary"),
		FileKey: fileKey,
	})
	if err != nil {
		if fileKey.IsSet {
			if cleanupErr := h.storage.Remove(c.Context(), fileKey.Val); cleanupErr != nil {
				h.logger.ErrorContext(c.Context(), "Failed to clean up minutes file", "key", fileKey.Val, "error", cleanupErr)
			}
		}
		return h.respondFault(c, err)
	}

	return c.JSON(presentMeeting(completed))
}

func (h *Handler) DownloadMinutes(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	meetingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid meeting ID"})
	}

	found, err := h.meetings.Get(c.Context(), principal, meetingID)
	if err != nil {
		return h.respondFault(c, err)
	}
	if !found.MinutesFileKey.IsSet {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No minutes file for this meeting"})
	}

	fileReader, err := h.storage.Open(c.Context(), found.MinutesFileKey.Val)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Minutes file not found"})
		}
		h.logger.ErrorContext(c.Context(), "Failed to retrieve minutes file", "meeting_id", meetingID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve file"})
	}
	defer fileReader.Close()

	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="minutes-%s"`, meetingID))
	return c.SendStream(fileReader)
}

func (h *Handler) ListParticipants(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	meetingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid meeting ID"})
	}

	participants, err := h.meetings.Participants(c.Context(), principal, meetingID)
	if err != nil {
		return h.respondFault(c, err)
	}

	type participantResponse struct {
		ID    uuid.UUID `json:"id"`
		Name  string    `json:"name"`
		Email string    `json:"email"`
	}
	response := make([]participantResponse, len(participants))
	for i, user := range participants {
		response[i] = participantResponse{ID: user.ID, Name: user.Name, Email: user.Email}
	}
	return c.JSON(fiber.Map{"participants": response})
}
