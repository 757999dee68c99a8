package lecturer

import (
	"errors"
	"strconv"
	"time"

	"github.com/academic-system/records-api/services"
	"github.com/academic-system/records-api/utils/middleware"
	"github.com/academic-system/records-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// MarkAttendanceRequest represents an attendance marking request for
// one session. Students missing from marks are recorded as absent.
type MarkAttendanceRequest struct {
	Date  string                 `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Marks []services.SessionMark `json:"marks" validate:"dive"`
}

// MarkAttendance records attendance for one session of a section.
func (h *LecturerHandler) MarkAttendance(c *fiber.Ctx) error {
	instructor, ok := middleware.GetInstructor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}
	sessionNumber, err := strconv.Atoi(c.Params("session"))
	if err != nil {
		return response.BadRequest(c, "Invalid session number")
	}

	var req MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var date time.Time
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return response.BadRequest(c, "Date must be YYYY-MM-DD")
		}
	}

	records, err := h.attendance.MarkSession(c.Context(), instructor, uint(sectionID), sessionNumber, date, req.Marks)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSectionNotFound):
			return response.NotFound(c, "Section not found")
		case errors.Is(err, services.ErrNotSectionOwner):
			return response.Forbidden(c, "You do not teach this section")
		case errors.Is(err, services.ErrSessionOutOfRange):
			return response.BadRequest(c, "Session number is out of range for this section")
		case errors.Is(err, services.ErrInvalidStatus):
			return response.BadRequest(c, "Invalid attendance status")
		case errors.Is(err, services.ErrEnrollmentNotInClass):
			return response.BadRequest(c, "One or more enrollments do not belong to this section")
		default:
			return response.InternalServerError(c, "Failed to record attendance")
		}
	}

	return response.SuccessWithMessage(c, "Attendance recorded", records)
}

// SessionAttendance returns the recorded attendance of one session.
func (h *LecturerHandler) SessionAttendance(c *fiber.Ctx) error {
	instructor, ok := middleware.GetInstructor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}
	sessionNumber, err := strconv.Atoi(c.Params("session"))
	if err != nil {
		return response.BadRequest(c, "Invalid session number")
	}

	records, err := h.attendance.SessionRecords(c.Context(), instructor, uint(sectionID), sessionNumber)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSectionNotFound):
			return response.NotFound(c, "Section not found")
		case errors.Is(err, services.ErrNotSectionOwner):
			return response.Forbidden(c, "You do not teach this section")
		case errors.Is(err, services.ErrSessionOutOfRange):
			return response.BadRequest(c, "Session number is out of range for this section")
		default:
			return response.InternalServerError(c, "Failed to load attendance")
		}
	}

	return response.Success(c, records)
}

// SectionAttendance returns per-student attendance summaries for one
// of the instructor's sections.
func (h *LecturerHandler) SectionAttendance(c *fiber.Ctx) error {
	instructor, ok := middleware.GetInstructor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}

	summaries, err := h.attendance.SectionSummaries(c.Context(), instructor, uint(sectionID))
	if err != nil {
		return h.mapSectionError(c, err, "Failed to load attendance summaries")
	}

	return response.Success(c, summaries)
}
