package lecturer

import (
	"errors"
	"strconv"

	"github.com/academic-system/records-api/services"
	"github.com/academic-system/records-api/utils/middleware"
	"github.com/academic-system/records-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// Roster returns the active enrollments of one of the instructor's
// sections.
func (h *LecturerHandler) Roster(c *fiber.Ctx) error {
	instructor, ok := middleware.GetInstructor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}

	enrollments, err := h.grades.SectionGrades(c.Context(), instructor, uint(sectionID))
	if err != nil {
		return h.mapSectionError(c, err, "Failed to load roster")
	}

	return response.Success(c, enrollments)
}

// SubmitGradeRequest represents a grade submission
type SubmitGradeRequest struct {
	Score  float64 `json:"score" validate:"min=0,max=10"`
	Letter string  `json:"letter" validate:"omitempty,max=3"`
}

// SubmitGrade records or overwrites the grade for an enrollment in a
// section this instructor teaches.
func (h *LecturerHandler) SubmitGrade(c *fiber.Ctx) error {
	instructor, ok := middleware.GetInstructor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment ID")
	}

	var req SubmitGradeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	grade, err := h.grades.SubmitGrade(c.Context(), instructor, uint(enrollmentID), req.Score, req.Letter)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrScoreOutOfRange):
			return response.BadRequest(c, "Score must be between 0 and 10")
		case errors.Is(err, services.ErrEnrollmentMissing):
			return response.NotFound(c, "Enrollment not found")
		case errors.Is(err, services.ErrNotSectionOwner):
			return response.Forbidden(c, "You do not teach this section")
		default:
			return response.InternalServerError(c, "Failed to submit grade")
		}
	}

	return response.SuccessWithMessage(c, "Grade recorded", grade)
}

// SectionReport returns the aggregate grade picture of one section.
func (h *LecturerHandler) SectionReport(c *fiber.Ctx) error {
	instructor, ok := middleware.GetInstructor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}

	report, err := h.grades.SectionReport(c.Context(), instructor, uint(sectionID))
	if err != nil {
		return h.mapSectionError(c, err, "Failed to build report")
	}

	return response.Success(c, report)
}

func (h *LecturerHandler) mapSectionError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrSectionNotFound):
		return response.NotFound(c, "Section not found")
	case errors.Is(err, services.ErrNotSectionOwner):
		return response.Forbidden(c, "You do not teach this section")
	default:
		return response.InternalServerError(c, fallback)
	}
}
