package student

import (
	"errors"
	"strconv"

	"github.com/academic-system/records-api/model"
	"github.com/academic-system/records-api/services"
	"github.com/academic-system/records-api/utils/middleware"
	"github.com/academic-system/records-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// SectionListing is one browsable section with its availability.
type SectionListing struct {
	model.Section
	Enrolled  int64 `json:"enrolled"`
	Available int64 `json:"available"`
}

// ListSections returns browsable sections with seat availability,
// optionally filtered by semester or course.
func (h *StudentHandler) ListSections(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.WithContext(c.Context()).Model(&model.Section{}).
		Preload("Course").
		Preload("Semester").
		Preload("Instructor")

	if semesterID, err := strconv.Atoi(c.Query("semester_id", "0")); err == nil && semesterID > 0 {
		query = query.Where("semester_id = ?", semesterID)
	}
	if courseID, err := strconv.Atoi(c.Query("course_id", "0")); err == nil && courseID > 0 {
		query = query.Where("course_id = ?", courseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count sections")
	}

	var sections []model.Section
	err := query.Order("id").Limit(limit).Offset((page - 1) * limit).Find(&sections).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load sections")
	}

	listings := make([]SectionListing, 0, len(sections))
	for _, section := range sections {
		enrolled, err := h.enrollments.CountActive(c.Context(), section.ID)
		if err != nil {
			return response.InternalServerError(c, "Failed to load section availability")
		}
		available := int64(section.MaxCapacity) - enrolled
		if available < 0 {
			available = 0
		}
		listings = append(listings, SectionListing{
			Section:   section,
			Enrolled:  enrolled,
			Available: available,
		})
	}

	return response.Paginated(c, listings, response.CalculatePagination(page, limit, total))
}

// Enroll registers the student in a section.
func (h *StudentHandler) Enroll(c *fiber.Ctx) error {
	student, ok := middleware.GetStudent(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}

	enrollment, err := h.enrollments.Enroll(c.Context(), student, uint(sectionID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSectionNotFound):
			return response.NotFound(c, "Section not found")
		case errors.Is(err, services.ErrAlreadyEnrolled):
			return response.Conflict(c, "Already enrolled in this section")
		case errors.Is(err, services.ErrSectionFull):
			return response.Conflict(c, "Section is at full capacity")
		case errors.Is(err, services.ErrSemesterEnded):
			return response.BadRequest(c, "Semester has already ended")
		default:
			return response.InternalServerError(c, "Failed to enroll")
		}
	}

	return response.Created(c, enrollment)
}

// Drop marks the student's active enrollment in a section as dropped.
func (h *StudentHandler) Drop(c *fiber.Ctx) error {
	student, ok := middleware.GetStudent(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}

	enrollment, err := h.enrollments.Drop(c.Context(), student, uint(sectionID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotEnrolled):
			return response.NotFound(c, "No active enrollment in this section")
		default:
			return response.InternalServerError(c, "Failed to drop section")
		}
	}

	return response.SuccessWithMessage(c, "Section dropped", enrollment)
}
