package lecturer

import (
	"strconv"

	"github.com/academic-system/records-api/model"
	"github.com/academic-system/records-api/services"
	"github.com/academic-system/records-api/utils/middleware"
	"github.com/academic-system/records-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LecturerHandler serves the endpoints behind the lecturer role.
type LecturerHandler struct {
	db          *gorm.DB
	enrollments *services.EnrollmentService
	grades      *services.GradeService
	attendance  *services.AttendanceService
}

// NewLecturerHandler creates a new lecturer handler
func NewLecturerHandler(db *gorm.DB, enrollments *services.EnrollmentService, grades *services.GradeService, attendance *services.AttendanceService) *LecturerHandler {
	return &LecturerHandler{
		db:          db,
		enrollments: enrollments,
		grades:      grades,
		attendance:  attendance,
	}
}

// Dashboard returns the instructor's profile and taught sections with
// enrollment counts.
func (h *LecturerHandler) Dashboard(c *fiber.Ctx) error {
	instructor, ok := middleware.GetInstructor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	sections, err := h.taughtSections(c, instructor.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load sections")
	}

	return response.Success(c, fiber.Map{
		"instructor": instructor,
		"sections":   sections,
	})
}

// TaughtSection is one section with its active enrollment count.
type TaughtSection struct {
	model.Section
	Enrolled int64 `json:"enrolled"`
}

// Sections lists the sections this instructor teaches, optionally
// filtered by semester.
func (h *LecturerHandler) Sections(c *fiber.Ctx) error {
	instructor, ok := middleware.GetInstructor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	sections, err := h.taughtSections(c, instructor.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load sections")
	}

	return response.Success(c, sections)
}

func (h *LecturerHandler) taughtSections(c *fiber.Ctx, instructorID uint) ([]TaughtSection, error) {
	query := h.db.WithContext(c.Context()).Model(&model.Section{}).
		Preload("Course").
		Preload("Semester").
		Where("instructor_id = ?", instructorID)

	if semesterID, err := strconv.Atoi(c.Query("semester_id", "0")); err == nil && semesterID > 0 {
		query = query.Where("semester_id = ?", semesterID)
	}

	var sections []model.Section
	if err := query.Order("id").Find(&sections).Error; err != nil {
		return nil, err
	}

	taught := make([]TaughtSection, 0, len(sections))
	for _, section := range sections {
		enrolled, err := h.enrollments.CountActive(c.Context(), section.ID)
		if err != nil {
			return nil, err
		}
		taught = append(taught, TaughtSection{Section: section, Enrolled: enrolled})
	}
	return taught, nil
}

// StudentProfile returns a student's profile plus their enrollments in
// this instructor's sections. Lecturers see only students they teach.
func (h *LecturerHandler) StudentProfile(c *fiber.Ctx) error {
	instructor, ok := middleware.GetInstructor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	var enrollments []model.Enrollment
	err = h.db.WithContext(c.Context()).
		Preload("Section.Course").
		Preload("Section.Semester").
		Preload("Grade").
		Joins("JOIN sections ON sections.id = enrollments.section_id").
		Where("enrollments.student_id = ? AND sections.instructor_id = ?", studentID, instructor.ID).
		Find(&enrollments).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load enrollments")
	}
	if len(enrollments) == 0 {
		return response.NotFound(c, "Student not found in your sections")
	}

	var student model.Student
	if err := h.db.WithContext(c.Context()).First(&student, studentID).Error; err != nil {
		return response.NotFound(c, "Student not found")
	}

	return response.Success(c, fiber.Map{
		"student":     student,
		"enrollments": enrollments,
	})
}
