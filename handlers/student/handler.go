package student

import (
	"github.com/academic-system/records-api/services"
	"github.com/academic-system/records-api/utils/middleware"
	"github.com/academic-system/records-api/utils/response"
	"github.com/academic-system/records-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validation.NewValidator()

// StudentHandler serves the endpoints behind the student role.
type StudentHandler struct {
	db            *gorm.DB
	enrollments   *services.EnrollmentService
	grades        *services.GradeService
	attendance    *services.AttendanceService
	notifications *services.NotificationService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(db *gorm.DB, enrollments *services.EnrollmentService, grades *services.GradeService, attendance *services.AttendanceService, notifications *services.NotificationService) *StudentHandler {
	return &StudentHandler{
		db:            db,
		enrollments:   enrollments,
		grades:        grades,
		attendance:    attendance,
		notifications: notifications,
	}
}

// Dashboard returns the student's profile, current enrollments, grade
// average and unread notification count.
func (h *StudentHandler) Dashboard(c *fiber.Ctx) error {
	student, ok := middleware.GetStudent(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollments, err := h.enrollments.ActiveEnrollments(c.Context(), student.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load enrollments")
	}

	average, graded, err := h.grades.StudentAverage(c.Context(), student.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load grade average")
	}

	unread := int64(0)
	if h.notifications != nil {
		unread, _ = h.notifications.UnreadCount(c.Context(), student.UserID)
	}

	return response.Success(c, fiber.Map{
		"student":              student,
		"enrollments":          enrollments,
		"active_count":         len(enrollments),
		"average_score":        average,
		"graded_count":         graded,
		"unread_notifications": unread,
	})
}

// Profile returns the student's own profile row.
func (h *StudentHandler) Profile(c *fiber.Ctx) error {
	student, ok := middleware.GetStudent(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, student)
}

// UpdateProfileRequest carries the student-editable profile fields.
type UpdateProfileRequest struct {
	Email string `json:"email" validate:"omitempty,email,max=100"`
}

// UpdateProfile lets a student update their contact email. Identity
// fields stay admin-only.
func (h *StudentHandler) UpdateProfile(c *fiber.Ctx) error {
	student, ok := middleware.GetStudent(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return response.BadRequest(c, "No fields to update")
	}
	if err := validate.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.db.Model(student).Update("email", req.Email).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.SuccessWithMessage(c, "Profile updated", student)
}
