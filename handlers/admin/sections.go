package admin

import (
	"errors"
	"strconv"

	"github.com/academic-system/records-api/database"
	"github.com/academic-system/records-api/model"
	"github.com/academic-system/records-api/services"
	"github.com/academic-system/records-api/utils/response"
	"github.com/academic-system/records-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateSectionRequest represents a section creation request
type CreateSectionRequest struct {
	CourseID      uint   `json:"course_id" validate:"required"`
	SemesterID    uint   `json:"semester_id" validate:"required"`
	InstructorID  uint   `json:"instructor_id" validate:"required"`
	SectionCode   string `json:"section_code" validate:"required,max=10"`
	ScheduleInfo  string `json:"schedule_info" validate:"omitempty,max=255"`
	MaxCapacity   int    `json:"max_capacity" validate:"omitempty,min=1,max=500"`
	TotalSessions int    `json:"total_sessions" validate:"omitempty,min=1,max=100"`
}

// UpdateSectionRequest represents the editable section fields
type UpdateSectionRequest struct {
	InstructorID  uint   `json:"instructor_id"`
	ScheduleInfo  string `json:"schedule_info" validate:"omitempty,max=255"`
	MaxCapacity   int    `json:"max_capacity" validate:"omitempty,min=1,max=500"`
	TotalSessions int    `json:"total_sessions" validate:"omitempty,min=1,max=100"`
}

// ListSections retrieves sections with filters and pagination
// GET /admin/sections
func ListSections(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := db.Model(&model.Section{}).
		Preload("Course").
		Preload("Semester").
		Preload("Instructor")

	if semesterID, err := strconv.Atoi(c.Query("semester_id", "0")); err == nil && semesterID > 0 {
		query = query.Where("semester_id = ?", semesterID)
	}
	if courseID, err := strconv.Atoi(c.Query("course_id", "0")); err == nil && courseID > 0 {
		query = query.Where("course_id = ?", courseID)
	}
	if instructorID, err := strconv.Atoi(c.Query("instructor_id", "0")); err == nil && instructorID > 0 {
		query = query.Where("instructor_id = ?", instructorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count sections")
	}

	var sections []model.Section
	if err := query.Order("id").Offset((page - 1) * limit).Limit(limit).Find(&sections).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch sections")
	}

	return response.Paginated(c, sections, response.CalculatePagination(page, limit, total))
}

// GetSection retrieves one section with its roster
// GET /admin/sections/:id
func GetSection(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}

	var section model.Section
	err = db.Preload("Course").
		Preload("Semester").
		Preload("Instructor").
		Preload("Enrollments.Student").
		Preload("Enrollments.Grade").
		First(&section, sectionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Section not found")
		}
		return response.InternalServerError(c, "Failed to fetch section")
	}

	return response.Success(c, section)
}

// CreateSection creates a new section after validating its references
// POST /admin/sections
func CreateSection(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	var req CreateSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	req.SectionCode = validation.SanitizeString(req.SectionCode)
	req.ScheduleInfo = validation.SanitizeString(req.ScheduleInfo)

	if err := db.First(&model.Course{}, req.CourseID).Error; err != nil {
		return response.BadRequest(c, "Course does not exist")
	}
	if err := db.First(&model.Semester{}, req.SemesterID).Error; err != nil {
		return response.BadRequest(c, "Semester does not exist")
	}
	var instructor model.Instructor
	if err := db.First(&instructor, req.InstructorID).Error; err != nil {
		return response.BadRequest(c, "Instructor does not exist")
	}
	if !instructor.IsActive {
		return response.BadRequest(c, "Instructor is deactivated")
	}

	section := model.Section{
		CourseID:      req.CourseID,
		SemesterID:    req.SemesterID,
		InstructorID:  req.InstructorID,
		SectionCode:   req.SectionCode,
		ScheduleInfo:  req.ScheduleInfo,
		MaxCapacity:   req.MaxCapacity,
		TotalSessions: req.TotalSessions,
	}
	if section.MaxCapacity == 0 {
		section.MaxCapacity = 50
	}
	if section.TotalSessions == 0 {
		section.TotalSessions = 15
	}

	if err := db.Create(&section).Error; err != nil {
		if isUniqueViolation(err) {
			return response.Conflict(c, "This section already exists for the course and semester")
		}
		return response.InternalServerError(c, "Failed to create section")
	}

	return response.Created(c, section)
}

// UpdateSection updates a section's editable fields. Capacity can only
// shrink down to the current active enrollment count.
// PUT /admin/sections/:id
func UpdateSection(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}

	var req UpdateSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	req.ScheduleInfo = validation.SanitizeString(req.ScheduleInfo)

	var section model.Section
	if err := db.First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Section not found")
		}
		return response.InternalServerError(c, "Failed to fetch section")
	}

	updates := map[string]interface{}{}
	if req.InstructorID != 0 {
		var instructor model.Instructor
		if err := db.First(&instructor, req.InstructorID).Error; err != nil {
			return response.BadRequest(c, "Instructor does not exist")
		}
		if !instructor.IsActive {
			return response.BadRequest(c, "Instructor is deactivated")
		}
		updates["instructor_id"] = req.InstructorID
	}
	if req.ScheduleInfo != "" {
		updates["schedule_info"] = req.ScheduleInfo
	}
	if req.MaxCapacity > 0 {
		var activeCount int64
		err = db.Model(&model.Enrollment{}).
			Where("section_id = ? AND status = ?", sectionID, model.EnrollmentActive).
			Count(&activeCount).Error
		if err != nil {
			return response.InternalServerError(c, "Failed to check enrollments")
		}
		if int64(req.MaxCapacity) < activeCount {
			return response.Conflict(c, "Capacity cannot be below current enrollment")
		}
		updates["max_capacity"] = req.MaxCapacity
	}
	if req.TotalSessions > 0 {
		updates["total_sessions"] = req.TotalSessions
	}
	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := db.Model(&section).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update section")
	}

	return response.SuccessWithMessage(c, "Section updated", section)
}

type attendanceDetailRow struct {
	EnrollmentID uint                           `json:"enrollment_id"`
	StudentCode  string                         `json:"student_code"`
	FullName     string                         `json:"full_name"`
	Sessions     map[int]model.AttendanceStatus `json:"sessions"`
	Summary      services.AttendanceSummary     `json:"summary"`
}

// SectionAttendanceDetail returns the per-student session grid of a
// section, with counts by status and the attendance rate computed
// against the section's scheduled sessions.
// GET /admin/sections/:id/attendance
func SectionAttendanceDetail(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}

	var section model.Section
	err = db.Preload("Course").Preload("Semester").First(&section, sectionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Section not found")
		}
		return response.InternalServerError(c, "Failed to fetch section")
	}

	var enrollments []model.Enrollment
	err = db.Preload("Student").
		Where("section_id = ? AND status = ?", sectionID, model.EnrollmentActive).
		Order("id").
		Find(&enrollments).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch enrollments")
	}

	var records []model.Attendance
	if err := db.Where("section_id = ?", sectionID).Find(&records).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch attendance")
	}

	bySession := make(map[uint]map[int]model.AttendanceStatus, len(enrollments))
	for _, record := range records {
		if bySession[record.EnrollmentID] == nil {
			bySession[record.EnrollmentID] = make(map[int]model.AttendanceStatus)
		}
		bySession[record.EnrollmentID][record.SessionNumber] = record.Status
	}

	rows := make([]attendanceDetailRow, 0, len(enrollments))
	for _, enrollment := range enrollments {
		sessions := bySession[enrollment.ID]
		if sessions == nil {
			sessions = map[int]model.AttendanceStatus{}
		}
		rows = append(rows, attendanceDetailRow{
			EnrollmentID: enrollment.ID,
			StudentCode:  enrollment.Student.StudentCode,
			FullName:     enrollment.Student.FullName,
			Sessions:     sessions,
			Summary:      services.ComputeAttendanceSummary(enrollment.ID, section.TotalSessions, records),
		})
	}

	return response.Success(c, fiber.Map{
		"section":        section,
		"total_sessions": section.TotalSessions,
		"students":       rows,
	})
}

// DeleteSection soft-deletes a section with no active enrollments
// DELETE /admin/sections/:id
func DeleteSection(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	sectionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid section ID")
	}

	var activeCount int64
	err = db.Model(&model.Enrollment{}).
		Where("section_id = ? AND status = ?", sectionID, model.EnrollmentActive).
		Count(&activeCount).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to check enrollments")
	}
	if activeCount > 0 {
		return response.Conflict(c, "Section has active enrollments")
	}

	result := db.Delete(&model.Section{}, sectionID)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete section")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Section not found")
	}

	return response.SuccessWithMessage(c, "Section deleted", nil)
}
