package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/academic-system/records-api/database"
	"github.com/academic-system/records-api/model"
	"github.com/academic-system/records-api/utils/auth"
	"github.com/academic-system/records-api/utils/response"
	"github.com/academic-system/records-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateInstructorRequest creates a login account plus the instructor profile.
type CreateInstructorRequest struct {
	Username       string `json:"username" validate:"required,min=3,max=50"`
	Password       string `json:"password" validate:"required,min=8"`
	FullName       string `json:"full_name" validate:"required,min=2,max=100"`
	InstructorCode string `json:"instructor_code" validate:"required,max=20"`
	Department     string `json:"department" validate:"omitempty,max=100"`
	Email          string `json:"email" validate:"omitempty,email,max=100"`
}

// UpdateInstructorRequest represents the editable instructor fields
type UpdateInstructorRequest struct {
	FullName   string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Department string `json:"department" validate:"omitempty,max=100"`
	Email      string `json:"email" validate:"omitempty,email,max=100"`
}

// ListInstructors retrieves instructors with pagination
// GET /admin/instructors
func ListInstructors(c *fiber.Ctx, store database.Storage) error {
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

	query := db.Model(&model.Instructor{})
	if search := c.Query("search"); search != "" {
		searchTerm := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(instructor_code) LIKE ? OR LOWER(department) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count instructors")
	}

	var instructors []model.Instructor
	if err := query.Order("id").Offset((page - 1) * limit).Limit(limit).Find(&instructors).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch instructors")
	}

	return response.Paginated(c, instructors, response.CalculatePagination(page, limit, total))
}

// GetInstructor retrieves one instructor with their sections
// GET /admin/instructors/:id
func GetInstructor(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	instructorID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid instructor ID")
	}

	var instructor model.Instructor
	err = db.Preload("Sections.Course").
		Preload("Sections.Semester").
		First(&instructor, instructorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Instructor not found")
		}
		return response.InternalServerError(c, "Failed to fetch instructor")
	}

	return response.Success(c, instructor)
}

// CreateInstructor creates a lecturer account and profile in one transaction
// POST /admin/instructors
func CreateInstructor(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	var req CreateInstructorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if ok, reason := validation.ValidateUsername(req.Username); !ok {
		return response.BadRequest(c, reason)
	}
	if !auth.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}
	req.FullName = validation.SanitizeString(req.FullName)
	req.InstructorCode = validation.SanitizeString(req.InstructorCode)
	req.Department = validation.SanitizeString(req.Department)

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to hash password")
	}

	var instructor model.Instructor
	err = db.Transaction(func(tx *gorm.DB) error {
		user := model.User{
			Username:     req.Username,
			PasswordHash: passwordHash,
			Role:         model.RoleLecturer,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		instructor = model.Instructor{
			UserID:         user.ID,
			FullName:       req.FullName,
			InstructorCode: req.InstructorCode,
			Department:     req.Department,
			Email:          req.Email,
			IsActive:       true,
		}
		return tx.Create(&instructor).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return response.Conflict(c, "Username or instructor code already exists")
		}
		return response.InternalServerError(c, "Failed to create instructor")
	}

	return response.Created(c, instructor)
}

// UpdateInstructor updates an instructor's profile fields
// PUT /admin/instructors/:id
func UpdateInstructor(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	instructorID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid instructor ID")
	}

	var req UpdateInstructorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var instructor model.Instructor
	if err := db.First(&instructor, instructorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Instructor not found")
		}
		return response.InternalServerError(c, "Failed to fetch instructor")
	}

	updates := map[string]interface{}{}
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.Department != "" {
		updates["department"] = req.Department
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := db.Model(&instructor).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update instructor")
	}

	return response.SuccessWithMessage(c, "Instructor updated", instructor)
}

// ToggleInstructor flips an instructor's active flag
// PATCH /admin/instructors/:id/toggle
func ToggleInstructor(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	instructorID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid instructor ID")
	}

	var instructor model.Instructor
	if err := db.First(&instructor, instructorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Instructor not found")
		}
		return response.InternalServerError(c, "Failed to fetch instructor")
	}

	instructor.IsActive = !instructor.IsActive
	if err := db.Model(&instructor).Update("is_active", instructor.IsActive).Error; err != nil {
		return response.InternalServerError(c, "Failed to update instructor")
	}

	state := "deactivated"
	if instructor.IsActive {
		state = "activated"
	}
	return response.SuccessWithMessage(c, "Instructor "+state, instructor)
}

// DeleteInstructor soft-deletes an instructor with no assigned sections
// DELETE /admin/instructors/:id
func DeleteInstructor(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	instructorID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid instructor ID")
	}

	var sectionCount int64
	err = db.Model(&model.Section{}).Where("instructor_id = ?", instructorID).Count(&sectionCount).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to check sections")
	}
	if sectionCount > 0 {
		return response.Conflict(c, "Instructor still has assigned sections")
	}

	result := db.Delete(&model.Instructor{}, instructorID)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete instructor")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Instructor not found")
	}

	return response.SuccessWithMessage(c, "Instructor deleted", nil)
}
