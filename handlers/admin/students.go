package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/academic-system/records-api/database"
	"github.com/academic-system/records-api/model"
	"github.com/academic-system/records-api/utils/auth"
	"github.com/academic-system/records-api/utils/response"
	"github.com/academic-system/records-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListStudentsRequest represents the query parameters for listing students
type ListStudentsRequest struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Search string `query:"search"`
	Active string `query:"active"`
}

// CreateStudentRequest creates a login account plus the student profile.
type CreateStudentRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	StudentCode string `json:"student_code" validate:"required,max=20"`
	Email       string `json:"email" validate:"omitempty,email,max=100"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateStudentRequest represents the editable student fields
type UpdateStudentRequest struct {
	FullName    string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Email       string `json:"email" validate:"omitempty,email,max=100"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

var validate = validation.NewValidator()

func gormDB(c *fiber.Ctx, store database.Storage) (*gorm.DB, error) {
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		return nil, response.InternalServerError(c, "Database connection error")
	}
	return db, nil
}

// ListStudents retrieves students with pagination and filters
// GET /admin/students
func ListStudents(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	var req ListStudentsRequest
	if err := c.QueryParser(&req); err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := db.Model(&model.Student{})

	if req.Search != "" {
		searchTerm := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(student_code) LIKE ?", searchTerm, searchTerm)
	}
	if req.Active == "true" {
		query = query.Where("is_active")
	} else if req.Active == "false" {
		query = query.Where("NOT is_active")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count students")
	}

	var students []model.Student
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("id").Offset(offset).Limit(req.Limit).Find(&students).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}

	return response.Paginated(c, students, response.CalculatePagination(req.Page, req.Limit, total))
}

// GetStudent retrieves one student with their enrollments
// GET /admin/students/:id
func GetStudent(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	var student model.Student
	err = db.Preload("Enrollments.Section.Course").
		Preload("Enrollments.Section.Semester").
		Preload("Enrollments.Grade").
		First(&student, studentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	return response.Success(c, student)
}

// CreateStudent creates a student account and profile in one transaction
// POST /admin/students
func CreateStudent(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	var req CreateStudentRequest
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
	req.StudentCode = validation.SanitizeString(req.StudentCode)

	var dateOfBirth *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return response.BadRequest(c, "date_of_birth must be YYYY-MM-DD")
		}
		dateOfBirth = &parsed
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to hash password")
	}

	var student model.Student
	err = db.Transaction(func(tx *gorm.DB) error {
		user := model.User{
			Username:     req.Username,
			PasswordHash: passwordHash,
			Role:         model.RoleStudent,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		student = model.Student{
			UserID:      user.ID,
			FullName:    req.FullName,
			StudentCode: req.StudentCode,
			Email:       req.Email,
			DateOfBirth: dateOfBirth,
			IsActive:    true,
		}
		return tx.Create(&student).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return response.Conflict(c, "Username or student code already exists")
		}
		return response.InternalServerError(c, "Failed to create student")
	}

	return response.Created(c, student)
}

// UpdateStudent updates a student's profile fields
// PUT /admin/students/:id
func UpdateStudent(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var student model.Student
	if err := db.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	updates := map[string]interface{}{}
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return response.BadRequest(c, "date_of_birth must be YYYY-MM-DD")
		}
		updates["date_of_birth"] = parsed
	}
	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := db.Model(&student).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update student")
	}

	return response.SuccessWithMessage(c, "Student updated", student)
}

// ToggleStudent flips a student's active flag. Deactivated students
// keep their records but cannot log into the student area.
// PATCH /admin/students/:id/toggle
func ToggleStudent(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	var student model.Student
	if err := db.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	student.IsActive = !student.IsActive
	if err := db.Model(&student).Update("is_active", student.IsActive).Error; err != nil {
		return response.InternalServerError(c, "Failed to update student")
	}

	state := "deactivated"
	if student.IsActive {
		state = "activated"
	}
	return response.SuccessWithMessage(c, "Student "+state, student)
}

// DeleteStudent soft-deletes a student without active enrollments
// DELETE /admin/students/:id
func DeleteStudent(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	var activeCount int64
	err = db.Model(&model.Enrollment{}).
		Where("student_id = ? AND status = ?", studentID, model.EnrollmentActive).
		Count(&activeCount).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to check enrollments")
	}
	if activeCount > 0 {
		return response.Conflict(c, "Student has active enrollments")
	}

	result := db.Delete(&model.Student{}, studentID)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete student")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Student not found")
	}

	return response.SuccessWithMessage(c, "Student deleted", nil)
}

func isUniqueViolation(err error) bool {
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key"))
}
