package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/academic-system/records-api/database"
	"github.com/academic-system/records-api/model"
	"github.com/academic-system/records-api/utils/response"
	"github.com/academic-system/records-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateCourseRequest represents a course creation request
type CreateCourseRequest struct {
	CourseCode  string `json:"course_code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Credits     int    `json:"credits" validate:"required,min=1,max=20"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// UpdateCourseRequest represents the editable course fields
type UpdateCourseRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=100"`
	Credits     int    `json:"credits" validate:"omitempty,min=1,max=20"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// ListCourses retrieves courses with pagination
// GET /admin/courses
func ListCourses(c *fiber.Ctx, store database.Storage) error {
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

	query := db.Model(&model.Course{})
	if search := c.Query("search"); search != "" {
		searchTerm := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(course_code) LIKE ? OR LOWER(name) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	var courses []model.Course
	if err := query.Order("course_code").Offset((page - 1) * limit).Limit(limit).Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Paginated(c, courses, response.CalculatePagination(page, limit, total))
}

// GetCourse retrieves one course with its sections
// GET /admin/courses/:id
func GetCourse(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	err = db.Preload("Sections.Semester").
		Preload("Sections.Instructor").
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// CreateCourse creates a new course
// POST /admin/courses
func CreateCourse(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	req.CourseCode = validation.SanitizeString(req.CourseCode)
	req.Name = validation.SanitizeString(req.Name)
	req.Description = validation.SanitizeString(req.Description)

	course := model.Course{
		CourseCode:  req.CourseCode,
		Name:        req.Name,
		Credits:     req.Credits,
		Description: req.Description,
	}
	if err := db.Create(&course).Error; err != nil {
		if isUniqueViolation(err) {
			return response.Conflict(c, "Course code already exists")
		}
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// UpdateCourse updates a course's editable fields
// PUT /admin/courses/:id
func UpdateCourse(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var course model.Course
	if err := db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Credits > 0 {
		updates["credits"] = req.Credits
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := db.Model(&course).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.SuccessWithMessage(c, "Course updated", course)
}

// DeleteCourse soft-deletes a course with no sections
// DELETE /admin/courses/:id
func DeleteCourse(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var sectionCount int64
	if err := db.Model(&model.Section{}).Where("course_id = ?", courseID).Count(&sectionCount).Error; err != nil {
		return response.InternalServerError(c, "Failed to check sections")
	}
	if sectionCount > 0 {
		return response.Conflict(c, "Course still has sections")
	}

	result := db.Delete(&model.Course{}, courseID)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Course not found")
	}

	return response.SuccessWithMessage(c, "Course deleted", nil)
}
