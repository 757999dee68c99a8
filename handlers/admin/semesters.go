package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/academic-system/records-api/database"
	"github.com/academic-system/records-api/model"
	"github.com/academic-system/records-api/utils/response"
	"github.com/academic-system/records-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateSemesterRequest represents a semester creation request
type CreateSemesterRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=50"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// UpdateSemesterRequest represents the editable semester fields
type UpdateSemesterRequest struct {
	Name      string `json:"name" validate:"omitempty,min=2,max=50"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// ListSemesters retrieves all semesters, newest first
// GET /admin/semesters
func ListSemesters(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	var semesters []model.Semester
	if err := db.Order("start_date DESC").Find(&semesters).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch semesters")
	}

	return response.Success(c, semesters)
}

// GetSemester retrieves one semester with its sections
// GET /admin/semesters/:id
func GetSemester(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	semesterID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}

	var semester model.Semester
	err = db.Preload("Sections.Course").
		Preload("Sections.Instructor").
		First(&semester, semesterID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Semester not found")
		}
		return response.InternalServerError(c, "Failed to fetch semester")
	}

	return response.Success(c, semester)
}

// CreateSemester creates a new semester
// POST /admin/semesters
func CreateSemester(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	var req CreateSemesterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	req.Name = validation.SanitizeString(req.Name)

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return response.BadRequest(c, "start_date must be YYYY-MM-DD")
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return response.BadRequest(c, "end_date must be YYYY-MM-DD")
	}
	if !endDate.After(startDate) {
		return response.BadRequest(c, "end_date must be after start_date")
	}

	semester := model.Semester{
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
	}
	if err := db.Create(&semester).Error; err != nil {
		return response.InternalServerError(c, "Failed to create semester")
	}

	return response.Created(c, semester)
}

// UpdateSemester updates a semester's fields
// PUT /admin/semesters/:id
func UpdateSemester(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	semesterID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}

	var req UpdateSemesterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var semester model.Semester
	if err := db.First(&semester, semesterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Semester not found")
		}
		return response.InternalServerError(c, "Failed to fetch semester")
	}

	updates := map[string]interface{}{}
	startDate := semester.StartDate
	endDate := semester.EndDate

	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return response.BadRequest(c, "start_date must be YYYY-MM-DD")
		}
		startDate = parsed
		updates["start_date"] = parsed
	}
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return response.BadRequest(c, "end_date must be YYYY-MM-DD")
		}
		endDate = parsed
		updates["end_date"] = parsed
	}
	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}
	if !endDate.After(startDate) {
		return response.BadRequest(c, "end_date must be after start_date")
	}

	if err := db.Model(&semester).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update semester")
	}

	return response.SuccessWithMessage(c, "Semester updated", semester)
}

// DeleteSemester soft-deletes a semester with no sections
// DELETE /admin/semesters/:id
func DeleteSemester(c *fiber.Ctx, store database.Storage) error {
	db, err := gormDB(c, store)
	if err != nil {
		return err
	}

	semesterID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}

	var sectionCount int64
	if err := db.Model(&model.Section{}).Where("semester_id = ?", semesterID).Count(&sectionCount).Error; err != nil {
		return response.InternalServerError(c, "Failed to check sections")
	}
	if sectionCount > 0 {
		return response.Conflict(c, "Semester still has sections")
	}

	result := db.Delete(&model.Semester{}, semesterID)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete semester")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Semester not found")
	}

	return response.SuccessWithMessage(c, "Semester deleted", nil)
}
