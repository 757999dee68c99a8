package middleware

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/academic-system/records-api/model"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminAudit records an audit log entry for admin mutations. It runs
// after the auth middleware, captures the prior state of the target
// record for updates and deletes, and writes the log entry once the
// handler has finished.
func AdminAudit(db *gorm.DB, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin, ok := GetUser(c)
		if !ok {
			return c.Next()
		}

		var resourceID uint
		if id := c.Params("id"); id != "" {
			if parsedID, err := strconv.ParseUint(id, 10, 32); err == nil {
				resourceID = uint(parsedID)
			}
		}

		var oldValue, newValue []byte

		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut || c.Method() == fiber.MethodPatch {
			newValue = redactBody(c.Body())
		}

		// Snapshot current state before updates and deletes.
		if resourceID > 0 && c.Method() != fiber.MethodPost && c.Method() != fiber.MethodGet {
			if snapshot := snapshotResource(db, resource, resourceID); snapshot != nil {
				oldValue, _ = json.Marshal(snapshot)
			}
		}

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		entry := model.AdminAuditLog{
			AdminID:     admin.ID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID,
			StatusCode:  status,
			OldValue:    datatypes.JSON(oldValue),
			NewValue:    datatypes.JSON(newValue),
			IPAddress:   c.IP(),
			UserAgent:   c.Get("User-Agent"),
			Description: c.Method() + " " + c.Path(),
		}
		db.Create(&entry)

		return err
	}
}

// Credential fields never belong in the audit table, even inside a
// captured request body.
var sensitiveBodyFields = []string{"password", "current_password", "new_password"}

// redactBody returns the JSON object body with credential fields
// removed. Non-object bodies are dropped entirely.
func redactBody(body []byte) []byte {
	if !json.Valid(body) {
		return nil
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	for _, field := range sensitiveBodyFields {
		delete(payload, field)
	}
	redacted, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return redacted
}

func snapshotResource(db *gorm.DB, resource string, id uint) interface{} {
	switch resource {
	case "students":
		var student model.Student
		if err := db.First(&student, id).Error; err == nil {
			return student
		}
	case "instructors":
		var instructor model.Instructor
		if err := db.First(&instructor, id).Error; err == nil {
			return instructor
		}
	case "courses":
		var course model.Course
		if err := db.First(&course, id).Error; err == nil {
			return course
		}
	case "semesters":
		var semester model.Semester
		if err := db.First(&semester, id).Error; err == nil {
			return semester
		}
	case "sections":
		var section model.Section
		if err := db.First(&section, id).Error; err == nil {
			return section
		}
	}
	return nil
}
