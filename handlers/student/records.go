package student

import (
	"strconv"

	"github.com/academic-system/records-api/model"
	"github.com/academic-system/records-api/services"
	"github.com/academic-system/records-api/utils/middleware"
	"github.com/academic-system/records-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// Schedule returns the student's active enrollments with the section
// schedule details.
func (h *StudentHandler) Schedule(c *fiber.Ctx) error {
	student, ok := middleware.GetStudent(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollments, err := h.enrollments.ActiveEnrollments(c.Context(), student.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load schedule")
	}

	type scheduleEntry struct {
		EnrollmentID uint   `json:"enrollment_id"`
		CourseCode   string `json:"course_code"`
		CourseName   string `json:"course_name"`
		SectionCode  string `json:"section_code"`
		Semester     string `json:"semester"`
		Instructor   string `json:"instructor"`
		ScheduleInfo string `json:"schedule_info"`
	}

	entries := make([]scheduleEntry, 0, len(enrollments))
	for _, enrollment := range enrollments {
		entries = append(entries, scheduleEntry{
			EnrollmentID: enrollment.ID,
			CourseCode:   enrollment.Section.Course.CourseCode,
			CourseName:   enrollment.Section.Course.Name,
			SectionCode:  enrollment.Section.SectionCode,
			Semester:     enrollment.Section.Semester.Name,
			Instructor:   enrollment.Section.Instructor.FullName,
			ScheduleInfo: enrollment.Section.ScheduleInfo,
		})
	}

	return response.Success(c, entries)
}

// GradeEntry is one enrollment with its grade and attendance summary.
type GradeEntry struct {
	EnrollmentID uint                       `json:"enrollment_id"`
	CourseCode   string                     `json:"course_code"`
	CourseName   string                     `json:"course_name"`
	SectionCode  string                     `json:"section_code"`
	Semester     string                     `json:"semester"`
	Status       model.EnrollmentStatus     `json:"status"`
	Grade        *model.Grade               `json:"grade,omitempty"`
	Attendance   services.AttendanceSummary `json:"attendance"`
}

// Grades returns the student's full academic record: every enrollment
// with its grade and attendance rate.
func (h *StudentHandler) Grades(c *fiber.Ctx) error {
	student, ok := middleware.GetStudent(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollments, err := h.enrollments.EnrollmentHistory(c.Context(), student.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load academic record")
	}

	entries := make([]GradeEntry, 0, len(enrollments))
	for _, enrollment := range enrollments {
		summary, err := h.attendance.EnrollmentSummary(c.Context(), &enrollment, enrollment.Section.TotalSessions)
		if err != nil {
			return response.InternalServerError(c, "Failed to load attendance")
		}
		entries = append(entries, GradeEntry{
			EnrollmentID: enrollment.ID,
			CourseCode:   enrollment.Section.Course.CourseCode,
			CourseName:   enrollment.Section.Course.Name,
			SectionCode:  enrollment.Section.SectionCode,
			Semester:     enrollment.Section.Semester.Name,
			Status:       enrollment.Status,
			Grade:        enrollment.Grade,
			Attendance:   summary,
		})
	}

	return response.Success(c, entries)
}

// Attendance returns the student's per-session attendance for one of
// their enrollments.
func (h *StudentHandler) Attendance(c *fiber.Ctx) error {
	student, ok := middleware.GetStudent(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment ID")
	}

	var enrollment model.Enrollment
	err = h.db.WithContext(c.Context()).
		Preload("Section").
		Where("id = ? AND student_id = ?", enrollmentID, student.ID).
		First(&enrollment).Error
	if err != nil {
		return response.NotFound(c, "Enrollment not found")
	}

	records, err := h.attendance.StudentRecords(c.Context(), enrollment.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load attendance")
	}

	summary := services.ComputeAttendanceSummary(enrollment.ID, enrollment.Section.TotalSessions, records)

	return response.Success(c, fiber.Map{
		"summary": summary,
		"records": records,
	})
}
