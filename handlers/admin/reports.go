package admin

import (
	"strconv"

	"github.com/academic-system/records-api/services"
	"github.com/academic-system/records-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// ReportsHandler serves the admin report and export endpoints, backed
// by the raw-SQL reporting store.
type ReportsHandler struct {
	reports *services.ReportService
	exports *services.ExportService
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(reports *services.ReportService, exports *services.ExportService) *ReportsHandler {
	return &ReportsHandler{reports: reports, exports: exports}
}

func semesterFilter(c *fiber.Ctx) uint {
	semesterID, err := strconv.Atoi(c.Query("semester_id", "0"))
	if err != nil || semesterID < 0 {
		return 0
	}
	return uint(semesterID)
}

// Dashboard returns the headline totals
// GET /admin/dashboard
func (h *ReportsHandler) Dashboard(c *fiber.Ctx) error {
	counts, err := h.reports.Dashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}
	return response.Success(c, counts)
}

// GradeDistribution returns the school-wide letter distribution
// GET /admin/reports/grades
func (h *ReportsHandler) GradeDistribution(c *fiber.Ctx) error {
	distribution, err := h.reports.GradeDistribution(c.Context(), semesterFilter(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to load grade distribution")
	}
	return response.Success(c, distribution)
}

// SectionOccupancy returns per-section enrollment against capacity
// GET /admin/reports/occupancy
func (h *ReportsHandler) SectionOccupancy(c *fiber.Ctx) error {
	occupancy, err := h.reports.SectionOccupancy(c.Context(), semesterFilter(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to load occupancy report")
	}
	return response.Success(c, occupancy)
}

// AttendanceOverview returns per-section recorded attendance totals
// GET /admin/reports/attendance
func (h *ReportsHandler) AttendanceOverview(c *fiber.Ctx) error {
	overview, err := h.reports.AttendanceOverview(c.Context(), semesterFilter(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to load attendance overview")
	}
	return response.Success(c, overview)
}

// Export renders a report as CSV, uploads it and returns a download link
// POST /admin/reports/:name/export
func (h *ReportsHandler) Export(c *fiber.Ctx) error {
	if h.exports == nil || !h.exports.Enabled() {
		return response.Error(c, fiber.StatusNotImplemented, "Report export is not configured", "EXPORT_DISABLED")
	}

	semesterID := semesterFilter(c)

	var result *services.ExportResult
	var err error
	switch c.Params("name") {
	case "grades":
		result, err = h.exports.ExportGradeDistribution(c.Context(), semesterID)
	case "occupancy":
		result, err = h.exports.ExportSectionOccupancy(c.Context(), semesterID)
	case "attendance":
		result, err = h.exports.ExportAttendanceOverview(c.Context(), semesterID)
	default:
		return response.BadRequest(c, "Unknown report: use grades, occupancy or attendance")
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to export report")
	}

	return response.SuccessWithMessage(c, "Report exported", result)
}
