package services

import (
	"context"

	"github.com/academic-system/records-api/database"
)

// ReportService exposes the school-wide aggregates used by the admin
// dashboard and report views. The heavy lifting is raw SQL in the
// reporting store.
type ReportService struct {
	store *database.PostgreSQLStore
}

// NewReportService creates a new report service
func NewReportService(store *database.PostgreSQLStore) *ReportService {
	return &ReportService{store: store}
}

// Dashboard returns the headline totals.
func (s *ReportService) Dashboard(ctx context.Context) (*database.DashboardCounts, error) {
	return s.store.DashboardCounts(ctx)
}

// GradeDistribution returns the school-wide letter distribution,
// optionally scoped to one semester.
func (s *ReportService) GradeDistribution(ctx context.Context, semesterID uint) ([]database.GradeDistributionRow, error) {
	return s.store.GradeDistribution(ctx, semesterID)
}

// SectionOccupancy returns per-section enrollment against capacity.
func (s *ReportService) SectionOccupancy(ctx context.Context, semesterID uint) ([]database.SectionOccupancyRow, error) {
	return s.store.SectionOccupancy(ctx, semesterID)
}

// AttendanceOverview returns per-section recorded attendance totals.
func (s *ReportService) AttendanceOverview(ctx context.Context, semesterID uint) ([]database.SectionAttendanceRow, error) {
	return s.store.SectionAttendanceOverview(ctx, semesterID)
}
