package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/academic-system/records-api/services/spaces"
)

const exportURLExpiry = 24 * time.Hour

// ExportService renders admin reports as CSV and uploads them to the
// Spaces bucket, returning a time-limited download link.
type ExportService struct {
	reports *ReportService
	spaces  *spaces.Client
}

// NewExportService creates a new export service. A nil spaces client
// disables exports.
func NewExportService(reports *ReportService, spacesClient *spaces.Client) *ExportService {
	return &ExportService{reports: reports, spaces: spacesClient}
}

// Enabled reports whether an upload target is configured.
func (s *ExportService) Enabled() bool {
	return s.spaces != nil
}

// ExportResult describes an uploaded report.
type ExportResult struct {
	Key         string `json:"key"`
	DownloadURL string `json:"download_url"`
	Rows        int    `json:"rows"`
}

// ExportGradeDistribution uploads the grade distribution as CSV.
func (s *ExportService) ExportGradeDistribution(ctx context.Context, semesterID uint) (*ExportResult, error) {
	distribution, err := s.reports.GradeDistribution(ctx, semesterID)
	if err != nil {
		return nil, err
	}

	records := [][]string{{"grade_letter", "count", "avg_score"}}
	for _, row := range distribution {
		records = append(records, []string{
			row.GradeLetter,
			strconv.FormatInt(row.Count, 10),
			strconv.FormatFloat(row.AvgScore, 'f', 2, 64),
		})
	}

	return s.upload(ctx, "grade-distribution", records)
}

// ExportSectionOccupancy uploads the per-section occupancy report as CSV.
func (s *ExportService) ExportSectionOccupancy(ctx context.Context, semesterID uint) (*ExportResult, error) {
	occupancy, err := s.reports.SectionOccupancy(ctx, semesterID)
	if err != nil {
		return nil, err
	}

	records := [][]string{{"section_id", "section_code", "course_code", "course_name", "semester", "enrolled", "max_capacity", "fill_rate"}}
	for _, row := range occupancy {
		records = append(records, []string{
			strconv.FormatUint(uint64(row.SectionID), 10),
			row.SectionCode,
			row.CourseCode,
			row.CourseName,
			row.Semester,
			strconv.FormatInt(row.Enrolled, 10),
			strconv.Itoa(row.MaxCapacity),
			strconv.FormatFloat(row.FillRate, 'f', 3, 64),
		})
	}

	return s.upload(ctx, "section-occupancy", records)
}

// ExportAttendanceOverview uploads the per-section attendance overview as CSV.
func (s *ExportService) ExportAttendanceOverview(ctx context.Context, semesterID uint) (*ExportResult, error) {
	overview, err := s.reports.AttendanceOverview(ctx, semesterID)
	if err != nil {
		return nil, err
	}

	records := [][]string{{"section_id", "section_code", "course_code", "total_sessions", "records", "present_count", "presence_rate"}}
	for _, row := range overview {
		records = append(records, []string{
			strconv.FormatUint(uint64(row.SectionID), 10),
			row.SectionCode,
			row.CourseCode,
			strconv.Itoa(row.TotalSessions),
			strconv.FormatInt(row.Records, 10),
			strconv.FormatInt(row.PresentCount, 10),
			strconv.FormatFloat(row.PresenceRate, 'f', 3, 64),
		})
	}

	return s.upload(ctx, "attendance-overview", records)
}

func (s *ExportService) upload(ctx context.Context, reportName string, records [][]string) (*ExportResult, error) {
	if s.spaces == nil {
		return nil, fmt.Errorf("report export is not configured")
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to render CSV: %w", err)
	}

	key := fmt.Sprintf("reports/%s-%s.csv", reportName, time.Now().UTC().Format("20060102-150405"))
	if _, err := s.spaces.UploadBytes(ctx, key, buf.Bytes(), "text/csv"); err != nil {
		return nil, err
	}

	url, err := s.spaces.PresignDownload(key, exportURLExpiry)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		Key:         key,
		DownloadURL: url,
		Rows:        len(records) - 1,
	}, nil
}
