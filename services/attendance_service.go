package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/academic-system/records-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSessionOutOfRange    = errors.New("session number is out of range for this section")
	ErrInvalidStatus        = errors.New("invalid attendance status")
	ErrEnrollmentNotInClass = errors.New("enrollment does not belong to this section")
)

// AttendanceService manages per-session attendance records.
type AttendanceService struct {
	db *gorm.DB
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{db: db}
}

// SessionMark is one student's state in a marking request.
type SessionMark struct {
	EnrollmentID uint                   `json:"enrollment_id" validate:"required"`
	Status       model.AttendanceStatus `json:"status" validate:"required,oneof=present absent late excused"`
	Notes        string                 `json:"notes" validate:"max=255"`
}

// MarkSession records attendance for one session of a section. Every
// active enrollment not named in marks is recorded as absent, so a
// marked session is always complete. Writes are upserts keyed by
// (enrollment_id, session_number): re-marking a session overwrites the
// previous records.
func (s *AttendanceService) MarkSession(ctx context.Context, instructor *model.Instructor, sectionID uint, sessionNumber int, date time.Time, marks []SessionMark) ([]model.Attendance, error) {
	var section model.Section
	if err := s.db.WithContext(ctx).First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	if section.InstructorID != instructor.ID {
		return nil, ErrNotSectionOwner
	}
	if sessionNumber < 1 || sessionNumber > section.TotalSessions {
		return nil, ErrSessionOutOfRange
	}

	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Where("section_id = ? AND status = ?", sectionID, model.EnrollmentActive).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	enrolled := make(map[uint]bool, len(enrollments))
	for _, enrollment := range enrollments {
		enrolled[enrollment.ID] = true
	}

	statusByEnrollment := make(map[uint]SessionMark, len(marks))
	for _, mark := range marks {
		if !model.ValidAttendanceStatus(mark.Status) {
			return nil, ErrInvalidStatus
		}
		if !enrolled[mark.EnrollmentID] {
			return nil, fmt.Errorf("%w: enrollment %d", ErrEnrollmentNotInClass, mark.EnrollmentID)
		}
		statusByEnrollment[mark.EnrollmentID] = mark
	}

	if date.IsZero() {
		date = time.Now()
	}

	records := make([]model.Attendance, 0, len(enrollments))
	for _, enrollment := range enrollments {
		record := model.Attendance{
			EnrollmentID:   enrollment.ID,
			SectionID:      sectionID,
			SessionNumber:  sessionNumber,
			Status:         model.AttendanceAbsent,
			AttendanceDate: date,
		}
		if mark, ok := statusByEnrollment[enrollment.ID]; ok {
			record.Status = mark.Status
			record.Notes = mark.Notes
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return records, nil
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "session_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "notes", "attendance_date", "updated_at"}),
	}).Create(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// SessionRecords returns the attendance rows of one session of a
// section the instructor owns, with student rows preloaded.
func (s *AttendanceService) SessionRecords(ctx context.Context, instructor *model.Instructor, sectionID uint, sessionNumber int) ([]model.Attendance, error) {
	var section model.Section
	if err := s.db.WithContext(ctx).First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	if section.InstructorID != instructor.ID {
		return nil, ErrNotSectionOwner
	}
	if sessionNumber < 1 || sessionNumber > section.TotalSessions {
		return nil, ErrSessionOutOfRange
	}

	var records []model.Attendance
	err := s.db.WithContext(ctx).
		Preload("Enrollment.Student").
		Where("section_id = ? AND session_number = ?", sectionID, sessionNumber).
		Order("enrollment_id").
		Find(&records).Error
	return records, err
}

// AttendanceSummary is the aggregated presence picture for one
// enrollment. Rate is presents over the section's scheduled sessions,
// so unmarked sessions count against the student.
type AttendanceSummary struct {
	EnrollmentID  uint    `json:"enrollment_id"`
	TotalSessions int     `json:"total_sessions"`
	Recorded      int     `json:"recorded"`
	Present       int     `json:"present"`
	Absent        int     `json:"absent"`
	Late          int     `json:"late"`
	Excused       int     `json:"excused"`
	Rate          float64 `json:"attendance_rate"`
}

// ComputeAttendanceSummary folds attendance records into a summary for
// one enrollment against the section's scheduled session count.
func ComputeAttendanceSummary(enrollmentID uint, totalSessions int, records []model.Attendance) AttendanceSummary {
	summary := AttendanceSummary{
		EnrollmentID:  enrollmentID,
		TotalSessions: totalSessions,
	}

	for _, record := range records {
		if record.EnrollmentID != enrollmentID {
			continue
		}
		summary.Recorded++
		switch record.Status {
		case model.AttendancePresent:
			summary.Present++
		case model.AttendanceAbsent:
			summary.Absent++
		case model.AttendanceLate:
			summary.Late++
		case model.AttendanceExcused:
			summary.Excused++
		}
	}

	if totalSessions > 0 {
		summary.Rate = float64(summary.Present) / float64(totalSessions)
	}

	return summary
}

// EnrollmentSummary loads an enrollment's attendance records and
// aggregates them.
func (s *AttendanceService) EnrollmentSummary(ctx context.Context, enrollment *model.Enrollment, totalSessions int) (AttendanceSummary, error) {
	var records []model.Attendance
	err := s.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollment.ID).
		Find(&records).Error
	if err != nil {
		return AttendanceSummary{}, err
	}
	return ComputeAttendanceSummary(enrollment.ID, totalSessions, records), nil
}

// SectionSummaries aggregates attendance for every active enrollment
// of a section the instructor owns.
func (s *AttendanceService) SectionSummaries(ctx context.Context, instructor *model.Instructor, sectionID uint) (map[uint]AttendanceSummary, error) {
	var section model.Section
	if err := s.db.WithContext(ctx).First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	if section.InstructorID != instructor.ID {
		return nil, ErrNotSectionOwner
	}

	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Where("section_id = ? AND status = ?", sectionID, model.EnrollmentActive).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	var records []model.Attendance
	if err := s.db.WithContext(ctx).Where("section_id = ?", sectionID).Find(&records).Error; err != nil {
		return nil, err
	}

	summaries := make(map[uint]AttendanceSummary, len(enrollments))
	for _, enrollment := range enrollments {
		summaries[enrollment.ID] = ComputeAttendanceSummary(enrollment.ID, section.TotalSessions, records)
	}
	return summaries, nil
}

// StudentRecords returns a student's attendance rows for one of their
// enrollments, ordered by session.
func (s *AttendanceService) StudentRecords(ctx context.Context, enrollmentID uint) ([]model.Attendance, error) {
	var records []model.Attendance
	err := s.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("session_number").
		Find(&records).Error
	return records, err
}
