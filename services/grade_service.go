package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/academic-system/records-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrScoreOutOfRange   = errors.New("score must be between 0 and 10")
	ErrEnrollmentMissing = errors.New("enrollment not found")
	ErrNotSectionOwner   = errors.New("section is not taught by this instructor")
)

// GradeService manages grade submission and reporting. Each enrollment
// carries at most one grade; resubmission overwrites it.
type GradeService struct {
	db           *gorm.DB
	notification *NotificationService
}

// NewGradeService creates a new grade service
func NewGradeService(db *gorm.DB, notification *NotificationService) *GradeService {
	return &GradeService{db: db, notification: notification}
}

// ValidateScore checks the 0-10 inclusive score range.
func ValidateScore(score float64) error {
	if score < 0 || score > 10 {
		return ErrScoreOutOfRange
	}
	return nil
}

// LetterForScore maps a 10-point score to its letter grade.
func LetterForScore(score float64) string {
	switch {
	case score >= 8.5:
		return "A"
	case score >= 8.0:
		return "B+"
	case score >= 7.0:
		return "B"
	case score >= 6.5:
		return "C+"
	case score >= 5.5:
		return "C"
	case score >= 4.0:
		return "D"
	default:
		return "F"
	}
}

// SubmitGrade records or overwrites the grade for an enrollment. The
// grader must be the instructor assigned to the enrollment's section.
// The write is an atomic upsert keyed by enrollment_id, so concurrent
// submissions cannot produce two grade rows.
func (s *GradeService) SubmitGrade(ctx context.Context, instructor *model.Instructor, enrollmentID uint, score float64, letter string) (*model.Grade, error) {
	if err := ValidateScore(score); err != nil {
		return nil, err
	}
	if letter == "" {
		letter = LetterForScore(score)
	}

	var enrollment model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Section").Preload("Student").
		First(&enrollment, enrollmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentMissing
		}
		return nil, err
	}

	if enrollment.Section.InstructorID != instructor.ID {
		return nil, ErrNotSectionOwner
	}

	grade := model.Grade{
		EnrollmentID: enrollmentID,
		Score:        score,
		GradeLetter:  letter,
		SubmittedBy:  instructor.ID,
		SubmittedAt:  time.Now(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "grade_letter", "submitted_by", "submitted_at", "updated_at"}),
	}).Create(&grade).Error
	if err != nil {
		return nil, err
	}

	if s.notification != nil {
		s.notification.NotifyGrade(ctx, &enrollment, grade.GradeLetter)
	}

	return &grade, nil
}

// StudentAverage returns the average score across a student's graded
// enrollments and the number of grades behind it. No grades yet means
// a zero average.
func (s *GradeService) StudentAverage(ctx context.Context, studentID uint) (float64, int64, error) {
	var row struct {
		Average sql.NullFloat64
		Graded  int64
	}
	err := s.db.WithContext(ctx).Model(&model.Grade{}).
		Joins("JOIN enrollments ON enrollments.id = grades.enrollment_id").
		Where("enrollments.student_id = ?", studentID).
		Select("AVG(grades.score) AS average, COUNT(*) AS graded").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Average.Float64, row.Graded, nil
}

// SectionGrades returns the active enrollments of a section with any
// grades attached. The instructor must own the section.
func (s *GradeService) SectionGrades(ctx context.Context, instructor *model.Instructor, sectionID uint) ([]model.Enrollment, error) {
	if err := s.checkOwnership(ctx, instructor, sectionID); err != nil {
		return nil, err
	}

	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Grade").
		Where("section_id = ? AND status = ?", sectionID, model.EnrollmentActive).
		Order("id").
		Find(&enrollments).Error
	return enrollments, err
}

// GradeReport holds the aggregate grade picture of one section.
type GradeReport struct {
	SectionID    uint             `json:"section_id"`
	Enrolled     int              `json:"enrolled"`
	Graded       int              `json:"graded"`
	AverageScore float64          `json:"average_score"`
	Distribution map[string]int64 `json:"distribution"`
}

// SectionReport aggregates grades for a section the instructor owns.
func (s *GradeService) SectionReport(ctx context.Context, instructor *model.Instructor, sectionID uint) (*GradeReport, error) {
	enrollments, err := s.SectionGrades(ctx, instructor, sectionID)
	if err != nil {
		return nil, err
	}

	report := &GradeReport{
		SectionID:    sectionID,
		Enrolled:     len(enrollments),
		Distribution: make(map[string]int64),
	}

	var sum float64
	for _, enrollment := range enrollments {
		if enrollment.Grade == nil {
			continue
		}
		report.Graded++
		sum += enrollment.Grade.Score
		report.Distribution[enrollment.Grade.GradeLetter]++
	}
	if report.Graded > 0 {
		report.AverageScore = sum / float64(report.Graded)
	}

	return report, nil
}

func (s *GradeService) checkOwnership(ctx context.Context, instructor *model.Instructor, sectionID uint) error {
	var section model.Section
	if err := s.db.WithContext(ctx).First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectionNotFound
		}
		return err
	}
	if section.InstructorID != instructor.ID {
		return ErrNotSectionOwner
	}
	return nil
}
