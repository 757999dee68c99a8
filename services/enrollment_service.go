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
	ErrSectionNotFound = errors.New("section not found")
	ErrSectionFull     = errors.New("section is at full capacity")
	ErrAlreadyEnrolled = errors.New("already enrolled in this section")
	ErrNotEnrolled     = errors.New("no active enrollment in this section")
	ErrSemesterEnded   = errors.New("semester has already ended")
)

// EnrollmentService manages student enrollment in sections.
type EnrollmentService struct {
	db           *gorm.DB
	notification *NotificationService
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(db *gorm.DB, notification *NotificationService) *EnrollmentService {
	return &EnrollmentService{db: db, notification: notification}
}

// Enroll registers a student in a section. The section row is locked
// for the duration of the transaction so the capacity check and the
// insert are atomic under concurrent requests. A previously dropped
// enrollment for the same section is reactivated in place rather than
// duplicated.
func (s *EnrollmentService) Enroll(ctx context.Context, student *model.Student, sectionID uint) (*model.Enrollment, error) {
	var enrollment *model.Enrollment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var section model.Section
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Semester").Preload("Course").
			First(&section, sectionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSectionNotFound
			}
			return err
		}

		if time.Now().After(section.Semester.EndDate.AddDate(0, 0, 1)) {
			return ErrSemesterEnded
		}

		var existing model.Enrollment
		err := tx.Where("student_id = ? AND section_id = ?", student.ID, sectionID).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && existing.Status == model.EnrollmentActive {
			return ErrAlreadyEnrolled
		}

		var activeCount int64
		if err := tx.Model(&model.Enrollment{}).
			Where("section_id = ? AND status = ?", sectionID, model.EnrollmentActive).
			Count(&activeCount).Error; err != nil {
			return err
		}
		if activeCount >= int64(section.MaxCapacity) {
			return ErrSectionFull
		}

		if existing.ID != 0 {
			// Reactivate the dropped enrollment in place.
			existing.Status = model.EnrollmentActive
			existing.EnrollDate = time.Now()
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			enrollment = &existing
			return nil
		}

		created := model.Enrollment{
			StudentID:  student.ID,
			SectionID:  sectionID,
			EnrollDate: time.Now(),
			Status:     model.EnrollmentActive,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		enrollment = &created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notification != nil {
		s.notification.NotifyEnrollment(ctx, student, enrollment.SectionID, "enrolled")
	}

	return enrollment, nil
}

// Drop marks an active enrollment as dropped. Grade and attendance
// rows tied to the enrollment are kept.
func (s *EnrollmentService) Drop(ctx context.Context, student *model.Student, sectionID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("student_id = ? AND section_id = ? AND status = ?",
			student.ID, sectionID, model.EnrollmentActive).
			First(&enrollment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotEnrolled
			}
			return err
		}

		enrollment.Status = model.EnrollmentDropped
		return tx.Save(&enrollment).Error
	})
	if err != nil {
		return nil, err
	}

	if s.notification != nil {
		s.notification.NotifyEnrollment(ctx, student, sectionID, "dropped")
	}

	return &enrollment, nil
}

// ActiveEnrollments returns the student's active enrollments with the
// section, course, semester and instructor preloaded.
func (s *EnrollmentService) ActiveEnrollments(ctx context.Context, studentID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Section.Course").
		Preload("Section.Semester").
		Preload("Section.Instructor").
		Where("student_id = ? AND status = ?", studentID, model.EnrollmentActive).
		Order("id").
		Find(&enrollments).Error
	return enrollments, err
}

// EnrollmentHistory returns every enrollment the student has, dropped
// and completed included, with grades preloaded.
func (s *EnrollmentService) EnrollmentHistory(ctx context.Context, studentID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Section.Course").
		Preload("Section.Semester").
		Preload("Grade").
		Where("student_id = ?", studentID).
		Order("id").
		Find(&enrollments).Error
	return enrollments, err
}

// SectionRoster returns the active enrollments of a section with the
// student rows preloaded.
func (s *EnrollmentService) SectionRoster(ctx context.Context, sectionID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Student").
		Where("section_id = ? AND status = ?", sectionID, model.EnrollmentActive).
		Order("id").
		Find(&enrollments).Error
	return enrollments, err
}

// CountActive returns the number of active enrollments in a section.
func (s *EnrollmentService) CountActive(ctx context.Context, sectionID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("section_id = ? AND status = ?", sectionID, model.EnrollmentActive).
		Count(&count).Error
	return count, err
}

// CompleteSemesterEnrollments flips every active enrollment in ended
// semesters to completed. Returns the number of rows updated.
func (s *EnrollmentService) CompleteSemesterEnrollments(ctx context.Context, asOf time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("status = ?", model.EnrollmentActive).
		Where("section_id IN (?)", s.db.Model(&model.Section{}).
			Select("sections.id").
			Joins("JOIN semesters ON semesters.id = sections.semester_id").
			Where("semesters.end_date < ?", asOf)).
		Update("status", model.EnrollmentCompleted)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to complete enrollments: %w", result.Error)
	}
	return result.RowsAffected, nil
}
