package model

import (
	"time"

	"gorm.io/gorm"
)

// EnrollmentStatus is the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentDropped   EnrollmentStatus = "dropped"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// Enrollment is a student's registration in a section. The pair
// (student_id, section_id) is unique for the lifetime of the record:
// dropping keeps the row, and re-enrolling reactivates it in place.
type Enrollment struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `gorm:"index" json:"-"`
	StudentID  uint             `gorm:"not null;uniqueIndex:idx_student_section" json:"student_id"`
	SectionID  uint             `gorm:"not null;index;uniqueIndex:idx_student_section" json:"section_id"`
	EnrollDate time.Time        `gorm:"not null;type:date" json:"enroll_date"`
	Status     EnrollmentStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	// Relationships
	Student     Student      `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Section     Section      `gorm:"foreignKey:SectionID" json:"section,omitempty"`
	Grade       *Grade       `gorm:"foreignKey:EnrollmentID" json:"grade,omitempty"`
	Attendances []Attendance `gorm:"foreignKey:EnrollmentID" json:"-"`
}
