package model

import (
	"time"

	"gorm.io/gorm"
)

// Section is one scheduled offering of a course in a semester, taught by one
// instructor. (course_id, section_code, semester_id) is unique. A section
// cannot be deleted while an active enrollment references it.
type Section struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID      uint           `gorm:"not null;index;uniqueIndex:idx_section_offering" json:"course_id"`
	InstructorID  uint           `gorm:"not null;index" json:"instructor_id"`
	SemesterID    uint           `gorm:"not null;index;uniqueIndex:idx_section_offering" json:"semester_id"`
	SectionCode   string         `gorm:"not null;type:varchar(10);uniqueIndex:idx_section_offering" json:"section_code"`
	ScheduleInfo  string         `gorm:"type:varchar(255)" json:"schedule_info,omitempty"`
	MaxCapacity   int            `gorm:"not null;default:50" json:"max_capacity"`
	TotalSessions int            `gorm:"not null;default:15" json:"total_sessions"`

	// Relationships
	Course      Course       `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Instructor  Instructor   `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Semester    Semester     `gorm:"foreignKey:SemesterID" json:"semester,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:SectionID" json:"enrollments,omitempty"`
}
