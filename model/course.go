package model

import (
	"time"

	"gorm.io/gorm"
)

// Course is a catalog entry (e.g., "CS101 Intro to Programming"). A course
// cannot be deleted while any section references it.
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	CourseCode  string         `gorm:"uniqueIndex;not null;type:varchar(20)" json:"course_code"`
	Name        string         `gorm:"not null;type:varchar(100)" json:"name"`
	Credits     int            `gorm:"not null" json:"credits"`
	Description string         `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Sections []Section `gorm:"foreignKey:CourseID" json:"sections,omitempty"`
}
