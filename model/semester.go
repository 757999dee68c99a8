package model

import (
	"time"

	"gorm.io/gorm"
)

// Semester is an academic term. Sections belong to exactly one semester;
// a cron job completes their active enrollments after EndDate passes.
type Semester struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null;type:varchar(20)" json:"name"`
	StartDate time.Time      `gorm:"not null;type:date" json:"start_date"`
	EndDate   time.Time      `gorm:"not null;type:date" json:"end_date"`

	// Relationships
	Sections []Section `gorm:"foreignKey:SemesterID" json:"sections,omitempty"`
}
