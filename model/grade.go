package model

import (
	"time"

	"gorm.io/gorm"
)

// Grade holds the single score/letter outcome for one enrollment. Exactly
// one row per enrollment; resubmission overwrites it, no history is kept.
type Grade struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	EnrollmentID uint           `gorm:"uniqueIndex;not null" json:"enrollment_id"`
	Score        float64        `gorm:"not null;type:numeric(4,2)" json:"score"`
	GradeLetter  string         `gorm:"type:varchar(3)" json:"grade_letter"`
	SubmittedBy  uint           `gorm:"not null" json:"submitted_by"`
	SubmittedAt  time.Time      `gorm:"not null" json:"submitted_at"`

	// Relationships
	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
	Submitter  Instructor `gorm:"foreignKey:SubmittedBy" json:"-"`
}
