package model

import (
	"time"

	"gorm.io/gorm"
)

// Instructor is the academic profile behind a lecturer account.
type Instructor struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	UserID         uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName       string         `gorm:"not null;type:varchar(100)" json:"full_name"`
	InstructorCode string         `gorm:"uniqueIndex;not null;type:varchar(20)" json:"instructor_code"`
	Department     string         `gorm:"type:varchar(100)" json:"department,omitempty"`
	Email          string         `gorm:"type:varchar(100)" json:"email,omitempty"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Sections []Section `gorm:"foreignKey:InstructorID" json:"sections,omitempty"`
}
