package model

import (
	"time"

	"gorm.io/gorm"
)

// Student is the academic profile behind a student account. Students are
// never hard-deleted; admins flip IsActive instead.
type Student struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	UserID      uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName    string         `gorm:"not null;type:varchar(100)" json:"full_name"`
	StudentCode string         `gorm:"uniqueIndex;not null;type:varchar(20)" json:"student_code"`
	DateOfBirth *time.Time     `gorm:"type:date" json:"date_of_birth,omitempty"`
	Email       string         `gorm:"type:varchar(100)" json:"email,omitempty"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`

	// Relationships
	User        User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Enrollments []Enrollment `gorm:"foreignKey:StudentID" json:"enrollments,omitempty"`
}
