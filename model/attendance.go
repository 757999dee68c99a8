package model

import (
	"time"

	"gorm.io/gorm"
)

// AttendanceStatus is the per-session presence state.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// ValidAttendanceStatus reports whether s is a known presence state.
func ValidAttendanceStatus(s AttendanceStatus) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// Attendance is one presence record for one enrollment in one session.
// (enrollment_id, session_number) is unique; marking a session again
// overwrites in place. SectionID is denormalized for report queries.
type Attendance struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `gorm:"index" json:"-"`
	EnrollmentID   uint             `gorm:"not null;uniqueIndex:idx_enrollment_session" json:"enrollment_id"`
	SectionID      uint             `gorm:"not null;index" json:"section_id"`
	SessionNumber  int              `gorm:"not null;uniqueIndex:idx_enrollment_session" json:"session_number"`
	Status         AttendanceStatus `gorm:"type:varchar(10);not null;default:'absent'" json:"status"`
	AttendanceDate time.Time        `gorm:"not null;type:date" json:"attendance_date"`
	Notes          string           `gorm:"type:varchar(255)" json:"notes,omitempty"`

	// Relationships
	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
	Section    Section    `gorm:"foreignKey:SectionID" json:"-"`
}
