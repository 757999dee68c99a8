package services

import (
	"testing"

	"github.com/academic-system/records-api/model"
)

func TestComputeAttendanceSummary(t *testing.T) {
	records := []model.Attendance{
		{EnrollmentID: 1, SessionNumber: 1, Status: model.AttendancePresent},
		{EnrollmentID: 1, SessionNumber: 2, Status: model.AttendancePresent},
		{EnrollmentID: 1, SessionNumber: 3, Status: model.AttendanceAbsent},
		{EnrollmentID: 1, SessionNumber: 4, Status: model.AttendanceLate},
		{EnrollmentID: 1, SessionNumber: 5, Status: model.AttendanceExcused},
		// Another student's records must not leak into the summary.
		{EnrollmentID: 2, SessionNumber: 1, Status: model.AttendancePresent},
	}

	summary := ComputeAttendanceSummary(1, 10, records)

	if summary.EnrollmentID != 1 {
		t.Errorf("EnrollmentID = %d, want 1", summary.EnrollmentID)
	}
	if summary.Recorded != 5 {
		t.Errorf("Recorded = %d, want 5", summary.Recorded)
	}
	if summary.Present != 2 {
		t.Errorf("Present = %d, want 2", summary.Present)
	}
	if summary.Absent != 1 {
		t.Errorf("Absent = %d, want 1", summary.Absent)
	}
	if summary.Late != 1 {
		t.Errorf("Late = %d, want 1", summary.Late)
	}
	if summary.Excused != 1 {
		t.Errorf("Excused = %d, want 1", summary.Excused)
	}
	// Rate is presents over scheduled sessions, not recorded ones.
	if summary.Rate != 0.2 {
		t.Errorf("Rate = %v, want 0.2", summary.Rate)
	}
}

func TestComputeAttendanceSummaryNoRecords(t *testing.T) {
	summary := ComputeAttendanceSummary(7, 15, nil)

	if summary.Recorded != 0 || summary.Present != 0 {
		t.Errorf("empty summary has Recorded=%d Present=%d, want zeros", summary.Recorded, summary.Present)
	}
	if summary.Rate != 0 {
		t.Errorf("Rate = %v, want 0", summary.Rate)
	}
	if summary.TotalSessions != 15 {
		t.Errorf("TotalSessions = %d, want 15", summary.TotalSessions)
	}
}

func TestComputeAttendanceSummaryZeroSessions(t *testing.T) {
	records := []model.Attendance{
		{EnrollmentID: 3, SessionNumber: 1, Status: model.AttendancePresent},
	}

	// A section with no scheduled sessions must not divide by zero.
	summary := ComputeAttendanceSummary(3, 0, records)
	if summary.Rate != 0 {
		t.Errorf("Rate = %v, want 0", summary.Rate)
	}
	if summary.Present != 1 {
		t.Errorf("Present = %d, want 1", summary.Present)
	}
}
