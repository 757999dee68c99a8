package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/academic-system/records-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB connects to the database named by TEST_DATABASE_DSN and
// runs migrations. Tests that call it are skipped when the variable is
// unset.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("Skipping integration test. Set TEST_DATABASE_DSN to run")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Student{},
		&model.Instructor{},
		&model.Course{},
		&model.Semester{},
		&model.Section{},
		&model.Enrollment{},
		&model.Grade{},
		&model.Attendance{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

type testFixture struct {
	student    *model.Student
	student2   *model.Student
	instructor *model.Instructor
	section    *model.Section
	semester   *model.Semester
}

// seedFixture creates a fresh instructor, two students and one section
// with the given capacity. Suffixed identifiers keep runs independent
// of prior test data.
func seedFixture(t *testing.T, db *gorm.DB, capacity int) *testFixture {
	t.Helper()

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	makeUser := func(role string) *model.User {
		user := &model.User{
			Username:     fmt.Sprintf("%s-%s-%d", role, suffix, time.Now().UnixNano()),
			PasswordHash: "not-a-real-hash",
			Role:         role,
		}
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("Failed to create %s user: %v", role, err)
		}
		return user
	}

	student := &model.Student{
		UserID:      makeUser(model.RoleStudent).ID,
		FullName:    "Test Student",
		StudentCode: "STU-" + suffix,
		IsActive:    true,
	}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}

	student2 := &model.Student{
		UserID:      makeUser(model.RoleStudent).ID,
		FullName:    "Second Student",
		StudentCode: "STU2-" + suffix,
		IsActive:    true,
	}
	if err := db.Create(student2).Error; err != nil {
		t.Fatalf("Failed to create second student: %v", err)
	}

	instructor := &model.Instructor{
		UserID:         makeUser(model.RoleLecturer).ID,
		FullName:       "Test Instructor",
		InstructorCode: "INS-" + suffix,
		IsActive:       true,
	}
	if err := db.Create(instructor).Error; err != nil {
		t.Fatalf("Failed to create instructor: %v", err)
	}

	course := &model.Course{
		CourseCode: "TST-" + suffix,
		Name:       "Test Course",
		Credits:    3,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}

	semester := &model.Semester{
		Name:      "Test Term",
		StartDate: time.Now().AddDate(0, -1, 0),
		EndDate:   time.Now().AddDate(0, 2, 0),
	}
	if err := db.Create(semester).Error; err != nil {
		t.Fatalf("Failed to create semester: %v", err)
	}

	section := &model.Section{
		CourseID:      course.ID,
		InstructorID:  instructor.ID,
		SemesterID:    semester.ID,
		SectionCode:   "A",
		MaxCapacity:   capacity,
		TotalSessions: 10,
	}
	if err := db.Create(section).Error; err != nil {
		t.Fatalf("Failed to create section: %v", err)
	}

	return &testFixture{
		student:    student,
		student2:   student2,
		instructor: instructor,
		section:    section,
		semester:   semester,
	}
}

func TestEnrollCapacityAndReactivation(t *testing.T) {
	db := openTestDB(t)
	fx := seedFixture(t, db, 1)
	svc := NewEnrollmentService(db, nil)
	ctx := context.Background()

	first, err := svc.Enroll(ctx, fx.student, fx.section.ID)
	if err != nil {
		t.Fatalf("first Enroll failed: %v", err)
	}
	if first.Status != model.EnrollmentActive {
		t.Errorf("Status = %q, want active", first.Status)
	}

	if _, err := svc.Enroll(ctx, fx.student, fx.section.ID); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Errorf("re-enroll while active = %v, want ErrAlreadyEnrolled", err)
	}

	// Capacity is 1, so the second student is turned away.
	if _, err := svc.Enroll(ctx, fx.student2, fx.section.ID); !errors.Is(err, ErrSectionFull) {
		t.Errorf("Enroll into full section = %v, want ErrSectionFull", err)
	}

	if _, err := svc.Drop(ctx, fx.student, fx.section.ID); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if _, err := svc.Drop(ctx, fx.student, fx.section.ID); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("Drop without active enrollment = %v, want ErrNotEnrolled", err)
	}

	// Dropping freed the seat.
	if _, err := svc.Enroll(ctx, fx.student2, fx.section.ID); err != nil {
		t.Fatalf("Enroll after drop failed: %v", err)
	}

	// Re-enrolling the first student must reactivate the original row,
	// not create a second one.
	if err := db.Model(&model.Section{}).Where("id = ?", fx.section.ID).
		Update("max_capacity", 2).Error; err != nil {
		t.Fatalf("Failed to raise capacity: %v", err)
	}
	again, err := svc.Enroll(ctx, fx.student, fx.section.ID)
	if err != nil {
		t.Fatalf("re-enroll after drop failed: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("reactivated enrollment ID = %d, want %d", again.ID, first.ID)
	}

	var rows int64
	err = db.Model(&model.Enrollment{}).
		Where("student_id = ? AND section_id = ?", fx.student.ID, fx.section.ID).
		Count(&rows).Error
	if err != nil {
		t.Fatalf("Failed to count enrollments: %v", err)
	}
	if rows != 1 {
		t.Errorf("enrollment rows = %d, want 1", rows)
	}
}

func TestEnrollUnknownSection(t *testing.T) {
	db := openTestDB(t)
	fx := seedFixture(t, db, 5)
	svc := NewEnrollmentService(db, nil)

	if _, err := svc.Enroll(context.Background(), fx.student, 0); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("Enroll into missing section = %v, want ErrSectionNotFound", err)
	}
}

func TestEnrollAfterSemesterEnd(t *testing.T) {
	db := openTestDB(t)
	fx := seedFixture(t, db, 5)
	svc := NewEnrollmentService(db, nil)

	err := db.Model(&model.Semester{}).Where("id = ?", fx.semester.ID).
		Updates(map[string]interface{}{
			"start_date": time.Now().AddDate(0, -4, 0),
			"end_date":   time.Now().AddDate(0, -1, 0),
		}).Error
	if err != nil {
		t.Fatalf("Failed to end semester: %v", err)
	}

	if _, err := svc.Enroll(context.Background(), fx.student, fx.section.ID); !errors.Is(err, ErrSemesterEnded) {
		t.Errorf("Enroll after semester end = %v, want ErrSemesterEnded", err)
	}
}

func TestSubmitGradeUpsert(t *testing.T) {
	db := openTestDB(t)
	fx := seedFixture(t, db, 5)
	enrollSvc := NewEnrollmentService(db, nil)
	gradeSvc := NewGradeService(db, nil)
	ctx := context.Background()

	enrollment, err := enrollSvc.Enroll(ctx, fx.student, fx.section.ID)
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	grade, err := gradeSvc.SubmitGrade(ctx, fx.instructor, enrollment.ID, 7.2, "")
	if err != nil {
		t.Fatalf("SubmitGrade failed: %v", err)
	}
	if grade.GradeLetter != "B" {
		t.Errorf("GradeLetter = %q, want B", grade.GradeLetter)
	}

	// Resubmission overwrites in place.
	if _, err := gradeSvc.SubmitGrade(ctx, fx.instructor, enrollment.ID, 9.0, ""); err != nil {
		t.Fatalf("grade resubmission failed: %v", err)
	}

	var stored model.Grade
	if err := db.Where("enrollment_id = ?", enrollment.ID).First(&stored).Error; err != nil {
		t.Fatalf("Failed to load grade: %v", err)
	}
	if stored.Score != 9.0 || stored.GradeLetter != "A" {
		t.Errorf("stored grade = %v/%q, want 9/A", stored.Score, stored.GradeLetter)
	}

	var rows int64
	if err := db.Model(&model.Grade{}).Where("enrollment_id = ?", enrollment.ID).Count(&rows).Error; err != nil {
		t.Fatalf("Failed to count grades: %v", err)
	}
	if rows != 1 {
		t.Errorf("grade rows = %d, want 1", rows)
	}

	if _, err := gradeSvc.SubmitGrade(ctx, fx.instructor, enrollment.ID, 10.5, ""); !errors.Is(err, ErrScoreOutOfRange) {
		t.Errorf("SubmitGrade(10.5) = %v, want ErrScoreOutOfRange", err)
	}

	other := seedFixture(t, db, 5)
	if _, err := gradeSvc.SubmitGrade(ctx, other.instructor, enrollment.ID, 8.0, ""); !errors.Is(err, ErrNotSectionOwner) {
		t.Errorf("SubmitGrade by non-owner = %v, want ErrNotSectionOwner", err)
	}
}

func TestMarkSessionDefaultsAbsent(t *testing.T) {
	db := openTestDB(t)
	fx := seedFixture(t, db, 5)
	enrollSvc := NewEnrollmentService(db, nil)
	attSvc := NewAttendanceService(db)
	ctx := context.Background()

	e1, err := enrollSvc.Enroll(ctx, fx.student, fx.section.ID)
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	e2, err := enrollSvc.Enroll(ctx, fx.student2, fx.section.ID)
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	marks := []SessionMark{{EnrollmentID: e1.ID, Status: model.AttendancePresent}}
	records, err := attSvc.MarkSession(ctx, fx.instructor, fx.section.ID, 1, time.Now(), marks)
	if err != nil {
		t.Fatalf("MarkSession failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (one per active enrollment)", len(records))
	}

	statuses := map[uint]model.AttendanceStatus{}
	for _, record := range records {
		statuses[record.EnrollmentID] = record.Status
	}
	if statuses[e1.ID] != model.AttendancePresent {
		t.Errorf("marked student status = %q, want present", statuses[e1.ID])
	}
	if statuses[e2.ID] != model.AttendanceAbsent {
		t.Errorf("unmarked student status = %q, want absent", statuses[e2.ID])
	}

	// Re-marking the session overwrites, it does not duplicate.
	remark := []SessionMark{
		{EnrollmentID: e1.ID, Status: model.AttendanceLate},
		{EnrollmentID: e2.ID, Status: model.AttendancePresent},
	}
	if _, err := attSvc.MarkSession(ctx, fx.instructor, fx.section.ID, 1, time.Now(), remark); err != nil {
		t.Fatalf("session re-mark failed: %v", err)
	}

	var rows int64
	err = db.Model(&model.Attendance{}).
		Where("section_id = ? AND session_number = ?", fx.section.ID, 1).
		Count(&rows).Error
	if err != nil {
		t.Fatalf("Failed to count attendance rows: %v", err)
	}
	if rows != 2 {
		t.Errorf("attendance rows = %d, want 2", rows)
	}

	var updated model.Attendance
	err = db.Where("enrollment_id = ? AND session_number = ?", e1.ID, 1).First(&updated).Error
	if err != nil {
		t.Fatalf("Failed to load attendance: %v", err)
	}
	if updated.Status != model.AttendanceLate {
		t.Errorf("re-marked status = %q, want late", updated.Status)
	}

	if _, err := attSvc.MarkSession(ctx, fx.instructor, fx.section.ID, 0, time.Now(), nil); !errors.Is(err, ErrSessionOutOfRange) {
		t.Errorf("MarkSession(0) = %v, want ErrSessionOutOfRange", err)
	}
	if _, err := attSvc.MarkSession(ctx, fx.instructor, fx.section.ID, 11, time.Now(), nil); !errors.Is(err, ErrSessionOutOfRange) {
		t.Errorf("MarkSession past total = %v, want ErrSessionOutOfRange", err)
	}

	other := seedFixture(t, db, 5)
	if _, err := attSvc.MarkSession(ctx, other.instructor, fx.section.ID, 2, time.Now(), nil); !errors.Is(err, ErrNotSectionOwner) {
		t.Errorf("MarkSession by non-owner = %v, want ErrNotSectionOwner", err)
	}
}

func TestStudentAverage(t *testing.T) {
	db := openTestDB(t)
	fx := seedFixture(t, db, 5)
	enrollSvc := NewEnrollmentService(db, nil)
	gradeSvc := NewGradeService(db, nil)
	ctx := context.Background()

	// No grades yet.
	average, graded, err := gradeSvc.StudentAverage(ctx, fx.student.ID)
	if err != nil {
		t.Fatalf("StudentAverage failed: %v", err)
	}
	if average != 0 || graded != 0 {
		t.Errorf("ungraded student average = %v/%d, want 0/0", average, graded)
	}

	first, err := enrollSvc.Enroll(ctx, fx.student, fx.section.ID)
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	if _, err := gradeSvc.SubmitGrade(ctx, fx.instructor, first.ID, 8.0, ""); err != nil {
		t.Fatalf("SubmitGrade failed: %v", err)
	}

	average, graded, err = gradeSvc.StudentAverage(ctx, fx.student.ID)
	if err != nil {
		t.Fatalf("StudentAverage failed: %v", err)
	}
	if average != 8.0 || graded != 1 {
		t.Errorf("average = %v/%d, want 8/1", average, graded)
	}

	// A second graded enrollment moves the mean.
	course := &model.Course{
		CourseCode: fmt.Sprintf("AVG-%d", time.Now().UnixNano()),
		Name:       "Second Course",
		Credits:    3,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}
	section := &model.Section{
		CourseID:      course.ID,
		SemesterID:    fx.semester.ID,
		InstructorID:  fx.instructor.ID,
		SectionCode:   "A",
		MaxCapacity:   5,
		TotalSessions: 10,
	}
	if err := db.Create(section).Error; err != nil {
		t.Fatalf("Failed to create section: %v", err)
	}
	second, err := enrollSvc.Enroll(ctx, fx.student, section.ID)
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	if _, err := gradeSvc.SubmitGrade(ctx, fx.instructor, second.ID, 6.0, ""); err != nil {
		t.Fatalf("SubmitGrade failed: %v", err)
	}

	average, graded, err = gradeSvc.StudentAverage(ctx, fx.student.ID)
	if err != nil {
		t.Fatalf("StudentAverage failed: %v", err)
	}
	if average != 7.0 || graded != 2 {
		t.Errorf("average = %v/%d, want 7/2", average, graded)
	}

	// Other students' grades must not bleed in.
	average, graded, err = gradeSvc.StudentAverage(ctx, fx.student2.ID)
	if err != nil {
		t.Fatalf("StudentAverage failed: %v", err)
	}
	if average != 0 || graded != 0 {
		t.Errorf("second student average = %v/%d, want 0/0", average, graded)
	}
}

func TestCompleteSemesterEnrollments(t *testing.T) {
	db := openTestDB(t)
	fx := seedFixture(t, db, 5)
	svc := NewEnrollmentService(db, nil)
	ctx := context.Background()

	enrollment, err := svc.Enroll(ctx, fx.student, fx.section.ID)
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	// Still running: nothing to complete yet.
	if _, err := svc.CompleteSemesterEnrollments(ctx, time.Now()); err != nil {
		t.Fatalf("CompleteSemesterEnrollments failed: %v", err)
	}
	var current model.Enrollment
	if err := db.First(&current, enrollment.ID).Error; err != nil {
		t.Fatalf("Failed to reload enrollment: %v", err)
	}
	if current.Status != model.EnrollmentActive {
		t.Errorf("Status before semester end = %q, want active", current.Status)
	}

	if _, err := svc.CompleteSemesterEnrollments(ctx, time.Now().AddDate(0, 3, 0)); err != nil {
		t.Fatalf("CompleteSemesterEnrollments failed: %v", err)
	}
	if err := db.First(&current, enrollment.ID).Error; err != nil {
		t.Fatalf("Failed to reload enrollment: %v", err)
	}
	if current.Status != model.EnrollmentCompleted {
		t.Errorf("Status after semester end = %q, want completed", current.Status)
	}
}
