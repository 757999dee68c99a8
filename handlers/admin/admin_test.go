package admin

import (
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/academic-system/records-api/model"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testStore adapts a test gorm connection to the Storage interface
// the handlers take.
type testStore struct {
	db *gorm.DB
}

func (s *testStore) Init() error        { return nil }
func (s *testStore) Close() error       { return nil }
func (s *testStore) HealthCheck() error { return nil }
func (s *testStore) GetDB() interface{} { return s.db }

func openTestStore(t *testing.T) *testStore {
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
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &testStore{db: db}
}

func testRequest(t *testing.T, app *fiber.App, method, target, body string) int {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	return resp.StatusCode
}

func TestDeleteCourseSectionGuard(t *testing.T) {
	store := openTestStore(t)
	db := store.db
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	app := fiber.New()
	app.Delete("/courses/:id", func(c *fiber.Ctx) error { return DeleteCourse(c, store) })

	course := &model.Course{CourseCode: "DEL-" + suffix, Name: "Guarded Course", Credits: 3}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}

	instructorUser := &model.User{Username: "del-lect-" + suffix, PasswordHash: "x", Role: model.RoleLecturer}
	if err := db.Create(instructorUser).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	instructor := &model.Instructor{UserID: instructorUser.ID, FullName: "Guard Lecturer", InstructorCode: "DELI-" + suffix, IsActive: true}
	if err := db.Create(instructor).Error; err != nil {
		t.Fatalf("Failed to create instructor: %v", err)
	}
	semester := &model.Semester{Name: "Guard Term", StartDate: time.Now(), EndDate: time.Now().AddDate(0, 3, 0)}
	if err := db.Create(semester).Error; err != nil {
		t.Fatalf("Failed to create semester: %v", err)
	}
	section := &model.Section{CourseID: course.ID, SemesterID: semester.ID, InstructorID: instructor.ID, SectionCode: "A", MaxCapacity: 10, TotalSessions: 10}
	if err := db.Create(section).Error; err != nil {
		t.Fatalf("Failed to create section: %v", err)
	}

	// A referenced course cannot be deleted.
	if status := testRequest(t, app, fiber.MethodDelete, fmt.Sprintf("/courses/%d", course.ID), ""); status != fiber.StatusConflict {
		t.Errorf("delete of referenced course = %d, want 409", status)
	}
	var found model.Course
	if err := db.First(&found, course.ID).Error; err != nil {
		t.Errorf("course disappeared despite the guard: %v", err)
	}

	// With the section gone, deletion succeeds.
	if err := db.Unscoped().Delete(section).Error; err != nil {
		t.Fatalf("Failed to remove section: %v", err)
	}
	if status := testRequest(t, app, fiber.MethodDelete, fmt.Sprintf("/courses/%d", course.ID), ""); status != fiber.StatusOK {
		t.Errorf("delete of unreferenced course = %d, want 200", status)
	}
}

func TestDeleteSectionEnrollmentGuard(t *testing.T) {
	store := openTestStore(t)
	db := store.db
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	app := fiber.New()
	app.Delete("/sections/:id", func(c *fiber.Ctx) error { return DeleteSection(c, store) })

	course := &model.Course{CourseCode: "SEC-" + suffix, Name: "Section Guard", Credits: 3}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}
	instructorUser := &model.User{Username: "sec-lect-" + suffix, PasswordHash: "x", Role: model.RoleLecturer}
	if err := db.Create(instructorUser).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	instructor := &model.Instructor{UserID: instructorUser.ID, FullName: "Section Lecturer", InstructorCode: "SECI-" + suffix, IsActive: true}
	if err := db.Create(instructor).Error; err != nil {
		t.Fatalf("Failed to create instructor: %v", err)
	}
	semester := &model.Semester{Name: "Section Term", StartDate: time.Now(), EndDate: time.Now().AddDate(0, 3, 0)}
	if err := db.Create(semester).Error; err != nil {
		t.Fatalf("Failed to create semester: %v", err)
	}
	section := &model.Section{CourseID: course.ID, SemesterID: semester.ID, InstructorID: instructor.ID, SectionCode: "A", MaxCapacity: 10, TotalSessions: 10}
	if err := db.Create(section).Error; err != nil {
		t.Fatalf("Failed to create section: %v", err)
	}

	studentUser := &model.User{Username: "sec-stud-" + suffix, PasswordHash: "x", Role: model.RoleStudent}
	if err := db.Create(studentUser).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	student := &model.Student{UserID: studentUser.ID, FullName: "Section Student", StudentCode: "SECS-" + suffix, IsActive: true}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}
	enrollment := &model.Enrollment{StudentID: student.ID, SectionID: section.ID, EnrollDate: time.Now(), Status: model.EnrollmentActive}
	if err := db.Create(enrollment).Error; err != nil {
		t.Fatalf("Failed to create enrollment: %v", err)
	}

	// An active enrollment blocks deletion.
	if status := testRequest(t, app, fiber.MethodDelete, fmt.Sprintf("/sections/%d", section.ID), ""); status != fiber.StatusConflict {
		t.Errorf("delete of enrolled section = %d, want 409", status)
	}

	// A dropped enrollment no longer blocks it.
	if err := db.Model(enrollment).Update("status", model.EnrollmentDropped).Error; err != nil {
		t.Fatalf("Failed to drop enrollment: %v", err)
	}
	if status := testRequest(t, app, fiber.MethodDelete, fmt.Sprintf("/sections/%d", section.ID), ""); status != fiber.StatusOK {
		t.Errorf("delete of drained section = %d, want 200", status)
	}
}

func TestCreateCourseDuplicateCode(t *testing.T) {
	store := openTestStore(t)
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	app := fiber.New()
	app.Post("/courses", func(c *fiber.Ctx) error { return CreateCourse(c, store) })

	body := fmt.Sprintf(`{"course_code":"DUP-%s","name":"Duplicate Course","credits":3}`, suffix)

	if status := testRequest(t, app, fiber.MethodPost, "/courses", body); status != fiber.StatusCreated {
		t.Fatalf("first create = %d, want 201", status)
	}
	if status := testRequest(t, app, fiber.MethodPost, "/courses", body); status != fiber.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", status)
	}
}
