package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/academic-system/records-api/model"
	"github.com/academic-system/records-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := s.SeedDemoCatalog(); err != nil {
			return fmt.Errorf("failed to seed demo catalog: %w", err)
		}
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin account from
// ADMIN_USERNAME / ADMIN_PASSWORD. Skipped when an admin already
// exists or the variables are unset.
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin user already exists, skipping...")
		return nil
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminUsername == "" || adminPassword == "" {
		log.Println("ADMIN_USERNAME and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     adminUsername,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Created admin user %q\n", adminUsername)
	return nil
}

// SeedDemoCatalog populates a small catalog for local development: one
// semester, two courses, a lecturer with a section per course.
func (s *Seeder) SeedDemoCatalog() error {
	var count int64
	if err := s.db.Model(&model.Semester{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Catalog already populated, skipping demo data...")
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		semester := model.Semester{
			Name:      fmt.Sprintf("Fall %d", now.Year()),
			StartDate: time.Date(now.Year(), time.September, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(now.Year(), time.December, 20, 0, 0, 0, 0, time.UTC),
		}
		if err := tx.Create(&semester).Error; err != nil {
			return err
		}

		courses := []model.Course{
			{CourseCode: "CS101", Name: "Introduction to Programming", Credits: 4, Description: "Fundamentals of programming and problem solving."},
			{CourseCode: "MA201", Name: "Linear Algebra", Credits: 3, Description: "Vector spaces, matrices and linear transformations."},
		}
		if err := tx.Create(&courses).Error; err != nil {
			return err
		}

		lecturerHash, err := auth.HashPassword("changeme123")
		if err != nil {
			return err
		}
		lecturerUser := model.User{
			Username:     "demo.lecturer",
			PasswordHash: lecturerHash,
			Role:         model.RoleLecturer,
		}
		if err := tx.Create(&lecturerUser).Error; err != nil {
			return err
		}
		instructor := model.Instructor{
			UserID:         lecturerUser.ID,
			FullName:       "Demo Lecturer",
			InstructorCode: "INS-0001",
			Department:     "Computer Science",
			Email:          "demo.lecturer@example.edu",
			IsActive:       true,
		}
		if err := tx.Create(&instructor).Error; err != nil {
			return err
		}

		for _, course := range courses {
			section := model.Section{
				CourseID:      course.ID,
				SemesterID:    semester.ID,
				InstructorID:  instructor.ID,
				SectionCode:   "A",
				ScheduleInfo:  "Mon/Wed 10:00-11:30",
				MaxCapacity:   50,
				TotalSessions: 15,
			}
			if err := tx.Create(&section).Error; err != nil {
				return err
			}
		}

		log.Println("Seeded demo catalog")
		return nil
	})
}
