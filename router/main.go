package router

import (
	"log"
	"os"
	"time"

	"github.com/academic-system/records-api/config"
	"github.com/academic-system/records-api/database"
	"github.com/academic-system/records-api/handlers"
	admin_handlers "github.com/academic-system/records-api/handlers/admin"
	auth_handlers "github.com/academic-system/records-api/handlers/auth"
	lecturer_handlers "github.com/academic-system/records-api/handlers/lecturer"
	notification_handlers "github.com/academic-system/records-api/handlers/notification"
	student_handlers "github.com/academic-system/records-api/handlers/student"
	"github.com/academic-system/records-api/services"
	"github.com/academic-system/records-api/services/spaces"
	"github.com/academic-system/records-api/utils"
	"github.com/academic-system/records-api/utils/auth"
	"github.com/academic-system/records-api/utils/cache"
	"github.com/academic-system/records-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes wires middleware, services and handlers onto the app.
// store is the GORM store; reportStore is the raw-SQL reporting
// connection (nil disables the report endpoints backed by it).
func SetupRoutes(app *fiber.App, store database.Storage, reportStore *database.PostgreSQLStore) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}
	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "records-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	})

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs the login throttle. Without it logins still work,
	// just without lockouts.
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Login throttling will be disabled.", err)
	}

	var loginProtection *middleware.LoginProtection
	if redisCache != nil {
		loginProtection = middleware.NewLoginProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Services
	notificationService := services.NewNotificationService(db)
	enrollmentService := services.NewEnrollmentService(db, notificationService)
	gradeService := services.NewGradeService(db, notificationService)
	attendanceService := services.NewAttendanceService(db)

	var reportService *services.ReportService
	var exportService *services.ExportService
	if reportStore != nil {
		reportService = services.NewReportService(reportStore)

		var spacesClient *spaces.Client
		if getEnv.SPACES_ACCESS_KEY != "" && getEnv.SPACES_BUCKET != "" {
			spacesClient, err = spaces.NewClient(spaces.Config{
				AccessKey: getEnv.SPACES_ACCESS_KEY,
				SecretKey: getEnv.SPACES_SECRET_KEY,
				Bucket:    getEnv.SPACES_BUCKET,
				Region:    getEnv.SPACES_REGION,
				Endpoint:  getEnv.SPACES_ENDPOINT,
			})
			if err != nil {
				log.Printf("Warning: Failed to initialize Spaces client: %v. Report export will be disabled.", err)
			}
		}
		exportService = services.NewExportService(reportService, spacesClient)
	}

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, loginProtection)
	studentHandler := student_handlers.NewStudentHandler(db, enrollmentService, gradeService, attendanceService, notificationService)
	lecturerHandler := lecturer_handlers.NewLecturerHandler(db, enrollmentService, gradeService, attendanceService)
	notificationHandler := notification_handlers.NewNotificationHandler(notificationService)

	// Shared middleware stack
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	if loginProtection != nil {
		authGroup.Post("/login", loginProtection.Guard(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/logout-all", authMiddleware.Required(), authHandler.LogoutAll)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Notification routes (any authenticated role)
	notifications := api.Group("/notifications", authMiddleware.Required())
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)
	notifications.Post("/read-all", notificationHandler.MarkAllRead)

	// Student routes
	student := api.Group("/student", authMiddleware.Required(), authMiddleware.RequireStudent())
	student.Get("/dashboard", studentHandler.Dashboard)
	student.Get("/profile", studentHandler.Profile)
	student.Put("/profile", studentHandler.UpdateProfile)
	student.Get("/sections", studentHandler.ListSections)
	student.Post("/sections/:id/enroll", studentHandler.Enroll)
	student.Post("/sections/:id/drop", studentHandler.Drop)
	student.Get("/schedule", studentHandler.Schedule)
	student.Get("/grades", studentHandler.Grades)
	student.Get("/enrollments/:id/attendance", studentHandler.Attendance)

	// Lecturer routes
	lecturer := api.Group("/lecturer", authMiddleware.Required(), authMiddleware.RequireLecturer())
	lecturer.Get("/dashboard", lecturerHandler.Dashboard)
	lecturer.Get("/sections", lecturerHandler.Sections)
	lecturer.Get("/sections/:id/roster", lecturerHandler.Roster)
	lecturer.Get("/sections/:id/report", lecturerHandler.SectionReport)
	lecturer.Get("/sections/:id/attendance", lecturerHandler.SectionAttendance)
	lecturer.Post("/sections/:id/attendance/:session", lecturerHandler.MarkAttendance)
	lecturer.Get("/sections/:id/attendance/:session", lecturerHandler.SessionAttendance)
	lecturer.Put("/enrollments/:id/grade", lecturerHandler.SubmitGrade)
	lecturer.Get("/students/:id", lecturerHandler.StudentProfile)

	// Admin routes, with audit logging on every mutation
	admin := api.Group("/admin", authMiddleware.Required(), authMiddleware.RequireAdmin())

	admin.Get("/students", utils.MakeHTTPHandleFunc(admin_handlers.ListStudents, store))
	admin.Get("/students/:id", utils.MakeHTTPHandleFunc(admin_handlers.GetStudent, store))
	admin.Post("/students", middleware.AdminAudit(db, "student_create", "students"), utils.MakeHTTPHandleFunc(admin_handlers.CreateStudent, store))
	admin.Put("/students/:id", middleware.AdminAudit(db, "student_update", "students"), utils.MakeHTTPHandleFunc(admin_handlers.UpdateStudent, store))
	admin.Patch("/students/:id/toggle", middleware.AdminAudit(db, "student_toggle", "students"), utils.MakeHTTPHandleFunc(admin_handlers.ToggleStudent, store))
	admin.Delete("/students/:id", middleware.AdminAudit(db, "student_delete", "students"), utils.MakeHTTPHandleFunc(admin_handlers.DeleteStudent, store))

	admin.Get("/instructors", utils.MakeHTTPHandleFunc(admin_handlers.ListInstructors, store))
	admin.Get("/instructors/:id", utils.MakeHTTPHandleFunc(admin_handlers.GetInstructor, store))
	admin.Post("/instructors", middleware.AdminAudit(db, "instructor_create", "instructors"), utils.MakeHTTPHandleFunc(admin_handlers.CreateInstructor, store))
	admin.Put("/instructors/:id", middleware.AdminAudit(db, "instructor_update", "instructors"), utils.MakeHTTPHandleFunc(admin_handlers.UpdateInstructor, store))
	admin.Patch("/instructors/:id/toggle", middleware.AdminAudit(db, "instructor_toggle", "instructors"), utils.MakeHTTPHandleFunc(admin_handlers.ToggleInstructor, store))
	admin.Delete("/instructors/:id", middleware.AdminAudit(db, "instructor_delete", "instructors"), utils.MakeHTTPHandleFunc(admin_handlers.DeleteInstructor, store))

	admin.Get("/courses", utils.MakeHTTPHandleFunc(admin_handlers.ListCourses, store))
	admin.Get("/courses/:id", utils.MakeHTTPHandleFunc(admin_handlers.GetCourse, store))
	admin.Post("/courses", middleware.AdminAudit(db, "course_create", "courses"), utils.MakeHTTPHandleFunc(admin_handlers.CreateCourse, store))
	admin.Put("/courses/:id", middleware.AdminAudit(db, "course_update", "courses"), utils.MakeHTTPHandleFunc(admin_handlers.UpdateCourse, store))
	admin.Delete("/courses/:id", middleware.AdminAudit(db, "course_delete", "courses"), utils.MakeHTTPHandleFunc(admin_handlers.DeleteCourse, store))

	admin.Get("/semesters", utils.MakeHTTPHandleFunc(admin_handlers.ListSemesters, store))
	admin.Get("/semesters/:id", utils.MakeHTTPHandleFunc(admin_handlers.GetSemester, store))
	admin.Post("/semesters", middleware.AdminAudit(db, "semester_create", "semesters"), utils.MakeHTTPHandleFunc(admin_handlers.CreateSemester, store))
	admin.Put("/semesters/:id", middleware.AdminAudit(db, "semester_update", "semesters"), utils.MakeHTTPHandleFunc(admin_handlers.UpdateSemester, store))
	admin.Delete("/semesters/:id", middleware.AdminAudit(db, "semester_delete", "semesters"), utils.MakeHTTPHandleFunc(admin_handlers.DeleteSemester, store))

	admin.Get("/sections", utils.MakeHTTPHandleFunc(admin_handlers.ListSections, store))
	admin.Get("/sections/:id", utils.MakeHTTPHandleFunc(admin_handlers.GetSection, store))
	admin.Get("/sections/:id/attendance", utils.MakeHTTPHandleFunc(admin_handlers.SectionAttendanceDetail, store))
	admin.Post("/sections", middleware.AdminAudit(db, "section_create", "sections"), utils.MakeHTTPHandleFunc(admin_handlers.CreateSection, store))
	admin.Put("/sections/:id", middleware.AdminAudit(db, "section_update", "sections"), utils.MakeHTTPHandleFunc(admin_handlers.UpdateSection, store))
	admin.Delete("/sections/:id", middleware.AdminAudit(db, "section_delete", "sections"), utils.MakeHTTPHandleFunc(admin_handlers.DeleteSection, store))

	admin.Get("/audit-logs", utils.MakeHTTPHandleFunc(admin_handlers.ListAuditLogs, store))
	admin.Get("/cron-logs", utils.MakeHTTPHandleFunc(admin_handlers.ListCronLogs, store))

	if reportService != nil {
		reportsHandler := admin_handlers.NewReportsHandler(reportService, exportService)
		admin.Get("/dashboard", reportsHandler.Dashboard)
		admin.Get("/reports/grades", reportsHandler.GradeDistribution)
		admin.Get("/reports/occupancy", reportsHandler.SectionOccupancy)
		admin.Get("/reports/attendance", reportsHandler.AttendanceOverview)
		admin.Post("/reports/:name/export", reportsHandler.Export)
	}
}
