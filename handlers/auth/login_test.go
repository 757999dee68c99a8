package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/academic-system/records-api/model"
	authutil "github.com/academic-system/records-api/utils/auth"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLoginReturnsStudentProfile(t *testing.T) {
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
	if err := db.AutoMigrate(&model.User{}, &model.Student{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	password := "login-test-password"
	hash, err := authutil.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &model.User{
		Username:     "login-stud-" + suffix,
		PasswordHash: hash,
		Role:         model.RoleStudent,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	student := &model.Student{
		UserID:      user.ID,
		FullName:    "Login Student",
		StudentCode: "LGN-" + suffix,
		IsActive:    true,
	}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}

	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{Secret: "login-test-secret"})
	handler := NewAuthHandler(db, jwtManager, nil)

	app := fiber.New()
	app.Post("/login", handler.Login)

	body := fmt.Sprintf(`{"username":%q,"password":%q}`, user.Username, password)
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}

	var envelope struct {
		Success bool          `json:"success"`
		Data    LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if envelope.Data.AccessToken == "" || envelope.Data.RefreshToken == "" {
		t.Error("expected token pair in login response")
	}
	if envelope.Data.User.Role != model.RoleStudent {
		t.Errorf("role = %q, want student", envelope.Data.User.Role)
	}

	// The role profile rides along so a client does not need a second
	// request to learn the student id and display name.
	if envelope.Data.Student == nil {
		t.Fatal("login response missing student profile")
	}
	if envelope.Data.Student.ID != student.ID {
		t.Errorf("student id = %d, want %d", envelope.Data.Student.ID, student.ID)
	}
	if envelope.Data.Student.FullName != "Login Student" {
		t.Errorf("full name = %q, want Login Student", envelope.Data.Student.FullName)
	}
	if envelope.Data.Instructor != nil {
		t.Error("student login should not carry an instructor profile")
	}
}
