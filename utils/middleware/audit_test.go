package middleware

import (
	"encoding/json"
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

func TestRedactBodyStripsCredentials(t *testing.T) {
	body := []byte(`{"username":"alice","password":"hunter22","full_name":"Alice","current_password":"old","new_password":"new"}`)

	redacted := redactBody(body)
	if redacted == nil {
		t.Fatal("expected a redacted body, got nil")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(redacted, &payload); err != nil {
		t.Fatalf("redacted body is not valid JSON: %v", err)
	}

	for _, field := range []string{"password", "current_password", "new_password"} {
		if _, ok := payload[field]; ok {
			t.Errorf("field %q survived redaction", field)
		}
	}
	if payload["username"] != "alice" || payload["full_name"] != "Alice" {
		t.Errorf("non-sensitive fields were altered: %v", payload)
	}
}

func TestRedactBodyNonObject(t *testing.T) {
	if got := redactBody([]byte(`not json`)); got != nil {
		t.Errorf("invalid JSON should be dropped, got %q", got)
	}
	if got := redactBody([]byte(`[1,2,3]`)); got != nil {
		t.Errorf("non-object JSON should be dropped, got %q", got)
	}
	if got := redactBody(nil); got != nil {
		t.Errorf("empty body should be dropped, got %q", got)
	}
}

func TestAdminAuditRecordsStatusAndRedacts(t *testing.T) {
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
	if err := db.AutoMigrate(&model.User{}, &model.AdminAuditLog{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	admin := &model.User{
		Username:     fmt.Sprintf("audit-admin-%d", time.Now().UnixNano()),
		PasswordHash: "not-a-real-hash",
		Role:         model.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}

	action := fmt.Sprintf("test_create_%d", time.Now().UnixNano())

	app := fiber.New()
	app.Post("/things",
		func(c *fiber.Ctx) error {
			c.Locals("user", admin)
			return c.Next()
		},
		AdminAudit(db, action, "students"),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false})
		},
	)

	body := `{"username":"newuser","password":"supersecret"}`
	req := httptest.NewRequest(fiber.MethodPost, "/things", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}

	var entry model.AdminAuditLog
	if err := db.Where("action = ?", action).First(&entry).Error; err != nil {
		t.Fatalf("audit entry not written: %v", err)
	}

	// The rejected mutation must be distinguishable from an applied one.
	if entry.StatusCode != fiber.StatusConflict {
		t.Errorf("StatusCode = %d, want 409", entry.StatusCode)
	}

	// The captured body must not contain the plaintext password.
	if strings.Contains(string(entry.NewValue), "supersecret") {
		t.Errorf("plaintext password leaked into audit row: %s", entry.NewValue)
	}
	if !strings.Contains(string(entry.NewValue), "newuser") {
		t.Errorf("non-sensitive fields missing from audit row: %s", entry.NewValue)
	}
}
