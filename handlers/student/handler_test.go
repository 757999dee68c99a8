package student

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/academic-system/records-api/model"
	"github.com/gofiber/fiber/v2"
)

func newProfileTestApp(h *StudentHandler) *fiber.App {
	app := fiber.New()
	app.Put("/profile",
		func(c *fiber.Ctx) error {
			c.Locals("student", &model.Student{ID: 1, UserID: 1, FullName: "Test Student", StudentCode: "TST-1", IsActive: true})
			return c.Next()
		},
		h.UpdateProfile,
	)
	return app
}

func putProfile(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPut, "/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp.StatusCode
}

func TestUpdateProfileRejectsInvalidEmail(t *testing.T) {
	// Both rejection paths run before any database access.
	app := newProfileTestApp(NewStudentHandler(nil, nil, nil, nil, nil))

	if status := putProfile(t, app, `{"email":"not-an-email"}`); status != fiber.StatusUnprocessableEntity {
		t.Errorf("invalid email = %d, want 422", status)
	}
	if status := putProfile(t, app, `{"email":""}`); status != fiber.StatusBadRequest {
		t.Errorf("empty update = %d, want 400", status)
	}
}
