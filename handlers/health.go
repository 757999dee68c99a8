package handlers

import (
	"github.com/academic-system/records-api/database"
	"github.com/gofiber/fiber/v2"
)

// HandleCheckHealth reports service and database liveness.
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"error":  "database unreachable",
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
