package handlers

import (
	"github.com/edemy/lms-server/database"
	"github.com/edemy/lms-server/utils/response"
	"github.com/gofiber/fiber/v2"
)

// HandleCheckHealth reports service and database health.
func HandleCheckHealth(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.ServiceUnavailable(c, "Database unreachable")
		}
		return response.Success(c, fiber.Map{"status": "ok"})
	}
}
