package middleware

import (
	"log"

	"github.com/edemy/lms-server/services/clerk"
	"github.com/edemy/lms-server/utils/response"
	"github.com/gofiber/fiber/v2"
)

// RequireEducator gates educator-only routes. Must run after RequireAuth.
// The role lives in the identity provider's metadata, so each check is a
// lookup against it.
func RequireEducator(roles clerk.RoleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return response.Unauthorized(c, "Authentication required")
		}

		role, err := roles.UserRole(c.Context(), userID)
		if err != nil {
			log.Printf("failed to resolve role for user %s: %v", userID, err)
			return response.ServiceUnavailable(c, "Unable to verify educator access")
		}

		if role != clerk.RoleEducator {
			return response.Forbidden(c, "Educator access required")
		}
		return c.Next()
	}
}
