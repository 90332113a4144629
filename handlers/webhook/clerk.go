package webhook

import (
	"log"

	"github.com/edemy/lms-server/database"
	"github.com/edemy/lms-server/model"
	"github.com/edemy/lms-server/services/clerk"
	"github.com/gofiber/fiber/v2"
)

// HandleClerkWebhook mirrors identity-provider user lifecycle events into
// the local users table. Same verify-before-parse discipline as the stripe
// ingress, with the svix signature scheme.
func HandleClerkWebhook(store database.Storage, webhookSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		headers := clerk.SignatureHeaders{
			ID:        c.Get("svix-id"),
			Timestamp: c.Get("svix-timestamp"),
			Signature: c.Get("svix-signature"),
		}

		event, err := clerk.VerifyAndParse(c.Body(), headers, webhookSecret)
		if err != nil {
			log.Printf("[webhook] rejected clerk event: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid signature",
			})
		}

		switch event.Type {
		case clerk.EventUserCreated, clerk.EventUserUpdated:
			user := &model.User{
				ID:       event.Data.ID,
				Name:     event.Data.FullName(),
				Email:    event.Data.PrimaryEmail(),
				ImageURL: event.Data.ImageURL,
			}
			if err := store.UpsertUser(c.Context(), user); err != nil {
				log.Printf("[webhook] failed to upsert user %s: %v", user.ID, err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "event processing failed",
				})
			}

		case clerk.EventUserDeleted:
			if err := store.DeleteUser(c.Context(), event.Data.ID); err != nil {
				log.Printf("[webhook] failed to delete user %s: %v", event.Data.ID, err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "event processing failed",
				})
			}

		default:
			log.Printf("[webhook] unhandled clerk event type: %s", event.Type)
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	}
}
