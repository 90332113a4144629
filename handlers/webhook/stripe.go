package webhook

import (
	"context"
	"log"
	"time"

	"github.com/edemy/lms-server/services"
	"github.com/edemy/lms-server/services/stripe"
	"github.com/gofiber/fiber/v2"
)

// eventDedupTTL is how long a processed event id is remembered in redis.
// Stripe retries for up to ~72h but the database guards stay authoritative;
// this is only a fast path that skips re-parsing obvious replays.
const eventDedupTTL = 24 * time.Hour

// EventMarkers is the replay fast-path surface, implemented by
// utils/cache.RedisCache. A degraded implementation may always report
// absent; the database guards carry correctness on their own.
type EventMarkers interface {
	Exists(ctx context.Context, key string) bool
	SetNX(ctx context.Context, key, value string, ttl time.Duration) bool
}

// HandleStripeWebhook is the gateway event ingress.
//
// The raw body bytes are verified against the Stripe-Signature header
// before any parsing; a request that fails verification is rejected with
// 400 and produces no state change of any kind. Processing errors return
// 500 so the gateway redelivers; everything else is acknowledged with 200.
//
// The replay marker is written only after HandleEvent succeeds. A crash
// between processing steps therefore leaves no marker, and the redelivered
// event runs the full DB-guarded path again instead of being acknowledged
// unseen; the worst case is a recorded no-op, never a lost event.
func HandleStripeWebhook(webhooks *services.WebhookService, markers EventMarkers, webhookSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := c.Body()
		signature := c.Get("Stripe-Signature")

		event, err := stripe.ConstructEvent(payload, signature, webhookSecret)
		if err != nil {
			log.Printf("[webhook] rejected stripe event: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid signature",
			})
		}

		// Marker presence means a previous delivery fully processed this
		// event id.
		dedupKey := "stripe:event:" + event.ID
		if markers.Exists(c.Context(), dedupKey) {
			log.Printf("[webhook] replayed stripe event %s, acknowledging", event.ID)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
		}

		if err := webhooks.HandleEvent(c.Context(), event); err != nil {
			log.Printf("[webhook] failed to process stripe event %s: %v", event.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "event processing failed",
			})
		}

		markers.SetNX(c.Context(), dedupKey, "1", eventDedupTTL)

		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	}
}
