package handlers

import (
	"encoding/json"
	"log"

	"pactify/internal/models"
	"pactify/internal/repositories"
	"pactify/internal/services/reconciliation"
	"pactify/internal/services/webhook"
	"pactify/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler receives provider callbacks, verifies and deduplicates
// them, and hands the normalized event to the reconciliation manager.
// Unknown references and ignored event types are acknowledged so providers
// stop retrying events we can never act on.
type WebhookHandler struct {
	recon       *reconciliation.Manager
	events      repositories.WebhookEventRepository
	normalizers map[string]webhook.Normalizer
}

func NewWebhookHandler(recon *reconciliation.Manager, events repositories.WebhookEventRepository, normalizers ...webhook.Normalizer) *WebhookHandler {
	byRail := make(map[string]webhook.Normalizer, len(normalizers))
	for _, n := range normalizers {
		byRail[n.Rail()] = n
	}
	return &WebhookHandler{recon: recon, events: events, normalizers: byRail}
}

// Handle returns the receiver for one rail's webhook endpoint.
func (h *WebhookHandler) Handle(rail string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		normalizer, ok := h.normalizers[rail]
		if !ok {
			return utils.NotFound(c, "unknown provider")
		}

		payload := c.Body()
		if err := normalizer.Verify(payload, signature(c, rail)); err != nil {
			log.Printf("%s webhook signature rejected", rail)
			return utils.Unauthorized(c, "signature verification failed")
		}

		normalized, err := normalizer.Normalize(payload)
		if err != nil {
			if err == webhook.ErrEventIgnored {
				return utils.Success(c, fiber.Map{"received": true})
			}
			log.Printf("%s webhook payload rejected: %v", rail, err)
			return utils.BadRequest(c, "malformed event payload")
		}

		event := &models.WebhookEvent{
			Provider:        rail,
			ProviderEventID: normalized.EventID,
			EventType:       normalized.EventType,
			SignatureValid:  true,
		}
		var raw models.JSON
		if json.Unmarshal(payload, &raw) == nil {
			event.Payload = raw
		}
		created, err := h.events.Record(event)
		if err != nil {
			// Without a durable record the event cannot be safely acked;
			// a 5xx makes the provider redeliver.
			log.Printf("%s webhook storage failed: %v", rail, err)
			return utils.InternalError(c, "event storage failed")
		}
		if !created {
			stored, err := h.events.GetByProviderEvent(rail, normalized.EventID)
			if err != nil {
				log.Printf("%s webhook duplicate lookup failed for event %s: %v",
					rail, normalized.EventID, err)
				return utils.InternalError(c, "event lookup failed")
			}
			if stored.ProcessedAt != nil && stored.ProcessingError == "" {
				return utils.Success(c, fiber.Map{"received": true, "duplicate": true})
			}
			// The earlier delivery was recorded but its processing never
			// completed; the redelivery is the retry. UpdateStatus is
			// idempotent, so reprocessing can never double-settle.
			event = stored
		}

		matched, err := h.recon.ProcessProviderEvent(c.Context(), normalized, payload)
		if markErr := h.events.MarkProcessed(event.ID, matched, errString(err)); markErr != nil {
			log.Printf("%s webhook mark-processed failed: %v", rail, markErr)
		}
		if err != nil {
			log.Printf("%s webhook processing failed for event %s: %v", rail, normalized.EventID, err)
			return utils.InternalError(c, "event processing failed")
		}
		return utils.Success(c, fiber.Map{"received": true, "matched": matched})
	}
}

// signature extracts the rail's signature material from the request.
func signature(c *fiber.Ctx, rail string) string {
	switch rail {
	case models.RailStripe:
		return c.Get("Stripe-Signature")
	case models.RailMpesa:
		return c.Get("X-Callback-Token")
	default:
		return c.Get("X-Webhook-Signature")
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
