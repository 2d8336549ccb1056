package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/mrgoonie/docobo/app/models"
	"github.com/mrgoonie/docobo/app/repository"
	"github.com/mrgoonie/docobo/internal/pkg/jobqueue"
	"github.com/mrgoonie/docobo/internal/pkg/metrics"
	"github.com/mrgoonie/docobo/internal/pkg/webhook"
)

const enqueueTimeout = 5 * time.Second

// WebhookController serves the provider ingress endpoints. It owns the
// synchronous part only: authenticate, dedup-check, enqueue, respond.
// Everything after the acknowledgment happens in the job queue workers.
type WebhookController struct {
	events      repository.WebhookEventRepository
	queue       jobqueue.Enqueuer
	validate    *validator.Validate
	polarSecret string
	sepaySecret string
	now         func() time.Time
}

// NewWebhookController creates a webhook controller with injected
// dependencies.
func NewWebhookController(events repository.WebhookEventRepository, queue jobqueue.Enqueuer, polarSecret, sepaySecret string) *WebhookController {
	return &WebhookController{
		events:      events,
		queue:       queue,
		validate:    validator.New(),
		polarSecret: polarSecret,
		sepaySecret: sepaySecret,
		now:         time.Now,
	}
}

// HandlePolarWebhook ingests Polar subscription/order events. Polar
// enforces a short response budget and retries on anything slow, so a
// verified, unseen event is acknowledged with 202 before any state
// machine work runs.
func (h *WebhookController) HandlePolarWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	headers := webhook.PolarSignatureHeaders{
		ID:        c.Get("webhook-id"),
		Timestamp: c.Get("webhook-timestamp"),
		Signature: c.Get("webhook-signature"),
	}
	if err := webhook.VerifyPolarSignature(rawBody, headers, h.polarSecret, h.now()); err != nil {
		log.Warnf("polar webhook verification failed: %v", err)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "invalid_signature"})
	}

	var event webhook.PolarEvent
	if err := json.Unmarshal(rawBody, &event); err != nil || event.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	seen, err := h.events.Seen(event.ID)
	if err != nil {
		log.Errorf("polar dedup check failed for %s: %v", event.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	if seen {
		log.Infof("duplicate polar event: %s", event.ID)
		metrics.DuplicateDeliveries.WithLabelValues(models.PaymentProviderPolar).Inc()
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Duplicate event"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()
	if _, err := h.queue.Enqueue(ctx, models.PaymentProviderPolar, rawBody); err != nil {
		log.Errorf("failed to enqueue polar event %s: %v", event.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	metrics.EventsReceived.WithLabelValues(models.PaymentProviderPolar).Inc()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true, "message": "Event received"})
}

// HandleSepayWebhook ingests SePay bank transactions. By SePay's
// convention every outcome past authentication is a 200: a non-success
// status would put the delivery into a retry storm over logic errors
// that a retry cannot fix.
func (h *WebhookController) HandleSepayWebhook(c *fiber.Ctx) error {
	if !webhook.VerifySepayAuth(c.Get(fiber.HeaderAuthorization), h.sepaySecret) {
		log.Warn("sepay webhook auth failed")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)

	var txn webhook.SepayTransaction
	if err := json.Unmarshal(rawBody, &txn); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid payload"})
	}
	if err := h.validate.Struct(&txn); err != nil {
		log.Warnf("sepay transaction failed validation: %v", err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
	}

	eventID := txn.ExternalEventID()

	if !txn.IsIncoming() {
		log.Infof("ignoring outgoing transfer: %s", eventID)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
	}

	seen, err := h.events.Seen(eventID)
	if err != nil {
		// Logged to the server only; SePay still gets its 200.
		log.Errorf("sepay dedup check failed for %s: %v", eventID, err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
	}
	if seen {
		log.Infof("duplicate sepay transaction: %s", eventID)
		metrics.DuplicateDeliveries.WithLabelValues(models.PaymentProviderSepay).Inc()
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
	}

	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()
	if _, err := h.queue.Enqueue(ctx, models.PaymentProviderSepay, rawBody); err != nil {
		log.Errorf("failed to enqueue sepay transaction %s: %v", eventID, err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
	}

	metrics.EventsReceived.WithLabelValues(models.PaymentProviderSepay).Inc()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
