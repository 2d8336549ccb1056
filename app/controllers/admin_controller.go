package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/mrgoonie/docobo/app/repository"
)

const defaultFailedEventsLimit = 50

// AdminController exposes the operator reconciliation surface. Events
// that finished with an error are never retried automatically; this is
// where an operator finds them.
type AdminController struct {
	events repository.WebhookEventRepository
}

// NewAdminController creates an admin controller with the injected
// ledger repository.
func NewAdminController(events repository.WebhookEventRepository) *AdminController {
	return &AdminController{events: events}
}

// HandleFailedEvents lists ledger entries that completed with an error
// message, newest first. Accepts an optional ?limit= query parameter.
func (h *AdminController) HandleFailedEvents(c *fiber.Ctx) error {
	limit := defaultFailedEventsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_limit"})
		}
		limit = parsed
	}

	events, err := h.events.ListFailed(limit)
	if err != nil {
		log.Errorf("failed to list failed events: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":  len(events),
		"events": events,
	})
}
