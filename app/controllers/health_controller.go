package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/mrgoonie/docobo/internal/pkg/database"
)

// HandleHealth reports liveness plus a trivial store round trip.
func HandleHealth(c *fiber.Ctx) error {
	status := "ok"
	if err := database.Ping(); err != nil {
		log.Errorf("health check store round trip failed: %v", err)
		status = "error"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
