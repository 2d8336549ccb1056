package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrgoonie/docobo/app/controllers"
	"github.com/mrgoonie/docobo/internal/pkg/middleware"
)

type HttpRouter struct {
	webhooks    *controllers.WebhookController
	admin       *controllers.AdminController
	adminAPIKey string
}

func NewHttpRouter(webhooks *controllers.WebhookController, admin *controllers.AdminController, adminAPIKey string) *HttpRouter {
	return &HttpRouter{webhooks: webhooks, admin: admin, adminAPIKey: adminAPIKey}
}

func (h *HttpRouter) InstallRouter(app *fiber.App) {
	// Providers retry aggressively; the limiter keeps a misbehaving
	// sender from flooding the queue.
	hooks := app.Group("/webhooks", limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))
	hooks.Post("/polar", h.webhooks.HandlePolarWebhook)
	hooks.Post("/sepay", h.webhooks.HandleSepayWebhook)

	admin := app.Group("/admin", middleware.APIKeyAuthMiddleware(h.adminAPIKey))
	admin.Get("/failed-events", h.admin.HandleFailedEvents)

	app.Get("/health", controllers.HandleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
