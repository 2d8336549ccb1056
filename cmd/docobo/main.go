package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mrgoonie/docobo/app/controllers"
	"github.com/mrgoonie/docobo/app/repository"
	"github.com/mrgoonie/docobo/internal/pkg/cache"
	"github.com/mrgoonie/docobo/internal/pkg/database"
	"github.com/mrgoonie/docobo/internal/pkg/discordrole"
	"github.com/mrgoonie/docobo/internal/pkg/entitlement"
	"github.com/mrgoonie/docobo/internal/pkg/env"
	"github.com/mrgoonie/docobo/internal/pkg/jobqueue"
	"github.com/mrgoonie/docobo/internal/pkg/router"
)

func main() {
	app, queue := NewApplication()
	queue.Start()

	// graceful shutdown: stop accepting requests, then drain workers
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "3000"))
	if err := app.Listen(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
	queue.Stop()
}

func NewApplication() (*fiber.App, *jobqueue.Queue) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	effector, err := discordrole.NewFromToken(env.MustGetEnv("DISCORD_BOT_TOKEN"))
	if err != nil {
		log.Fatalf("failed to create discord effector: %v", err)
	}

	repos := repository.GetGlobalRepositories()
	service := entitlement.NewService(repos, effector)

	workers, _ := strconv.Atoi(env.GetEnv("WEBHOOK_WORKERS", "3"))
	queue := jobqueue.NewQueue(cache.GetClient(), service, workers)

	webhookController := controllers.NewWebhookController(
		repos.WebhookEvent,
		queue,
		env.MustGetEnv("POLAR_WEBHOOK_SECRET"),
		env.MustGetEnv("SEPAY_WEBHOOK_SECRET"),
	)

	app := fiber.New(fiber.Config{
		AppName: "docobo-webhooks",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	adminController := controllers.NewAdminController(repos.WebhookEvent)

	router.NewHttpRouter(webhookController, adminController, env.GetEnv("ADMIN_API_KEY", "")).InstallRouter(app)

	return app, queue
}
