package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"taskhive/config"
	"taskhive/middleware"
	"taskhive/models"
	"taskhive/routes"
	"taskhive/utils"
	"taskhive/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "TASKHIVE: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Sentry when a DSN is configured
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Seed the bootstrap admin account if configured
	if err := models.CreateDefaultAdmin(config.DB, config.AppConfig.AdminEmail, config.AppConfig.AdminPassword); err != nil {
		logger.Fatalf("Failed to seed admin account: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Real-time push hub and the notification dispatcher built on it
	hub := utils.NewHub()
	notifier := utils.NewNotifier(config.DB, hub)

	// Invitation mailer (disabled when SMTP is not configured)
	mailer := utils.NewInviteMailer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
		config.AppConfig.FromEmail,
	)

	// Start the notification cleanup worker
	cleanupWorker := worker.NewNotificationCleanupWorker(
		config.DB,
		log.New(os.Stdout, "CLEANUP: ", log.LstdFlags),
		config.AppConfig.NotificationRetentionDays,
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB, hub, notifier, mailer)

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
