package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "taskhive/controllers"
	"taskhive/middleware"
	"taskhive/utils"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required), rate limited
	// against credential stuffing
	auth.Post("/register", middleware.AuthRateLimiter(), controller.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Post("/change-password", controller.ChangePassword)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, hub *utils.Hub, notifier *utils.Notifier, mailer *utils.InviteMailer) {
	// Initialize controllers with their respective loggers
	projectController := controller.NewProjectController(db, log.New(os.Stdout, "PROJECT: ", log.LstdFlags), notifier, mailer)
	taskController := controller.NewTaskController(db, log.New(os.Stdout, "TASK: ", log.LstdFlags), notifier)
	commentController := controller.NewCommentController(db, log.New(os.Stdout, "COMMENT: ", log.LstdFlags), notifier)
	notificationController := controller.NewNotificationController(db, log.New(os.Stdout, "NOTIFY: ", log.LstdFlags))
	activityController := controller.NewActivityController(db, log.New(os.Stdout, "ACTIVITY: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))
	userController := controller.NewUserController(db, log.New(os.Stdout, "USER: ", log.LstdFlags), notifier)

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// User routes
	users := api.Group("/users")
	users.Get("/", userController.GetUsers)
	users.Post("/", userController.CreateUser)
	users.Put("/me", userController.UpdateMe)
	users.Delete("/me", userController.DeleteMe)
	users.Put("/:id", userController.UpdateUser)
	users.Delete("/:id", userController.DeleteUser)

	// Project routes
	project := api.Group("/projects")
	project.Post("/", projectController.CreateProject)
	project.Get("/", projectController.GetProjects)
	project.Get("/:id", projectController.GetProject)
	project.Put("/:id", projectController.UpdateProject)
	project.Delete("/:id", projectController.DeleteProject)
	project.Post("/:id/members", projectController.AddMember)
	project.Put("/:id/members", projectController.UpdateMembers)
	project.Delete("/:id/members/:userId", projectController.RemoveMember)

	// Task routes
	task := api.Group("/tasks")
	task.Post("/", taskController.CreateTask)
	task.Get("/project/:projectId", taskController.GetTasksByProject)
	task.Get("/my/assigned", taskController.GetMyTasks)
	task.Put("/:id", taskController.UpdateTask)
	task.Patch("/:id/status", taskController.UpdateTaskStatus)
	task.Patch("/:id/move", taskController.MoveTask)
	task.Delete("/:id", taskController.DeleteTask)

	// Comment routes
	comment := api.Group("/comments")
	comment.Post("/", commentController.CreateComment)
	comment.Get("/:ticketId", commentController.GetCommentsByTicket)
	comment.Delete("/:id", commentController.DeleteComment)

	// Notification routes
	notification := api.Group("/notifications")
	notification.Get("/", notificationController.GetMyNotifications)
	notification.Get("/unread-count", notificationController.GetUnreadCount)
	notification.Put("/mark-tab-read", notificationController.MarkTabAsRead)
	notification.Put("/:id/read", notificationController.MarkAsRead)
	notification.Delete("/:id", notificationController.DeleteNotification)

	// Activity routes
	activity := api.Group("/activity")
	activity.Get("/", activityController.GetMyActivity)

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Get("/summary", dashboardController.GetSummary)

	// WebSocket route for real-time notifications
	app.Get("/ws/notifications", middleware.Protected(), websocket.New(controller.HandleNotificationWS(hub)))

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, hub *utils.Hub, notifier *utils.Notifier, mailer *utils.InviteMailer) {
	// Status and health check endpoints, registered before the catch-all
	// 404 handler below
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db, hub, notifier, mailer)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
