package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/gobuddy-app/gobuddy-backend/database"
	"github.com/gobuddy-app/gobuddy-backend/internal/jobs"
	"github.com/gobuddy-app/gobuddy-backend/internal/models"
	"github.com/gobuddy-app/gobuddy-backend/internal/pricing"
	"github.com/gobuddy-app/gobuddy-backend/internal/routes"
	"github.com/gobuddy-app/gobuddy-backend/internal/services"
	"github.com/gobuddy-app/gobuddy-backend/internal/storage"
	"github.com/gobuddy-app/gobuddy-backend/pkg/logging"
)

func main() {
	logging.Setup()

	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				slog.Info("No .env file found - using environment variables")
			}
		}
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		slog.Warn("Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		slog.Info("Connecting to PostgreSQL database")
		database.Connect()

		slog.Info("Running database migrations")
		err := database.DB.AutoMigrate(
			&models.Runner{},
			&models.Caller{},
			&models.Errand{},
			&models.ErrandItem{},
			&models.Rating{},
			&models.Settlement{},
		)
		if err != nil {
			slog.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		slog.Info("Database migrations completed")

		store = storage.NewDatabaseStore(database.DB)
		slog.Info("Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// Load item price catalog
	catalog := pricing.Catalog{}
	if path := os.Getenv("CATALOG_PATH"); path != "" {
		loaded, err := pricing.LoadCatalog(path)
		if err != nil {
			slog.Error("Failed to load item catalog", "path", path, "error", err)
			os.Exit(1)
		}
		catalog = loaded
		slog.Info("Item catalog loaded", "path", path, "items", len(catalog))
	} else {
		slog.Warn("CATALOG_PATH not set - all item prices resolve to 0")
	}

	// Initialize services
	notify := services.NewNotificationService()
	settlementService := services.NewSettlementService(store, notify, catalog)
	ratingService := services.NewRatingService(store)

	// Start the scheduled settlement job
	settlementJob := jobs.NewSettlementJob(store, settlementService)
	settlementJob.Start()

	slog.Info("All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "GoBuddy Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Key",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Setup routes
	routes.SetupRoutes(app, store, notify, settlementService, ratingService, catalog, getStorageType())

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		slog.Info("Gracefully shutting down")
		settlementJob.Stop()
		_ = app.Shutdown()
	}()

	slog.Info("GoBuddy Backend starting",
		"port", port,
		"storage", getStorageType(),
		"environment", getEnvironment(),
		"notifications", notify.Enabled(),
	)

	if err := app.Listen(":" + port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func getEnvironment() string {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return "Production (Cloud Run)"
	}
	return "Development (Local)"
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}
