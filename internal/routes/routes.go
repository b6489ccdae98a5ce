package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gobuddy-app/gobuddy-backend/internal/handlers"
	"github.com/gobuddy-app/gobuddy-backend/internal/middleware"
	"github.com/gobuddy-app/gobuddy-backend/internal/pricing"
	"github.com/gobuddy-app/gobuddy-backend/internal/services"
	"github.com/gobuddy-app/gobuddy-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	app *fiber.App,
	store storage.Store,
	notify *services.NotificationService,
	settlementService *services.SettlementService,
	ratingService *services.RatingService,
	catalog pricing.Catalog,
	storageType string,
) {
	runnerHandler := handlers.NewRunnerHandler(store)
	callerHandler := handlers.NewCallerHandler(store)
	errandHandler := handlers.NewErrandHandler(store, notify, catalog)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)
	healthHandler := handlers.NewHealthHandler("1.0.0", storageType)

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to GoBuddy Backend!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health": "/health",
				"api":    "/api",
				"admin":  "/admin",
			},
		})
	})

	app.Get("/health", healthHandler.Check)

	// API routes
	api := app.Group("/api")

	// Runner routes
	runners := api.Group("/runners")
	runners.Post("/register", runnerHandler.Register)
	runners.Get("/:id", runnerHandler.GetRunner)
	runners.Get("/:id/stats", runnerHandler.GetRunnerStats)
	runners.Get("/:id/errands", runnerHandler.GetRunnerErrands)
	runners.Get("/:id/settlements", settlementHandler.GetRunnerSettlements)

	// Caller routes
	callers := api.Group("/callers")
	callers.Post("/register", callerHandler.Register)
	callers.Get("/:id", callerHandler.GetCaller)
	callers.Get("/:id/stats", callerHandler.GetCallerStats)
	callers.Get("/:id/errands", callerHandler.GetCallerErrands)

	// Errand routes
	errands := api.Group("/errands")
	errands.Post("/", errandHandler.CreateErrand)
	errands.Get("/", errandHandler.GetAvailableErrands)
	errands.Get("/:id", errandHandler.GetErrand)
	errands.Post("/:id/accept", errandHandler.AcceptErrand)
	errands.Put("/:id/status", errandHandler.UpdateStatus)

	// Price quote preview
	api.Post("/quote", errandHandler.Quote)

	// Rating routes
	api.Post("/ratings", ratingHandler.CreateRating)
	api.Get("/users/:id/ratings", ratingHandler.GetUserRatings)

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin", middleware.RequireAdminKey())
	admin.Post("/settlements/run", settlementHandler.RunSettlements)
	admin.Put("/settlements/:id/paid", settlementHandler.MarkPaid)
}
