package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gobuddy-app/gobuddy-backend/internal/services"
)

// RatingHandler handles rating-related requests
type RatingHandler struct {
	ratingService *services.RatingService
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(ratingService *services.RatingService) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
	}
}

// CreateRating records a rating for a completed errand
func (h *RatingHandler) CreateRating(c *fiber.Ctx) error {
	var req services.RatingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ErrandID == "" || req.RaterID == "" || req.RatedUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Errand ID, rater ID and rated user ID are required",
		})
	}

	rec, summary, err := h.ratingService.RecordRating(&req)
	if err != nil {
		switch err.Error() {
		case "errand not found":
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Errand not found",
			})
		case "rating already exists":
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "This errand has already been rated by you",
			})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Rating recorded",
		"rating":  rec,
		"summary": summary,
	})
}

// GetUserRatings lists the rating events and aggregate for one user
func (h *RatingHandler) GetUserRatings(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User ID is required",
		})
	}

	ratings, summary, err := h.ratingService.GetUserRatings(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve ratings",
		})
	}

	return c.JSON(fiber.Map{
		"ratings": ratings,
		"summary": summary,
		"count":   len(ratings),
	})
}
