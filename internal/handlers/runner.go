package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
	"github.com/gobuddy-app/gobuddy-backend/internal/storage"
)

// RunnerHandler handles BuddyRunner requests
type RunnerHandler struct {
	store storage.Store
}

// NewRunnerHandler creates a new runner handler
func NewRunnerHandler(store storage.Store) *RunnerHandler {
	return &RunnerHandler{
		store: store,
	}
}

// Register creates a new runner account
func (h *RunnerHandler) Register(c *fiber.Ctx) error {
	var reg models.RunnerRegistration
	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if reg.Name == "" || reg.Phone == "" || reg.Campus == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, phone and campus are required",
		})
	}

	runner, err := h.store.CreateRunner(&reg)
	if err != nil {
		if err.Error() == "runner already registered" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Phone number already registered",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register runner",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Runner registered successfully",
		"runner":  runner,
	})
}

// GetRunner retrieves a runner by ID
func (h *RunnerHandler) GetRunner(c *fiber.Ctx) error {
	id := c.Params("id")
	runner, err := h.store.GetRunnerByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Runner not found",
		})
	}
	return c.JSON(runner)
}

// GetRunnerStats returns a runner's earnings and activity summary
func (h *RunnerHandler) GetRunnerStats(c *fiber.Ctx) error {
	id := c.Params("id")
	stats, err := h.store.GetRunnerStats(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Runner not found",
		})
	}
	return c.JSON(stats)
}

// GetRunnerErrands lists all errands assigned to a runner
func (h *RunnerHandler) GetRunnerErrands(c *fiber.Ctx) error {
	id := c.Params("id")
	errands, err := h.store.GetErrandsByRunner(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve errands",
		})
	}
	return c.JSON(fiber.Map{
		"errands": errands,
		"count":   len(errands),
	})
}
