package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
	"github.com/gobuddy-app/gobuddy-backend/internal/storage"
)

// CallerHandler handles BuddyCaller requests
type CallerHandler struct {
	store storage.Store
}

// NewCallerHandler creates a new caller handler
func NewCallerHandler(store storage.Store) *CallerHandler {
	return &CallerHandler{
		store: store,
	}
}

// Register creates a new caller account
func (h *CallerHandler) Register(c *fiber.Ctx) error {
	var reg models.CallerRegistration
	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if reg.Name == "" || reg.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and phone are required",
		})
	}

	caller, err := h.store.CreateCaller(&reg)
	if err != nil {
		if err.Error() == "caller already registered" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Phone number already registered",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register caller",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Caller registered successfully",
		"caller":  caller,
	})
}

// GetCaller retrieves a caller by ID
func (h *CallerHandler) GetCaller(c *fiber.Ctx) error {
	id := c.Params("id")
	caller, err := h.store.GetCallerByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Caller not found",
		})
	}
	return c.JSON(caller)
}

// GetCallerStats returns a caller's activity summary
func (h *CallerHandler) GetCallerStats(c *fiber.Ctx) error {
	id := c.Params("id")
	stats, err := h.store.GetCallerStats(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Caller not found",
		})
	}
	return c.JSON(stats)
}

// GetCallerErrands lists all errands posted by a caller
func (h *CallerHandler) GetCallerErrands(c *fiber.Ctx) error {
	id := c.Params("id")
	errands, err := h.store.GetErrandsByCaller(id)
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
