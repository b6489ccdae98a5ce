package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
	"github.com/gobuddy-app/gobuddy-backend/internal/pricing"
	"github.com/gobuddy-app/gobuddy-backend/internal/services"
	"github.com/gobuddy-app/gobuddy-backend/internal/storage"
)

// ErrandHandler handles errand-related requests
type ErrandHandler struct {
	store   storage.Store
	notify  *services.NotificationService
	catalog pricing.Catalog
}

// NewErrandHandler creates a new errand handler
func NewErrandHandler(store storage.Store, notify *services.NotificationService, catalog pricing.Catalog) *ErrandHandler {
	return &ErrandHandler{
		store:   store,
		notify:  notify,
		catalog: catalog,
	}
}

type createErrandRequest struct {
	CallerID    string         `json:"caller_id"`
	Category    string         `json:"category"`
	Items       []pricing.Item `json:"items"`
	PickupPoint string         `json:"pickup_point"`
	DropPoint   string         `json:"drop_point"`
	Notes       string         `json:"notes"`
}

// CreateErrand posts a new errand and returns it with its price quote
func (h *ErrandHandler) CreateErrand(c *fiber.Ctx) error {
	var req createErrandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.CallerID == "" || req.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Caller ID and category are required",
		})
	}
	if !models.IsKnownCategory(req.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown category",
		})
	}

	breakdown, err := pricing.CalculateBreakdown(req.Category, req.Items, h.catalog.Lookup)
	if err != nil {
		if errors.Is(err, pricing.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to price errand",
		})
	}

	errand := &models.Errand{
		CallerID:    req.CallerID,
		Category:    req.Category,
		PickupPoint: req.PickupPoint,
		DropPoint:   req.DropPoint,
		Notes:       req.Notes,
	}
	for i, item := range req.Items {
		errand.Items = append(errand.Items, models.ErrandItem{
			Position: i,
			Name:     item.Name,
			Quantity: item.Quantity,
		})
	}

	errand, err = h.store.CreateErrand(errand)
	if err != nil {
		if err.Error() == "caller not found" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Caller not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create errand",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Errand created successfully",
		"errand":  errand,
		"quote":   breakdown,
	})
}

// GetErrand retrieves an errand by ID
func (h *ErrandHandler) GetErrand(c *fiber.Ctx) error {
	id := c.Params("id")
	errand, err := h.store.GetErrand(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Errand not found",
		})
	}
	return c.JSON(errand)
}

// GetAvailableErrands lists errands waiting for a runner
func (h *ErrandHandler) GetAvailableErrands(c *fiber.Ctx) error {
	errands, err := h.store.GetAvailableErrands()
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

// AcceptErrand assigns a runner to a pending errand
func (h *ErrandHandler) AcceptErrand(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		RunnerID string `json:"runner_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.RunnerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Runner ID is required",
		})
	}

	runner, err := h.store.GetRunnerByID(req.RunnerID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Runner not found",
		})
	}
	if !runner.Available || runner.IsSuspended {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Runner is not available",
		})
	}

	errand, err := h.store.GetErrand(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Errand not found",
		})
	}
	if err := errand.Accept(runner.RunnerID); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Errand is not available for acceptance",
		})
	}
	if err := h.store.UpdateErrand(errand); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to accept errand",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Errand accepted",
		"errand":  errand,
	})
}

type updateStatusRequest struct {
	Status        string   `json:"status"`
	InvoiceAmount *float64 `json:"invoice_amount"`
}

// UpdateStatus advances an errand through its lifecycle
func (h *ErrandHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	switch req.Status {
	case models.ErrandStatusInProgress, models.ErrandStatusCompleted,
		models.ErrandStatusDelivered, models.ErrandStatusCancelled:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status",
		})
	}

	errand, err := h.store.GetErrand(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Errand not found",
		})
	}

	if req.Status == models.ErrandStatusCompleted {
		errand.Complete()
	} else {
		errand.Status = req.Status
	}
	if req.InvoiceAmount != nil {
		if *req.InvoiceAmount < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invoice amount cannot be negative",
			})
		}
		errand.InvoiceAmount = req.InvoiceAmount
	}

	if err := h.store.UpdateErrand(errand); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update errand",
		})
	}

	if req.Status == models.ErrandStatusCompleted {
		h.afterCompletion(errand)
	}

	return c.JSON(fiber.Map{
		"message": "Errand status updated",
		"errand":  errand,
	})
}

// Quote previews a price breakdown without creating an errand
func (h *ErrandHandler) Quote(c *fiber.Ctx) error {
	var req struct {
		Category string         `json:"category"`
		Items    []pricing.Item `json:"items"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	breakdown, err := pricing.CalculateBreakdown(req.Category, req.Items, h.catalog.Lookup)
	if err != nil {
		if errors.Is(err, pricing.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to price errand",
		})
	}
	return c.JSON(breakdown)
}

// afterCompletion bumps the runner's errand count and notifies the caller.
func (h *ErrandHandler) afterCompletion(errand *models.Errand) {
	if runner, err := h.store.GetRunnerByID(errand.RunnerID); err == nil {
		runner.TotalErrands++
		if err := h.store.UpdateRunner(runner); err != nil {
			slog.Warn("Failed to update runner errand count", "runner_id", runner.RunnerID, "error", err)
		}
	}

	caller, err := h.store.GetCallerByID(errand.CallerID)
	if err != nil {
		return
	}
	caller.TotalErrands++
	if err := h.store.UpdateCaller(caller); err != nil {
		slog.Warn("Failed to update caller errand count", "caller_id", caller.CallerID, "error", err)
	}
	if err := h.notify.NotifyErrandCompleted(caller, errand); err != nil {
		slog.Warn("Failed to send completion notification", "errand_id", errand.ErrandID, "error", err)
	}
}
