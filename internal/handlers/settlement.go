package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gobuddy-app/gobuddy-backend/internal/services"
	"github.com/gobuddy-app/gobuddy-backend/internal/settlement"
)

// SettlementHandler handles settlement-related requests
type SettlementHandler struct {
	settlementService *services.SettlementService
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(settlementService *services.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// GetRunnerSettlements lists a runner's settlements
func (h *SettlementHandler) GetRunnerSettlements(c *fiber.Ctx) error {
	runnerID := c.Params("id")
	settlements, err := h.settlementService.GetRunnerSettlements(runnerID)
	if err != nil {
		if err.Error() == "runner not found" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Runner not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve settlements",
		})
	}

	return c.JSON(fiber.Map{
		"settlements": settlements,
		"count":       len(settlements),
	})
}

// RunSettlements triggers a reconciliation pass for the period containing
// the given date (default: the most recently ended period). Admin only.
func (h *SettlementHandler) RunSettlements(c *fiber.Ctx) error {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid date, expected YYYY-MM-DD",
			})
		}
		date = parsed
	} else {
		// Default: close out the previous period rather than the live one
		p, err := settlement.PeriodEndedBefore(date)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to resolve period",
			})
		}
		date = p.Start
	}

	run, err := h.settlementService.RunForDate(date)
	if err != nil {
		if errors.Is(err, settlement.ErrInconsistentStore) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Settlement store is inconsistent, manual review required",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Settlement run failed",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Settlement run completed",
		"run":     run,
	})
}

// MarkPaid marks a settlement as paid out. Admin only.
func (h *SettlementHandler) MarkPaid(c *fiber.Ctx) error {
	id := c.Params("id")
	st, err := h.settlementService.MarkPaid(id)
	if err != nil {
		switch err.Error() {
		case "settlement not found":
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Settlement not found",
			})
		case "settlement not pending":
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Settlement is not pending",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to mark settlement paid",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message":    "Settlement marked as paid",
		"settlement": st,
	})
}
