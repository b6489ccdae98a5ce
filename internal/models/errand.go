package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gobuddy-app/gobuddy-backend/internal/utils"
)

// Errand represents a task posted by a BuddyCaller and fulfilled by a BuddyRunner
type Errand struct {
	gorm.Model

	ErrandID string `json:"errand_id" gorm:"uniqueIndex"`
	CallerID string `json:"caller_id" gorm:"index"`
	RunnerID string `json:"runner_id" gorm:"index"`

	// What kind of errand this is. Must be one of the Category* constants;
	// unknown categories still price, but with a zero base delivery fee.
	Category string `json:"category"`

	// Items are the ordered line items the runner must buy/bring.
	Items []ErrandItem `json:"items" gorm:"foreignKey:ErrandID;references:ErrandID"`

	// Location details
	PickupPoint string `json:"pickup_point"`
	DropPoint   string `json:"drop_point"`
	Notes       string `json:"notes"`

	// InvoiceAmount is the final billed total, set once known. Nullable because
	// quotes exist before an invoice does.
	InvoiceAmount *float64 `json:"invoice_amount"`

	// Status tracking
	Status string `json:"status"` // "pending", "accepted", "in_progress", "completed", "delivered", "cancelled"

	AcceptedAt  *time.Time `json:"accepted_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// ErrandItem is one line item on an errand.
type ErrandItem struct {
	ID       uint   `json:"-" gorm:"primaryKey"`
	ErrandID string `json:"-" gorm:"index"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Errand categories
const (
	CategoryDeliverItems    = "Deliver Items"
	CategoryFoodDelivery    = "Food Delivery"
	CategorySchoolMaterials = "School Materials"
	CategoryPrinting        = "Printing"
)

// Errand status constants
const (
	ErrandStatusPending    = "pending"
	ErrandStatusAccepted   = "accepted"
	ErrandStatusInProgress = "in_progress"
	ErrandStatusCompleted  = "completed"
	ErrandStatusDelivered  = "delivered"
	ErrandStatusCancelled  = "cancelled"
)

// BeforeCreate hook to auto-generate ErrandID and default the status
func (e *Errand) BeforeCreate(tx *gorm.DB) error {
	if e.ErrandID == "" {
		e.ErrandID = utils.GenerateSecureRef("ERD")
	}
	if e.Status == "" {
		e.Status = ErrandStatusPending
	}
	return nil
}

// IsKnownCategory reports whether category is one of the fixed enumeration values.
func IsKnownCategory(category string) bool {
	switch category {
	case CategoryDeliverItems, CategoryFoodDelivery, CategorySchoolMaterials, CategoryPrinting:
		return true
	}
	return false
}

// IsSettleable reports whether this errand should count toward a settlement.
// Only finished errands with an assigned runner are settled.
func (e *Errand) IsSettleable() bool {
	return e.RunnerID != "" &&
		(e.Status == ErrandStatusCompleted || e.Status == ErrandStatusDelivered)
}

// SettlementDate returns the date used to bucket this errand into a period.
func (e *Errand) SettlementDate() time.Time {
	if e.CompletedAt != nil {
		return *e.CompletedAt
	}
	return e.UpdatedAt
}

// Accept assigns a runner and moves the errand out of the pending pool.
func (e *Errand) Accept(runnerID string) error {
	if e.Status != ErrandStatusPending {
		return fmt.Errorf("errand not available")
	}
	now := time.Now()
	e.RunnerID = runnerID
	e.Status = ErrandStatusAccepted
	e.AcceptedAt = &now
	return nil
}

// Complete marks the errand finished and stamps the completion time
// used for settlement bucketing.
func (e *Errand) Complete() {
	now := time.Now()
	e.Status = ErrandStatusCompleted
	e.CompletedAt = &now
}
