package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gobuddy-app/gobuddy-backend/internal/utils"
)

// Settlement aggregates one runner's earnings over one 5-day period.
// The composite unique index on (runner_id, period_start, period_end) is the
// consistency guarantee: at most one settlement row per runner per period.
type Settlement struct {
	gorm.Model

	SettlementID string `json:"settlement_id" gorm:"uniqueIndex"`

	RunnerID    string    `json:"runner_id" gorm:"uniqueIndex:idx_settlement_runner_period"`
	PeriodStart time.Time `json:"period_start" gorm:"uniqueIndex:idx_settlement_runner_period"`
	PeriodEnd   time.Time `json:"period_end" gorm:"uniqueIndex:idx_settlement_runner_period"`

	TotalEarnings float64 `json:"total_earnings"`
	TotalErrands  int     `json:"total_errands"`

	Status string     `json:"status"` // "pending", "paid", "cancelled"
	PaidAt *time.Time `json:"paid_at"`
}

// Settlement status constants
const (
	SettlementStatusPending   = "pending"
	SettlementStatusPaid      = "paid"
	SettlementStatusCancelled = "cancelled"
)

// BeforeCreate hook to auto-generate SettlementID and default the status
func (s *Settlement) BeforeCreate(tx *gorm.DB) error {
	if s.SettlementID == "" {
		s.SettlementID = utils.GenerateSecureRef("STL")
	}
	if s.Status == "" {
		s.Status = SettlementStatusPending
	}
	return nil
}

// MarkPaid transitions a pending settlement to paid. Administrative action;
// the reconciler never changes status.
func (s *Settlement) MarkPaid() error {
	if s.Status != SettlementStatusPending {
		return fmt.Errorf("settlement not pending")
	}
	now := time.Now()
	s.Status = SettlementStatusPaid
	s.PaidAt = &now
	return nil
}
