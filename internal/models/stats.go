package models

import "time"

// RunnerStats summarizes one runner's activity for the analytics endpoints.
// Derived on demand, never persisted.
type RunnerStats struct {
	RunnerID         string     `json:"runner_id"`
	CompletedErrands int        `json:"completed_errands"`
	TotalEarnings    float64    `json:"total_earnings"`
	AverageRating    float64    `json:"average_rating"`
	PendingPayout    float64    `json:"pending_payout"`
	LastActiveAt     *time.Time `json:"last_active_at"`
}

// CallerStats summarizes one caller's activity.
type CallerStats struct {
	CallerID         string  `json:"caller_id"`
	TotalErrands     int     `json:"total_errands"`
	ActiveErrands    int     `json:"active_errands"`
	CompletedErrands int     `json:"completed_errands"`
	TotalSpent       float64 `json:"total_spent"`
}
