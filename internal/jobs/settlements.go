package jobs

import (
	"log/slog"
	"time"

	"github.com/gobuddy-app/gobuddy-backend/internal/services"
	"github.com/gobuddy-app/gobuddy-backend/internal/settlement"
	"github.com/gobuddy-app/gobuddy-backend/internal/storage"
)

// SettlementJob closes out settlement periods on a schedule
type SettlementJob struct {
	store             storage.Store
	settlementService *services.SettlementService
	isRunning         bool
}

// NewSettlementJob creates a new settlement job scheduler
func NewSettlementJob(store storage.Store, settlementService *services.SettlementService) *SettlementJob {
	return &SettlementJob{
		store:             store,
		settlementService: settlementService,
		isRunning:         false,
	}
}

// Start begins the scheduled settlement runs
func (j *SettlementJob) Start() {
	if j.isRunning {
		slog.Info("Settlement job already running")
		return
	}

	j.isRunning = true
	slog.Info("Starting scheduled settlement job")

	go j.scheduleDailyRun()
}

// Stop halts the scheduled runs
func (j *SettlementJob) Stop() {
	j.isRunning = false
	slog.Info("Stopping scheduled settlement job")
}

// DAILY SETTLEMENT RUN - every day at 1 AM, reconcile the most recently
// ended period. Re-running an already-settled period is harmless: the
// reconciler classifies everything as reuse.
func (j *SettlementJob) scheduleDailyRun() {
	for j.isRunning {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day()+1, 1, 0, 0, 0, now.Location())
		duration := nextRun.Sub(now)

		slog.Info("Next settlement run scheduled", "in", duration.String())
		time.Sleep(duration)

		if !j.isRunning {
			break
		}

		j.runOnce()
	}
}

// runOnce settles the period that ended before today.
func (j *SettlementJob) runOnce() {
	p, err := settlement.PeriodEndedBefore(time.Now())
	if err != nil {
		slog.Error("Failed to resolve settlement period", "error", err)
		return
	}

	run, err := j.settlementService.RunForPeriod(p)
	if err != nil {
		slog.Error("Scheduled settlement run failed", "period", p.String(), "error", err)
		return
	}

	slog.Info("Scheduled settlement run completed",
		"period", run.Period.String(),
		"created", len(run.Created),
		"reused", len(run.Reused),
	)
}
