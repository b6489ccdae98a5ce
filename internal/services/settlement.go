package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
	"github.com/gobuddy-app/gobuddy-backend/internal/period"
	"github.com/gobuddy-app/gobuddy-backend/internal/pricing"
	"github.com/gobuddy-app/gobuddy-backend/internal/settlement"
	"github.com/gobuddy-app/gobuddy-backend/internal/storage"
)

// SettlementService turns completed errands into per-runner settlement rows,
// one per (runner, 5-day period).
type SettlementService struct {
	store   storage.Store
	notify  *NotificationService
	catalog pricing.Catalog
	fees    pricing.FeeTable
}

// NewSettlementService creates a settlement service
func NewSettlementService(store storage.Store, notify *NotificationService, catalog pricing.Catalog) *SettlementService {
	return &SettlementService{
		store:   store,
		notify:  notify,
		catalog: catalog,
		fees:    pricing.DefaultFeeTable(),
	}
}

// SettlementRun is the outcome of one reconciliation pass.
type SettlementRun struct {
	Period  period.Period        `json:"period"`
	Created []*models.Settlement `json:"created"`
	Reused  []*models.Settlement `json:"reused"`
}

// RunForDate settles the period containing the given date.
func (s *SettlementService) RunForDate(date time.Time) (*SettlementRun, error) {
	p, err := period.Calculate(date)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve period: %w", err)
	}
	return s.RunForPeriod(p)
}

// RunForPeriod fetches the period's completed errands, derives settlements,
// reconciles them against persisted rows, and inserts what's missing.
//
// The insert path is idempotent under races: the storage layer's composite
// unique key is the only serialization point, and a duplicate-key insert is
// converted into a reuse after a single re-read. A failed re-read means the
// external store is inconsistent and surfaces as ErrInconsistentStore.
func (s *SettlementService) RunForPeriod(p period.Period) (*SettlementRun, error) {
	errands, err := s.store.GetCompletedErrandsInRange(p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completed errands: %w", err)
	}

	calculated, err := settlement.BuildFromErrands(errands, s.catalog.Lookup, s.fees)
	if err != nil {
		return nil, fmt.Errorf("failed to build settlements: %w", err)
	}

	existing, err := s.store.GetSettlementsInRange(p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing settlements: %w", err)
	}

	result := settlement.Reconcile(existing, calculated)

	run := &SettlementRun{Period: p, Reused: result.ToReuse}
	for _, st := range result.ToCreate {
		created, err := s.store.CreateSettlement(st)
		if errors.Is(err, storage.ErrSettlementExists) {
			// A concurrent writer won the race; re-read once and reuse theirs.
			found, lookErr := s.store.GetSettlementByRunnerAndPeriod(st.RunnerID, st.PeriodStart, st.PeriodEnd)
			if lookErr != nil {
				return nil, fmt.Errorf("runner %s period %s: duplicate reported but re-read found nothing: %w",
					st.RunnerID, p, settlement.ErrInconsistentStore)
			}
			run.Reused = append(run.Reused, found)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create settlement: %w", err)
		}
		run.Created = append(run.Created, created)
		s.notifyCreated(created)
	}

	slog.Info("Settlement run finished",
		"period", p.String(),
		"errands", len(errands),
		"created", len(run.Created),
		"reused", len(run.Reused),
	)
	return run, nil
}

// GetRunnerSettlements lists a runner's settlements, newest period first.
func (s *SettlementService) GetRunnerSettlements(runnerID string) ([]*models.Settlement, error) {
	if _, err := s.store.GetRunnerByID(runnerID); err != nil {
		return nil, err
	}
	return s.store.GetSettlementsByRunner(runnerID)
}

// MarkPaid transitions a settlement to paid. Administrative action.
func (s *SettlementService) MarkPaid(settlementID string) (*models.Settlement, error) {
	st, err := s.store.GetSettlement(settlementID)
	if err != nil {
		return nil, err
	}
	if err := st.MarkPaid(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateSettlement(st); err != nil {
		return nil, fmt.Errorf("failed to update settlement: %w", err)
	}

	if runner, err := s.store.GetRunnerByID(st.RunnerID); err == nil {
		if err := s.notify.NotifySettlementPaid(runner, st); err != nil {
			slog.Warn("Failed to send payout notification", "settlement_id", st.SettlementID, "error", err)
		}
	}
	return st, nil
}

func (s *SettlementService) notifyCreated(st *models.Settlement) {
	runner, err := s.store.GetRunnerByID(st.RunnerID)
	if err != nil {
		slog.Warn("Settlement created for unknown runner", "runner_id", st.RunnerID, "settlement_id", st.SettlementID)
		return
	}
	if err := s.notify.NotifySettlementCreated(runner, st); err != nil {
		slog.Warn("Failed to send settlement notification", "settlement_id", st.SettlementID, "error", err)
	}
}
