// Package settlement derives per-runner settlement records from completed
// errands and reconciles them against already-persisted rows, upholding the
// at-most-one-settlement-per-(runner, period) invariant.
package settlement

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
	"github.com/gobuddy-app/gobuddy-backend/internal/period"
	"github.com/gobuddy-app/gobuddy-backend/internal/pricing"
)

// ErrInconsistentStore is returned when a settlement insert fails as a
// duplicate but the re-read still finds no row.
var ErrInconsistentStore = errors.New("settlement store inconsistent")

// Key identifies one settlement by runner and period. Period bounds are
// formatted dates so equality is immune to time zone and clock noise.
type Key struct {
	RunnerID    string
	PeriodStart string
	PeriodEnd   string
}

// KeyFor builds the composite key of a settlement row.
func KeyFor(s *models.Settlement) Key {
	return Key{
		RunnerID:    s.RunnerID,
		PeriodStart: s.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   s.PeriodEnd.Format("2006-01-02"),
	}
}

// Result classifies calculated settlements against persisted state.
type Result struct {
	// ToCreate are calculated settlements with no persisted counterpart.
	ToCreate []*models.Settlement
	// ToReuse are the persisted rows that already cover a calculated key.
	ToReuse []*models.Settlement
}

// Reconcile diffs calculated settlements against existing rows by composite
// key. Calculated input is de-duplicated first, so no two ToCreate entries
// ever share a key.
func Reconcile(existing, calculated []*models.Settlement) Result {
	byKey := make(map[Key]*models.Settlement, len(existing))
	for _, s := range existing {
		byKey[KeyFor(s)] = s
	}

	var result Result
	seen := make(map[Key]bool, len(calculated))
	for _, s := range calculated {
		key := KeyFor(s)
		if seen[key] {
			continue
		}
		seen[key] = true

		if found, ok := byKey[key]; ok {
			result.ToReuse = append(result.ToReuse, found)
		} else {
			result.ToCreate = append(result.ToCreate, s)
		}
	}
	return result
}

// BuildFromErrands derives calculated settlements from errands: each
// settleable errand is bucketed into the period of its completion date, and
// the runner's earnings for it are the delivery fee of the canonical price
// breakdown (the item subtotal reimburses the runner's outlay and the
// service fee belongs to the platform).
//
// Output is sorted by runner then period start, one settlement per
// (runner, period).
func BuildFromErrands(errands []*models.Errand, lookup pricing.PriceLookup, table pricing.FeeTable) ([]*models.Settlement, error) {
	buckets := make(map[Key]*models.Settlement)

	for _, e := range errands {
		if !e.IsSettleable() {
			continue
		}

		p, err := period.Calculate(e.SettlementDate())
		if err != nil {
			return nil, fmt.Errorf("errand %s: %w", e.ErrandID, err)
		}

		breakdown, err := pricing.CalculateBreakdownWith(e.Category, itemsOf(e), lookup, table)
		if err != nil {
			return nil, fmt.Errorf("errand %s: %w", e.ErrandID, err)
		}

		s := &models.Settlement{
			RunnerID:    e.RunnerID,
			PeriodStart: p.Start,
			PeriodEnd:   p.End,
			Status:      models.SettlementStatusPending,
		}
		key := KeyFor(s)
		if existing, ok := buckets[key]; ok {
			s = existing
		} else {
			buckets[key] = s
		}

		s.TotalEarnings += breakdown.DeliveryFee
		s.TotalErrands++
	}

	settlements := make([]*models.Settlement, 0, len(buckets))
	for _, s := range buckets {
		settlements = append(settlements, s)
	}
	sort.Slice(settlements, func(i, j int) bool {
		if settlements[i].RunnerID != settlements[j].RunnerID {
			return settlements[i].RunnerID < settlements[j].RunnerID
		}
		return settlements[i].PeriodStart.Before(settlements[j].PeriodStart)
	})
	return settlements, nil
}

// PeriodEndedBefore returns the most recent period that fully ended before
// the given time, used by the scheduled settlement run.
func PeriodEndedBefore(now time.Time) (period.Period, error) {
	current, err := period.Calculate(now)
	if err != nil {
		return period.Period{}, err
	}
	return current.Previous(), nil
}

func itemsOf(e *models.Errand) []pricing.Item {
	items := make([]pricing.Item, 0, len(e.Items))
	for _, it := range e.Items {
		items = append(items, pricing.Item{Name: it.Name, Quantity: it.Quantity})
	}
	return items
}
