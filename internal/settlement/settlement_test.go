package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
	"github.com/gobuddy-app/gobuddy-backend/internal/pricing"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func settlementFor(runnerID string, start, end time.Time) *models.Settlement {
	return &models.Settlement{
		RunnerID:    runnerID,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      models.SettlementStatusPending,
	}
}

func TestReconcile(t *testing.T) {
	start := date(2025, time.November, 6)
	end := date(2025, time.November, 10)

	t.Run("existing row for the same key is reused", func(t *testing.T) {
		existing := settlementFor("BR00001", start, end)
		existing.SettlementID = "STL00001"

		calculated := settlementFor("BR00001", start, end)

		result := Reconcile([]*models.Settlement{existing}, []*models.Settlement{calculated})
		assert.Empty(t, result.ToCreate)
		require.Len(t, result.ToReuse, 1)
		assert.Equal(t, "STL00001", result.ToReuse[0].SettlementID)
	})

	t.Run("different period for the same runner is created", func(t *testing.T) {
		existing := settlementFor("BR00001", start, end)
		calculated := settlementFor("BR00001", start.AddDate(0, 0, 5), end.AddDate(0, 0, 5))

		result := Reconcile([]*models.Settlement{existing}, []*models.Settlement{calculated})
		require.Len(t, result.ToCreate, 1)
		assert.Empty(t, result.ToReuse)
		assert.Equal(t, calculated, result.ToCreate[0])
	})

	t.Run("different runner in the same period is created", func(t *testing.T) {
		existing := settlementFor("BR00001", start, end)
		calculated := settlementFor("BR00002", start, end)

		result := Reconcile([]*models.Settlement{existing}, []*models.Settlement{calculated})
		require.Len(t, result.ToCreate, 1)
		assert.Empty(t, result.ToReuse)
	})

	t.Run("duplicate calculated keys collapse to one", func(t *testing.T) {
		calculated := []*models.Settlement{
			settlementFor("BR00001", start, end),
			settlementFor("BR00001", start, end),
		}

		result := Reconcile(nil, calculated)
		assert.Len(t, result.ToCreate, 1)
		assert.Empty(t, result.ToReuse)
	})

	t.Run("key equality ignores time of day", func(t *testing.T) {
		existing := settlementFor("BR00001", start, end)
		calculated := settlementFor("BR00001",
			start.Add(3*time.Hour), end.Add(7*time.Hour))

		result := Reconcile([]*models.Settlement{existing}, []*models.Settlement{calculated})
		assert.Empty(t, result.ToCreate)
		assert.Len(t, result.ToReuse, 1)
	})
}

func TestBuildFromErrands(t *testing.T) {
	catalog := pricing.Catalog{"Yellowpad": 10, "Burger Meal": 120}
	table := pricing.DefaultFeeTable()

	completedAt := func(d time.Time) *time.Time { return &d }

	errands := []*models.Errand{
		{
			ErrandID:    "ERD00001",
			RunnerID:    "BR00001",
			Category:    models.CategoryPrinting,
			Items:       []models.ErrandItem{{Name: "Yellowpad", Quantity: 2}},
			Status:      models.ErrandStatusCompleted,
			CompletedAt: completedAt(date(2025, time.November, 7)),
		},
		{
			ErrandID:    "ERD00002",
			RunnerID:    "BR00001",
			Category:    models.CategoryFoodDelivery,
			Items:       []models.ErrandItem{{Name: "Burger Meal", Quantity: 1}},
			Status:      models.ErrandStatusDelivered,
			CompletedAt: completedAt(date(2025, time.November, 9)),
		},
		{
			// Next period, same runner.
			ErrandID:    "ERD00003",
			RunnerID:    "BR00001",
			Category:    models.CategoryPrinting,
			Items:       []models.ErrandItem{{Name: "Yellowpad", Quantity: 1}},
			Status:      models.ErrandStatusCompleted,
			CompletedAt: completedAt(date(2025, time.November, 12)),
		},
		{
			// Still in progress, must not settle.
			ErrandID:    "ERD00004",
			RunnerID:    "BR00002",
			Category:    models.CategoryPrinting,
			Items:       []models.ErrandItem{{Name: "Yellowpad", Quantity: 1}},
			Status:      models.ErrandStatusInProgress,
			CompletedAt: completedAt(date(2025, time.November, 8)),
		},
		{
			// No runner assigned, must not settle.
			ErrandID:    "ERD00005",
			Category:    models.CategoryPrinting,
			Items:       []models.ErrandItem{{Name: "Yellowpad", Quantity: 1}},
			Status:      models.ErrandStatusCompleted,
			CompletedAt: completedAt(date(2025, time.November, 8)),
		},
	}

	settlements, err := BuildFromErrands(errands, catalog.Lookup, table)
	require.NoError(t, err)
	require.Len(t, settlements, 2)

	first := settlements[0]
	assert.Equal(t, "BR00001", first.RunnerID)
	assert.Equal(t, date(2025, time.November, 6), first.PeriodStart)
	assert.Equal(t, date(2025, time.November, 10), first.PeriodEnd)
	// Printing x2 items: 5 + 2, food delivery single item: 15.
	assert.InDelta(t, 22, first.TotalEarnings, 0.001)
	assert.Equal(t, 2, first.TotalErrands)

	second := settlements[1]
	assert.Equal(t, "BR00001", second.RunnerID)
	assert.Equal(t, date(2025, time.November, 11), second.PeriodStart)
	assert.InDelta(t, 5, second.TotalEarnings, 0.001)
	assert.Equal(t, 1, second.TotalErrands)
}

func TestBuildFromErrandsSortsByRunner(t *testing.T) {
	catalog := pricing.Catalog{"Yellowpad": 10}
	table := pricing.DefaultFeeTable()
	done := date(2025, time.November, 7)

	errands := []*models.Errand{
		{
			ErrandID:    "ERD00001",
			RunnerID:    "BR00002",
			Category:    models.CategoryPrinting,
			Status:      models.ErrandStatusCompleted,
			CompletedAt: &done,
		},
		{
			ErrandID:    "ERD00002",
			RunnerID:    "BR00001",
			Category:    models.CategoryPrinting,
			Status:      models.ErrandStatusCompleted,
			CompletedAt: &done,
		},
	}

	settlements, err := BuildFromErrands(errands, catalog.Lookup, table)
	require.NoError(t, err)
	require.Len(t, settlements, 2)
	assert.Equal(t, "BR00001", settlements[0].RunnerID)
	assert.Equal(t, "BR00002", settlements[1].RunnerID)
}

func TestPeriodEndedBefore(t *testing.T) {
	p, err := PeriodEndedBefore(date(2025, time.November, 12))
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.November, 6), p.Start)
	assert.Equal(t, date(2025, time.November, 10), p.End)

	_, err = PeriodEndedBefore(time.Time{})
	require.Error(t, err)
}
