package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
	"github.com/gobuddy-app/gobuddy-backend/internal/storage"
)

func seedRatedParties(t *testing.T, store storage.Store) (*models.Caller, *models.Runner, *models.Errand) {
	t.Helper()

	caller, err := store.CreateCaller(&models.CallerRegistration{Name: "Ana", Phone: "09170000001", Campus: "Main"})
	require.NoError(t, err)
	runner, err := store.CreateRunner(&models.RunnerRegistration{Name: "Ben", Phone: "09170000002", Campus: "Main"})
	require.NoError(t, err)

	errand := seedCompletedErrand(t, store, caller.CallerID, runner.RunnerID, models.CategoryPrinting,
		[]models.ErrandItem{{Name: "Yellowpad", Quantity: 1}}, date(2025, time.November, 7))
	return caller, runner, errand
}

func TestRecordRatingUpdatesAggregate(t *testing.T) {
	store := storage.NewMemoryStore()
	caller, runner, errand := seedRatedParties(t, store)
	svc := NewRatingService(store)

	rec, summary, err := svc.RecordRating(&RatingRequest{
		ErrandID:    errand.ErrandID,
		RaterID:     caller.CallerID,
		RatedUserID: runner.RunnerID,
		Score:       5,
		Feedback:    "fast and friendly",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.RatingID)
	assert.InDelta(t, 5, summary.AverageRating, 0.001)
	assert.Equal(t, 1, summary.TotalRatings)

	// The aggregate is written back onto the runner row.
	updated, err := store.GetRunnerByID(runner.RunnerID)
	require.NoError(t, err)
	assert.InDelta(t, 5, updated.Rating, 0.001)
	assert.Equal(t, 1, updated.TotalRatings)
}

func TestRecordRatingWeightedAverageAcrossErrands(t *testing.T) {
	store := storage.NewMemoryStore()
	caller, runner, _ := seedRatedParties(t, store)
	svc := NewRatingService(store)

	scores := []int{5, 5, 4}
	for _, score := range scores {
		errand := seedCompletedErrand(t, store, caller.CallerID, runner.RunnerID, models.CategoryPrinting,
			[]models.ErrandItem{{Name: "Yellowpad", Quantity: 1}}, date(2025, time.November, 7))
		_, _, err := svc.RecordRating(&RatingRequest{
			ErrandID:    errand.ErrandID,
			RaterID:     caller.CallerID,
			RatedUserID: runner.RunnerID,
			Score:       score,
		})
		require.NoError(t, err)
	}

	updated, err := store.GetRunnerByID(runner.RunnerID)
	require.NoError(t, err)
	// sum(r^2)/sum(r) = 66/14
	assert.InDelta(t, 4.71, updated.Rating, 0.001)
	assert.Equal(t, 3, updated.TotalRatings)
}

func TestRecordRatingRunnerRatesCaller(t *testing.T) {
	store := storage.NewMemoryStore()
	caller, runner, errand := seedRatedParties(t, store)
	svc := NewRatingService(store)

	_, summary, err := svc.RecordRating(&RatingRequest{
		ErrandID:    errand.ErrandID,
		RaterID:     runner.RunnerID,
		RatedUserID: caller.CallerID,
		Score:       4,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalRatings)

	updated, err := store.GetCallerByID(caller.CallerID)
	require.NoError(t, err)
	assert.InDelta(t, 4, updated.Rating, 0.001)
}

func TestRecordRatingValidation(t *testing.T) {
	store := storage.NewMemoryStore()
	caller, runner, errand := seedRatedParties(t, store)
	svc := NewRatingService(store)

	tests := []struct {
		name    string
		req     *RatingRequest
		wantMsg string
	}{
		{
			name: "score out of range",
			req: &RatingRequest{
				ErrandID: errand.ErrandID, RaterID: caller.CallerID,
				RatedUserID: runner.RunnerID, Score: 6,
			},
			wantMsg: "score must be between",
		},
		{
			name: "self rating",
			req: &RatingRequest{
				ErrandID: errand.ErrandID, RaterID: runner.RunnerID,
				RatedUserID: runner.RunnerID, Score: 5,
			},
			wantMsg: "cannot rate yourself",
		},
		{
			name: "rater is not a party to the errand",
			req: &RatingRequest{
				ErrandID: errand.ErrandID, RaterID: "BC99999",
				RatedUserID: runner.RunnerID, Score: 5,
			},
			wantMsg: "caller and runner",
		},
		{
			name: "unknown errand",
			req: &RatingRequest{
				ErrandID: "ERD99999", RaterID: caller.CallerID,
				RatedUserID: runner.RunnerID, Score: 5,
			},
			wantMsg: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.RecordRating(tt.req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRecordRatingRejectsUnfinishedErrand(t *testing.T) {
	store := storage.NewMemoryStore()
	caller, err := store.CreateCaller(&models.CallerRegistration{Name: "Ana", Phone: "09170000001", Campus: "Main"})
	require.NoError(t, err)
	runner, err := store.CreateRunner(&models.RunnerRegistration{Name: "Ben", Phone: "09170000002", Campus: "Main"})
	require.NoError(t, err)

	errand, err := store.CreateErrand(&models.Errand{
		CallerID: caller.CallerID,
		Category: models.CategoryPrinting,
	})
	require.NoError(t, err)
	errand.RunnerID = runner.RunnerID
	errand.Status = models.ErrandStatusInProgress
	require.NoError(t, store.UpdateErrand(errand))

	svc := NewRatingService(store)
	_, _, err = svc.RecordRating(&RatingRequest{
		ErrandID:    errand.ErrandID,
		RaterID:     caller.CallerID,
		RatedUserID: runner.RunnerID,
		Score:       5,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not completed")
}

func TestRecordRatingRejectsDuplicate(t *testing.T) {
	store := storage.NewMemoryStore()
	caller, runner, errand := seedRatedParties(t, store)
	svc := NewRatingService(store)

	req := &RatingRequest{
		ErrandID:    errand.ErrandID,
		RaterID:     caller.CallerID,
		RatedUserID: runner.RunnerID,
		Score:       5,
	}
	_, _, err := svc.RecordRating(req)
	require.NoError(t, err)

	_, _, err = svc.RecordRating(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestGetUserRatings(t *testing.T) {
	store := storage.NewMemoryStore()
	caller, runner, errand := seedRatedParties(t, store)
	svc := NewRatingService(store)

	_, _, err := svc.RecordRating(&RatingRequest{
		ErrandID:    errand.ErrandID,
		RaterID:     caller.CallerID,
		RatedUserID: runner.RunnerID,
		Score:       4,
	})
	require.NoError(t, err)

	ratings, summary, err := svc.GetUserRatings(runner.RunnerID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.InDelta(t, 4, summary.AverageRating, 0.001)
	assert.Equal(t, 1, summary.TotalRatings)
}
