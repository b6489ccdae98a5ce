package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name        string
		events      []Event
		wantAverage float64
		wantTotal   int
	}{
		{
			name: "weighted average over-weights high ratings",
			events: []Event{
				{RatedUserID: "BR1", RaterID: "BC1", Score: 5},
				{RatedUserID: "BR1", RaterID: "BC2", Score: 5},
				{RatedUserID: "BR1", RaterID: "BC3", Score: 4},
			},
			// sum(r^2) = 66, sum(r) = 14, 66/14 = 4.714... -> 4.71
			wantAverage: 4.71,
			wantTotal:   3,
		},
		{
			name: "single rating returns itself",
			events: []Event{
				{RatedUserID: "BR1", RaterID: "BC1", Score: 3},
			},
			wantAverage: 3,
			wantTotal:   1,
		},
		{
			name:        "empty set yields zeros",
			events:      nil,
			wantAverage: 0,
			wantTotal:   0,
		},
		{
			name: "self-ratings are excluded",
			events: []Event{
				{RatedUserID: "BR1", RaterID: "BR1", Score: 5},
				{RatedUserID: "BR1", RaterID: "BC1", Score: 2},
			},
			wantAverage: 2,
			wantTotal:   1,
		},
		{
			name: "only self-ratings yields zeros",
			events: []Event{
				{RatedUserID: "BR1", RaterID: "BR1", Score: 5},
			},
			wantAverage: 0,
			wantTotal:   0,
		},
		{
			name: "mixed scores",
			events: []Event{
				{RatedUserID: "BR1", RaterID: "BC1", Score: 1},
				{RatedUserID: "BR1", RaterID: "BC2", Score: 5},
			},
			// sum(r^2) = 26, sum(r) = 6, 26/6 = 4.333... -> 4.33
			wantAverage: 4.33,
			wantTotal:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.events)
			assert.InDelta(t, tt.wantAverage, got.AverageRating, 0.001)
			assert.Equal(t, tt.wantTotal, got.TotalRatings)
		})
	}
}

func TestAggregateIdempotence(t *testing.T) {
	events := []Event{
		{RatedUserID: "BR1", RaterID: "BC1", Score: 4},
		{RatedUserID: "BR1", RaterID: "BC2", Score: 5},
	}
	first := Aggregate(events)
	second := Aggregate(events)
	assert.Equal(t, first, second)
}

func TestAggregateWeightedCustomStrategy(t *testing.T) {
	events := []Event{
		{RatedUserID: "BR1", RaterID: "BC1", Score: 1},
		{RatedUserID: "BR1", RaterID: "BC2", Score: 5},
	}

	// Uniform weights reduce to a plain mean.
	uniform := func(Event) float64 { return 1 }
	got := AggregateWeighted(events, uniform)
	assert.InDelta(t, 3, got.AverageRating, 0.001)
	assert.Equal(t, 2, got.TotalRatings)
}

func TestEventsFromModels(t *testing.T) {
	ratings := []*models.Rating{
		{RatedUserID: "BR1", RaterID: "BC1", Score: 5},
		{RatedUserID: "BR1", RaterID: "BC2", Score: 4},
	}
	events := EventsFromModels(ratings)
	assert.Len(t, events, 2)
	assert.Equal(t, "BC2", events[1].RaterID)
	assert.Equal(t, 4, events[1].Score)
}
