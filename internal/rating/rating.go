// Package rating computes a user's aggregate rating from individual rating
// events using a weighted average. The default weight is the rating value
// itself, so avg = sum(r*r) / sum(r); higher ratings deliberately count for
// more. The weight function is pluggable to leave room for recency or
// reliability weighting later.
package rating

import (
	"math"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
)

// Event is one rating observation for a user.
type Event struct {
	RatedUserID string
	RaterID     string
	Score       int
}

// Summary is the aggregate rating for one user.
type Summary struct {
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
}

// WeightFunc returns the weight of one rating event in the aggregate.
type WeightFunc func(Event) float64

// WeightByRating is the default strategy: each rating is weighted by its own
// value.
func WeightByRating(e Event) float64 {
	return float64(e.Score)
}

// Aggregate computes the weighted-average summary with the default weight.
func Aggregate(events []Event) Summary {
	return AggregateWeighted(events, WeightByRating)
}

// AggregateWeighted computes sum(score x weight) / sum(weight) over the
// events, excluding self-ratings. An empty (or fully excluded) set yields
// {0, 0}. The average is rounded to 2 decimal places, half-up.
func AggregateWeighted(events []Event, weight WeightFunc) Summary {
	var weightedSum, weightTotal float64
	count := 0

	for _, e := range events {
		if e.RaterID == e.RatedUserID {
			continue
		}
		w := weight(e)
		weightedSum += float64(e.Score) * w
		weightTotal += w
		count++
	}

	if count == 0 || weightTotal == 0 {
		return Summary{}
	}

	return Summary{
		AverageRating: round2(weightedSum / weightTotal),
		TotalRatings:  count,
	}
}

// EventsFromModels converts persisted ratings into aggregation events.
func EventsFromModels(ratings []*models.Rating) []Event {
	events := make([]Event, 0, len(ratings))
	for _, r := range ratings {
		events = append(events, Event{
			RatedUserID: r.RatedUserID,
			RaterID:     r.RaterID,
			Score:       r.Score,
		})
	}
	return events
}

// round2 rounds to 2 decimal places, half-up.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
