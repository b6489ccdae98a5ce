package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
	"github.com/gobuddy-app/gobuddy-backend/internal/rating"
	"github.com/gobuddy-app/gobuddy-backend/internal/storage"
)

// RatingService records rating events and keeps each user's persisted
// aggregate in sync with the weighted-average formula.
type RatingService struct {
	store storage.Store
}

// NewRatingService creates a rating service
func NewRatingService(store storage.Store) *RatingService {
	return &RatingService{store: store}
}

// RatingRequest is the input for recording one rating.
type RatingRequest struct {
	ErrandID    string `json:"errand_id"`
	RaterID     string `json:"rater_id"`
	RatedUserID string `json:"rated_user_id"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
}

// RecordRating validates and persists a rating event, then recomputes the
// rated user's aggregate from all their events and writes it back.
func (r *RatingService) RecordRating(req *RatingRequest) (*models.Rating, rating.Summary, error) {
	if req.Score < models.MinRatingScore || req.Score > models.MaxRatingScore {
		return nil, rating.Summary{}, fmt.Errorf("score must be between %d and %d", models.MinRatingScore, models.MaxRatingScore)
	}
	if req.RaterID == req.RatedUserID {
		return nil, rating.Summary{}, fmt.Errorf("cannot rate yourself")
	}

	errand, err := r.store.GetErrand(req.ErrandID)
	if err != nil {
		return nil, rating.Summary{}, err
	}
	if errand.Status != models.ErrandStatusCompleted && errand.Status != models.ErrandStatusDelivered {
		return nil, rating.Summary{}, fmt.Errorf("errand not completed")
	}
	if !isParty(errand, req.RaterID) || !isParty(errand, req.RatedUserID) {
		return nil, rating.Summary{}, fmt.Errorf("rating must be between the errand's caller and runner")
	}

	rec := &models.Rating{
		ErrandID:    req.ErrandID,
		RaterID:     req.RaterID,
		RatedUserID: req.RatedUserID,
		Score:       req.Score,
		Feedback:    req.Feedback,
	}
	rec, err = r.store.CreateRating(rec)
	if err != nil {
		return nil, rating.Summary{}, err
	}

	summary, err := r.refreshAggregate(req.RatedUserID)
	if err != nil {
		return nil, rating.Summary{}, err
	}

	slog.Info("Rating recorded",
		"errand_id", req.ErrandID,
		"rated_user_id", req.RatedUserID,
		"score", req.Score,
		"new_average", summary.AverageRating,
	)
	return rec, summary, nil
}

// GetUserRatings lists the rating events for one user along with their
// current aggregate.
func (r *RatingService) GetUserRatings(userID string) ([]*models.Rating, rating.Summary, error) {
	ratings, err := r.store.GetRatingsForUser(userID)
	if err != nil {
		return nil, rating.Summary{}, err
	}
	return ratings, rating.Aggregate(rating.EventsFromModels(ratings)), nil
}

// refreshAggregate recomputes a user's aggregate from all their rating
// events and persists it on the runner or caller row.
func (r *RatingService) refreshAggregate(userID string) (rating.Summary, error) {
	ratings, err := r.store.GetRatingsForUser(userID)
	if err != nil {
		return rating.Summary{}, err
	}
	summary := rating.Aggregate(rating.EventsFromModels(ratings))

	// Runner and caller IDs carry their role prefix, but fall through to a
	// lookup on both tables so imported IDs still resolve.
	if strings.HasPrefix(userID, "BR") {
		if runner, err := r.store.GetRunnerByID(userID); err == nil {
			runner.SetRating(summary.AverageRating, summary.TotalRatings)
			return summary, r.store.UpdateRunner(runner)
		}
	}
	if caller, err := r.store.GetCallerByID(userID); err == nil {
		caller.SetRating(summary.AverageRating, summary.TotalRatings)
		return summary, r.store.UpdateCaller(caller)
	}
	if runner, err := r.store.GetRunnerByID(userID); err == nil {
		runner.SetRating(summary.AverageRating, summary.TotalRatings)
		return summary, r.store.UpdateRunner(runner)
	}
	return rating.Summary{}, fmt.Errorf("rated user not found")
}

func isParty(e *models.Errand, userID string) bool {
	return userID != "" && (userID == e.CallerID || userID == e.RunnerID)
}
