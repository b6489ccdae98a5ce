package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is one feedback event tied to a completed errand.
// At most one rating per (errand, rater) pair.
type Rating struct {
	gorm.Model

	RatingID    string `json:"rating_id" gorm:"uniqueIndex"`
	ErrandID    string `json:"errand_id" gorm:"uniqueIndex:idx_rating_errand_rater"`
	RaterID     string `json:"rater_id" gorm:"uniqueIndex:idx_rating_errand_rater"`
	RatedUserID string `json:"rated_user_id" gorm:"index"`

	// Score is an integer 1-5.
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Rating score bounds
const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

// BeforeCreate hook to auto-generate RatingID
func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.RatingID == "" {
		r.RatingID = uuid.New().String()
	}
	return nil
}

// IsSelfRating reports whether the rater is rating themselves.
// Self-ratings are excluded from aggregation.
func (r *Rating) IsSelfRating() bool {
	return r.RaterID == r.RatedUserID
}
