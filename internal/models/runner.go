package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Runner represents a BuddyRunner - a student who fulfills errand requests
type Runner struct {
	gorm.Model

	RunnerID string `json:"runner_id" gorm:"uniqueIndex"`
	Name     string `json:"name"`
	Phone    string `json:"phone" gorm:"uniqueIndex"`
	Campus   string `json:"campus"`
	Course   string `json:"course"`

	// Rating is the weighted aggregate maintained by the rating service.
	Rating       float64 `json:"rating" gorm:"default:0"`
	TotalRatings int     `json:"total_ratings" gorm:"default:0"`

	TotalErrands int  `json:"total_errands" gorm:"default:0"`
	Available    bool `json:"available" gorm:"default:true"`
	Verified     bool `json:"verified" gorm:"default:false"`
	IsSuspended  bool `json:"is_suspended" gorm:"default:false"`
}

// BeforeCreate hook to auto-generate RunnerID and normalize the phone number
func (r *Runner) BeforeCreate(tx *gorm.DB) error {
	if r.RunnerID == "" {
		r.RunnerID = fmt.Sprintf("BR%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	r.Phone = NormalizePhone(r.Phone)
	return nil
}

// RunnerRegistration is used for new runner registration
type RunnerRegistration struct {
	Name   string `json:"name" validate:"required"`
	Phone  string `json:"phone" validate:"required"`
	Campus string `json:"campus" validate:"required"`
	Course string `json:"course"`
}

// SetRating replaces the runner's aggregate rating.
func (r *Runner) SetRating(average float64, total int) {
	r.Rating = average
	r.TotalRatings = total
}

// NormalizePhone ensures phone numbers carry the +63 country prefix.
func NormalizePhone(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	if strings.HasPrefix(phone, "0") {
		return "+63" + strings.TrimPrefix(phone, "0")
	}
	return "+63" + strings.TrimPrefix(phone, "63")
}
