package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Caller represents a BuddyCaller - a student who posts errand requests
type Caller struct {
	gorm.Model

	CallerID string `json:"caller_id" gorm:"uniqueIndex"`
	Name     string `json:"name"`
	Phone    string `json:"phone" gorm:"uniqueIndex"`
	Campus   string `json:"campus"`

	Rating       float64 `json:"rating" gorm:"default:0"`
	TotalRatings int     `json:"total_ratings" gorm:"default:0"`

	TotalErrands int  `json:"total_errands" gorm:"default:0"`
	IsSuspended  bool `json:"is_suspended" gorm:"default:false"`
}

// BeforeCreate hook to auto-generate CallerID and normalize the phone number
func (c *Caller) BeforeCreate(tx *gorm.DB) error {
	if c.CallerID == "" {
		c.CallerID = fmt.Sprintf("BC%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	c.Phone = NormalizePhone(c.Phone)
	return nil
}

// CallerRegistration is used for new caller registration
type CallerRegistration struct {
	Name   string `json:"name" validate:"required"`
	Phone  string `json:"phone" validate:"required"`
	Campus string `json:"campus"`
}

// SetRating replaces the caller's aggregate rating.
func (c *Caller) SetRating(average float64, total int) {
	c.Rating = average
	c.TotalRatings = total
}
