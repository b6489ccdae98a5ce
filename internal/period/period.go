// Package period buckets transaction dates into fixed-length settlement
// periods counted from a fixed epoch date.
package period

import (
	"errors"
	"fmt"
	"time"
)

// Length is the number of days in one settlement period.
const Length = 5

// ErrInvalidDate is returned for timestamps that cannot be bucketed.
var ErrInvalidDate = errors.New("invalid date")

// Epoch is the reference date all periods are counted from.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Period is the inclusive date interval [Start, End] of one settlement bucket.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Calculate maps a transaction timestamp to its settlement period using the
// default epoch. The timestamp is truncated to its calendar date first, so
// two timestamps on the same day always land in the same period.
func Calculate(ts time.Time) (Period, error) {
	return CalculateFrom(ts, Epoch)
}

// CalculateFrom is Calculate with a configurable epoch.
//
// Dates before the epoch bucket into negative-numbered periods via floored
// division rather than erroring, so the mapping stays deterministic either
// side of the epoch.
func CalculateFrom(ts, epoch time.Time) (Period, error) {
	if ts.IsZero() {
		return Period{}, fmt.Errorf("zero timestamp: %w", ErrInvalidDate)
	}
	if epoch.IsZero() {
		return Period{}, fmt.Errorf("zero epoch: %w", ErrInvalidDate)
	}

	date := Truncate(ts)
	anchor := Truncate(epoch)

	daysSinceEpoch := int(date.Sub(anchor).Hours() / 24)
	periodNumber := floorDiv(daysSinceEpoch, Length)

	start := anchor.AddDate(0, 0, periodNumber*Length)
	return Period{
		Start: start,
		End:   start.AddDate(0, 0, Length-1),
	}, nil
}

// Truncate drops the time-of-day, keeping the timestamp's own calendar date.
func Truncate(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether the calendar date of ts falls inside the period.
func (p Period) Contains(ts time.Time) bool {
	date := Truncate(ts)
	return !date.Before(p.Start) && !date.After(p.End)
}

// Previous returns the period immediately before this one.
func (p Period) Previous() Period {
	return Period{
		Start: p.Start.AddDate(0, 0, -Length),
		End:   p.End.AddDate(0, 0, -Length),
	}
}

// String formats the period as "2006-01-02..2006-01-02".
func (p Period) String() string {
	return p.Start.Format("2006-01-02") + ".." + p.End.Format("2006-01-02")
}

// floorDiv divides rounding toward negative infinity, so pre-epoch day
// offsets still produce stable buckets.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
