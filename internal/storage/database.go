package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
	"github.com/gobuddy-app/gobuddy-backend/internal/period"
)

// DatabaseStore implements Store using PostgreSQL via GORM.
// The unique index on (runner_id, period_start, period_end) is the
// serialization point for concurrent settlement creation; the connection is
// opened with TranslateError so violations come back as gorm.ErrDuplicatedKey.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given GORM connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Runner operations

func (d *DatabaseStore) CreateRunner(reg *models.RunnerRegistration) (*models.Runner, error) {
	runner := &models.Runner{
		Name:      reg.Name,
		Phone:     reg.Phone,
		Campus:    reg.Campus,
		Course:    reg.Course,
		Available: true,
	}
	if err := d.db.Create(runner).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("runner already registered")
		}
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	return runner, nil
}

func (d *DatabaseStore) GetRunnerByID(runnerID string) (*models.Runner, error) {
	var runner models.Runner
	if err := d.db.Where("runner_id = ?", runnerID).First(&runner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("runner not found")
		}
		return nil, err
	}
	return &runner, nil
}

func (d *DatabaseStore) GetRunnerByPhone(phone string) (*models.Runner, error) {
	var runner models.Runner
	if err := d.db.Where("phone = ?", models.NormalizePhone(phone)).First(&runner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("runner not found")
		}
		return nil, err
	}
	return &runner, nil
}

func (d *DatabaseStore) GetAvailableRunners() ([]*models.Runner, error) {
	var runners []*models.Runner
	err := d.db.Where("available = ? AND is_suspended = ?", true, false).Find(&runners).Error
	return runners, err
}

func (d *DatabaseStore) UpdateRunner(runner *models.Runner) error {
	return d.db.Save(runner).Error
}

// Caller operations

func (d *DatabaseStore) CreateCaller(reg *models.CallerRegistration) (*models.Caller, error) {
	caller := &models.Caller{
		Name:   reg.Name,
		Phone:  reg.Phone,
		Campus: reg.Campus,
	}
	if err := d.db.Create(caller).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("caller already registered")
		}
		return nil, fmt.Errorf("failed to create caller: %w", err)
	}
	return caller, nil
}

func (d *DatabaseStore) GetCallerByID(callerID string) (*models.Caller, error) {
	var caller models.Caller
	if err := d.db.Where("caller_id = ?", callerID).First(&caller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("caller not found")
		}
		return nil, err
	}
	return &caller, nil
}

func (d *DatabaseStore) GetCallerByPhone(phone string) (*models.Caller, error) {
	var caller models.Caller
	if err := d.db.Where("phone = ?", models.NormalizePhone(phone)).First(&caller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("caller not found")
		}
		return nil, err
	}
	return &caller, nil
}

func (d *DatabaseStore) UpdateCaller(caller *models.Caller) error {
	return d.db.Save(caller).Error
}

// Errand operations

func (d *DatabaseStore) CreateErrand(errand *models.Errand) (*models.Errand, error) {
	if _, err := d.GetCallerByID(errand.CallerID); err != nil {
		return nil, err
	}
	for i := range errand.Items {
		errand.Items[i].Position = i
	}
	if err := d.db.Create(errand).Error; err != nil {
		return nil, fmt.Errorf("failed to create errand: %w", err)
	}
	return errand, nil
}

func (d *DatabaseStore) GetErrand(errandID string) (*models.Errand, error) {
	var errand models.Errand
	err := d.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Where("errand_id = ?", errandID).First(&errand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("errand not found")
		}
		return nil, err
	}
	return &errand, nil
}

func (d *DatabaseStore) GetAvailableErrands() ([]*models.Errand, error) {
	var errands []*models.Errand
	err := d.db.Preload("Items").
		Where("status = ?", models.ErrandStatusPending).
		Order("created_at").
		Find(&errands).Error
	return errands, err
}

func (d *DatabaseStore) GetErrandsByCaller(callerID string) ([]*models.Errand, error) {
	var errands []*models.Errand
	err := d.db.Preload("Items").Where("caller_id = ?", callerID).Find(&errands).Error
	return errands, err
}

func (d *DatabaseStore) GetErrandsByRunner(runnerID string) ([]*models.Errand, error) {
	var errands []*models.Errand
	err := d.db.Preload("Items").Where("runner_id = ?", runnerID).Find(&errands).Error
	return errands, err
}

func (d *DatabaseStore) UpdateErrand(errand *models.Errand) error {
	return d.db.Save(errand).Error
}

func (d *DatabaseStore) GetCompletedErrandsInRange(start, end time.Time) ([]*models.Errand, error) {
	// end is an inclusive calendar date, so query up to the following midnight
	cutoff := period.Truncate(end).AddDate(0, 0, 1)

	var errands []*models.Errand
	err := d.db.Preload("Items").
		Where("status IN ? AND runner_id <> '' AND completed_at >= ? AND completed_at < ?",
			[]string{models.ErrandStatusCompleted, models.ErrandStatusDelivered},
			period.Truncate(start), cutoff).
		Find(&errands).Error
	return errands, err
}

// Rating operations

func (d *DatabaseStore) CreateRating(rating *models.Rating) (*models.Rating, error) {
	if err := d.db.Create(rating).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("rating already exists")
		}
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}
	return rating, nil
}

func (d *DatabaseStore) GetRatingsForUser(userID string) ([]*models.Rating, error) {
	var ratings []*models.Rating
	err := d.db.Where("rated_user_id = ?", userID).Find(&ratings).Error
	return ratings, err
}

func (d *DatabaseStore) GetRatingByErrandAndRater(errandID, raterID string) (*models.Rating, error) {
	var rating models.Rating
	err := d.db.Where("errand_id = ? AND rater_id = ?", errandID, raterID).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("rating not found")
		}
		return nil, err
	}
	return &rating, nil
}

// Settlement operations

func (d *DatabaseStore) CreateSettlement(s *models.Settlement) (*models.Settlement, error) {
	s.PeriodStart = period.Truncate(s.PeriodStart)
	s.PeriodEnd = period.Truncate(s.PeriodEnd)
	if err := d.db.Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSettlementExists
		}
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}
	return s, nil
}

func (d *DatabaseStore) GetSettlement(settlementID string) (*models.Settlement, error) {
	var s models.Settlement
	if err := d.db.Where("settlement_id = ?", settlementID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("settlement not found")
		}
		return nil, err
	}
	return &s, nil
}

func (d *DatabaseStore) GetSettlementByRunnerAndPeriod(runnerID string, periodStart, periodEnd time.Time) (*models.Settlement, error) {
	var s models.Settlement
	err := d.db.Where("runner_id = ? AND period_start = ? AND period_end = ?",
		runnerID, period.Truncate(periodStart), period.Truncate(periodEnd)).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("settlement not found")
		}
		return nil, err
	}
	return &s, nil
}

func (d *DatabaseStore) GetSettlementsByRunner(runnerID string) ([]*models.Settlement, error) {
	var settlements []*models.Settlement
	err := d.db.Where("runner_id = ?", runnerID).Order("period_start DESC").Find(&settlements).Error
	return settlements, err
}

func (d *DatabaseStore) GetSettlementsInRange(periodStart, periodEnd time.Time) ([]*models.Settlement, error) {
	var settlements []*models.Settlement
	err := d.db.Where("period_start >= ? AND period_end <= ?",
		period.Truncate(periodStart), period.Truncate(periodEnd)).
		Find(&settlements).Error
	return settlements, err
}

func (d *DatabaseStore) UpdateSettlement(s *models.Settlement) error {
	return d.db.Save(s).Error
}

// Analytics operations

func (d *DatabaseStore) GetRunnerStats(runnerID string) (*models.RunnerStats, error) {
	runner, err := d.GetRunnerByID(runnerID)
	if err != nil {
		return nil, err
	}

	stats := &models.RunnerStats{
		RunnerID:      runnerID,
		AverageRating: runner.Rating,
	}

	var completed int64
	d.db.Model(&models.Errand{}).
		Where("runner_id = ? AND status IN ?", runnerID,
			[]string{models.ErrandStatusCompleted, models.ErrandStatusDelivered}).
		Count(&completed)
	stats.CompletedErrands = int(completed)

	settlements, err := d.GetSettlementsByRunner(runnerID)
	if err != nil {
		return nil, err
	}
	for _, s := range settlements {
		stats.TotalEarnings += s.TotalEarnings
		if s.Status == models.SettlementStatusPending {
			stats.PendingPayout += s.TotalEarnings
		}
	}

	lastActive := runner.UpdatedAt
	stats.LastActiveAt = &lastActive
	return stats, nil
}

func (d *DatabaseStore) GetCallerStats(callerID string) (*models.CallerStats, error) {
	if _, err := d.GetCallerByID(callerID); err != nil {
		return nil, err
	}

	stats := &models.CallerStats{CallerID: callerID}

	errands, err := d.GetErrandsByCaller(callerID)
	if err != nil {
		return nil, err
	}
	for _, e := range errands {
		stats.TotalErrands++
		switch e.Status {
		case models.ErrandStatusCompleted, models.ErrandStatusDelivered:
			stats.CompletedErrands++
			if e.InvoiceAmount != nil {
				stats.TotalSpent += *e.InvoiceAmount
			}
		case models.ErrandStatusCancelled:
		default:
			stats.ActiveErrands++
		}
	}
	return stats, nil
}
