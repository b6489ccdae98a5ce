package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
)

// ErrSettlementExists is returned by CreateSettlement when a row for the
// same (runner, period start, period end) already exists. The settlement
// service treats it as a benign "concurrent writer won" outcome.
var ErrSettlementExists = errors.New("settlement already exists for runner and period")

var (
	storeInstance Store
	storeOnce     sync.Once
)

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Runner operations
	CreateRunner(reg *models.RunnerRegistration) (*models.Runner, error)
	GetRunnerByID(runnerID string) (*models.Runner, error)
	GetRunnerByPhone(phone string) (*models.Runner, error)
	GetAvailableRunners() ([]*models.Runner, error)
	UpdateRunner(runner *models.Runner) error

	// Caller operations
	CreateCaller(reg *models.CallerRegistration) (*models.Caller, error)
	GetCallerByID(callerID string) (*models.Caller, error)
	GetCallerByPhone(phone string) (*models.Caller, error)
	UpdateCaller(caller *models.Caller) error

	// Errand operations
	CreateErrand(errand *models.Errand) (*models.Errand, error)
	GetErrand(errandID string) (*models.Errand, error)
	GetAvailableErrands() ([]*models.Errand, error)
	GetErrandsByCaller(callerID string) ([]*models.Errand, error)
	GetErrandsByRunner(runnerID string) ([]*models.Errand, error)
	UpdateErrand(errand *models.Errand) error
	GetCompletedErrandsInRange(start, end time.Time) ([]*models.Errand, error)

	// Rating operations
	CreateRating(rating *models.Rating) (*models.Rating, error)
	GetRatingsForUser(userID string) ([]*models.Rating, error)
	GetRatingByErrandAndRater(errandID, raterID string) (*models.Rating, error)

	// Settlement operations
	CreateSettlement(s *models.Settlement) (*models.Settlement, error)
	GetSettlement(settlementID string) (*models.Settlement, error)
	GetSettlementByRunnerAndPeriod(runnerID string, periodStart, periodEnd time.Time) (*models.Settlement, error)
	GetSettlementsByRunner(runnerID string) ([]*models.Settlement, error)
	GetSettlementsInRange(periodStart, periodEnd time.Time) ([]*models.Settlement, error)
	UpdateSettlement(s *models.Settlement) error

	// Analytics operations
	GetRunnerStats(runnerID string) (*models.RunnerStats, error)
	GetCallerStats(callerID string) (*models.CallerStats, error)
}
