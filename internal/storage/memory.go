package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
	"github.com/gobuddy-app/gobuddy-backend/internal/period"
)

// MemoryStore holds all data in memory, for local development and tests
type MemoryStore struct {
	runners     map[string]*models.Runner
	callers     map[string]*models.Caller
	errands     map[string]*models.Errand
	ratings     map[string]*models.Rating
	settlements map[string]*models.Settlement

	// settlementKeys indexes settlements by (runner, period) so the store can
	// enforce the composite unique key the way the database does.
	settlementKeys map[string]string

	// Mutexes for thread safety
	runnerMu     sync.RWMutex
	callerMu     sync.RWMutex
	errandMu     sync.RWMutex
	ratingMu     sync.RWMutex
	settlementMu sync.RWMutex

	// Counters for ID generation
	runnerCounter     int
	callerCounter     int
	errandCounter     int
	settlementCounter int
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runners:        make(map[string]*models.Runner),
		callers:        make(map[string]*models.Caller),
		errands:        make(map[string]*models.Errand),
		ratings:        make(map[string]*models.Rating),
		settlements:    make(map[string]*models.Settlement),
		settlementKeys: make(map[string]string),
	}
}

func settlementKey(runnerID string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s", runnerID, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// Runner operations

func (m *MemoryStore) CreateRunner(reg *models.RunnerRegistration) (*models.Runner, error) {
	m.runnerMu.Lock()
	defer m.runnerMu.Unlock()

	phone := models.NormalizePhone(reg.Phone)
	for _, r := range m.runners {
		if r.Phone == phone {
			return nil, fmt.Errorf("runner already registered")
		}
	}

	m.runnerCounter++
	runner := &models.Runner{
		RunnerID:  fmt.Sprintf("BR%05d", m.runnerCounter),
		Name:      reg.Name,
		Phone:     phone,
		Campus:    reg.Campus,
		Course:    reg.Course,
		Available: true,
	}
	runner.CreatedAt = time.Now()
	runner.UpdatedAt = time.Now()

	m.runners[runner.RunnerID] = runner
	return runner, nil
}

func (m *MemoryStore) GetRunnerByID(runnerID string) (*models.Runner, error) {
	m.runnerMu.RLock()
	defer m.runnerMu.RUnlock()

	runner, exists := m.runners[runnerID]
	if !exists {
		return nil, fmt.Errorf("runner not found")
	}
	return runner, nil
}

func (m *MemoryStore) GetRunnerByPhone(phone string) (*models.Runner, error) {
	m.runnerMu.RLock()
	defer m.runnerMu.RUnlock()

	phone = models.NormalizePhone(phone)
	for _, runner := range m.runners {
		if runner.Phone == phone {
			return runner, nil
		}
	}
	return nil, fmt.Errorf("runner not found")
}

func (m *MemoryStore) GetAvailableRunners() ([]*models.Runner, error) {
	m.runnerMu.RLock()
	defer m.runnerMu.RUnlock()

	var runners []*models.Runner
	for _, runner := range m.runners {
		if runner.Available && !runner.IsSuspended {
			runners = append(runners, runner)
		}
	}
	return runners, nil
}

func (m *MemoryStore) UpdateRunner(runner *models.Runner) error {
	m.runnerMu.Lock()
	defer m.runnerMu.Unlock()

	if _, exists := m.runners[runner.RunnerID]; !exists {
		return fmt.Errorf("runner not found")
	}
	runner.UpdatedAt = time.Now()
	m.runners[runner.RunnerID] = runner
	return nil
}

// Caller operations

func (m *MemoryStore) CreateCaller(reg *models.CallerRegistration) (*models.Caller, error) {
	m.callerMu.Lock()
	defer m.callerMu.Unlock()

	phone := models.NormalizePhone(reg.Phone)
	for _, c := range m.callers {
		if c.Phone == phone {
			return nil, fmt.Errorf("caller already registered")
		}
	}

	m.callerCounter++
	caller := &models.Caller{
		CallerID: fmt.Sprintf("BC%05d", m.callerCounter),
		Name:     reg.Name,
		Phone:    phone,
		Campus:   reg.Campus,
	}
	caller.CreatedAt = time.Now()
	caller.UpdatedAt = time.Now()

	m.callers[caller.CallerID] = caller
	return caller, nil
}

func (m *MemoryStore) GetCallerByID(callerID string) (*models.Caller, error) {
	m.callerMu.RLock()
	defer m.callerMu.RUnlock()

	caller, exists := m.callers[callerID]
	if !exists {
		return nil, fmt.Errorf("caller not found")
	}
	return caller, nil
}

func (m *MemoryStore) GetCallerByPhone(phone string) (*models.Caller, error) {
	m.callerMu.RLock()
	defer m.callerMu.RUnlock()

	phone = models.NormalizePhone(phone)
	for _, caller := range m.callers {
		if caller.Phone == phone {
			return caller, nil
		}
	}
	return nil, fmt.Errorf("caller not found")
}

func (m *MemoryStore) UpdateCaller(caller *models.Caller) error {
	m.callerMu.Lock()
	defer m.callerMu.Unlock()

	if _, exists := m.callers[caller.CallerID]; !exists {
		return fmt.Errorf("caller not found")
	}
	caller.UpdatedAt = time.Now()
	m.callers[caller.CallerID] = caller
	return nil
}

// Errand operations

func (m *MemoryStore) CreateErrand(errand *models.Errand) (*models.Errand, error) {
	// Caller must exist before an errand can be posted
	if _, err := m.GetCallerByID(errand.CallerID); err != nil {
		return nil, err
	}

	m.errandMu.Lock()
	defer m.errandMu.Unlock()

	m.errandCounter++
	errand.ErrandID = fmt.Sprintf("ERD%05d", m.errandCounter)
	if errand.Status == "" {
		errand.Status = models.ErrandStatusPending
	}
	errand.CreatedAt = time.Now()
	errand.UpdatedAt = time.Now()
	for i := range errand.Items {
		errand.Items[i].ErrandID = errand.ErrandID
		errand.Items[i].Position = i
	}

	m.errands[errand.ErrandID] = errand
	return errand, nil
}

func (m *MemoryStore) GetErrand(errandID string) (*models.Errand, error) {
	m.errandMu.RLock()
	defer m.errandMu.RUnlock()

	errand, exists := m.errands[errandID]
	if !exists {
		return nil, fmt.Errorf("errand not found")
	}
	return errand, nil
}

func (m *MemoryStore) GetAvailableErrands() ([]*models.Errand, error) {
	m.errandMu.RLock()
	defer m.errandMu.RUnlock()

	var errands []*models.Errand
	for _, errand := range m.errands {
		if errand.Status == models.ErrandStatusPending {
			errands = append(errands, errand)
		}
	}
	return errands, nil
}

func (m *MemoryStore) GetErrandsByCaller(callerID string) ([]*models.Errand, error) {
	m.errandMu.RLock()
	defer m.errandMu.RUnlock()

	var errands []*models.Errand
	for _, errand := range m.errands {
		if errand.CallerID == callerID {
			errands = append(errands, errand)
		}
	}
	return errands, nil
}

func (m *MemoryStore) GetErrandsByRunner(runnerID string) ([]*models.Errand, error) {
	m.errandMu.RLock()
	defer m.errandMu.RUnlock()

	var errands []*models.Errand
	for _, errand := range m.errands {
		if errand.RunnerID == runnerID {
			errands = append(errands, errand)
		}
	}
	return errands, nil
}

func (m *MemoryStore) UpdateErrand(errand *models.Errand) error {
	m.errandMu.Lock()
	defer m.errandMu.Unlock()

	if _, exists := m.errands[errand.ErrandID]; !exists {
		return fmt.Errorf("errand not found")
	}
	errand.UpdatedAt = time.Now()
	m.errands[errand.ErrandID] = errand
	return nil
}

func (m *MemoryStore) GetCompletedErrandsInRange(start, end time.Time) ([]*models.Errand, error) {
	m.errandMu.RLock()
	defer m.errandMu.RUnlock()

	startDate := period.Truncate(start)
	endDate := period.Truncate(end)

	var errands []*models.Errand
	for _, errand := range m.errands {
		if !errand.IsSettleable() {
			continue
		}
		date := period.Truncate(errand.SettlementDate())
		if date.Before(startDate) || date.After(endDate) {
			continue
		}
		errands = append(errands, errand)
	}
	return errands, nil
}

// Rating operations

func (m *MemoryStore) CreateRating(rating *models.Rating) (*models.Rating, error) {
	m.ratingMu.Lock()
	defer m.ratingMu.Unlock()

	for _, r := range m.ratings {
		if r.ErrandID == rating.ErrandID && r.RaterID == rating.RaterID {
			return nil, fmt.Errorf("rating already exists")
		}
	}

	if rating.RatingID == "" {
		rating.RatingID = uuid.New().String()
	}
	rating.CreatedAt = time.Now()
	rating.UpdatedAt = time.Now()

	m.ratings[rating.RatingID] = rating
	return rating, nil
}

func (m *MemoryStore) GetRatingsForUser(userID string) ([]*models.Rating, error) {
	m.ratingMu.RLock()
	defer m.ratingMu.RUnlock()

	var ratings []*models.Rating
	for _, rating := range m.ratings {
		if rating.RatedUserID == userID {
			ratings = append(ratings, rating)
		}
	}
	return ratings, nil
}

func (m *MemoryStore) GetRatingByErrandAndRater(errandID, raterID string) (*models.Rating, error) {
	m.ratingMu.RLock()
	defer m.ratingMu.RUnlock()

	for _, rating := range m.ratings {
		if rating.ErrandID == errandID && rating.RaterID == raterID {
			return rating, nil
		}
	}
	return nil, fmt.Errorf("rating not found")
}

// Settlement operations

func (m *MemoryStore) CreateSettlement(s *models.Settlement) (*models.Settlement, error) {
	m.settlementMu.Lock()
	defer m.settlementMu.Unlock()

	key := settlementKey(s.RunnerID, s.PeriodStart, s.PeriodEnd)
	if _, exists := m.settlementKeys[key]; exists {
		return nil, ErrSettlementExists
	}

	m.settlementCounter++
	if s.SettlementID == "" {
		s.SettlementID = fmt.Sprintf("STL%05d", m.settlementCounter)
	}
	if s.Status == "" {
		s.Status = models.SettlementStatusPending
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()

	m.settlements[s.SettlementID] = s
	m.settlementKeys[key] = s.SettlementID
	return s, nil
}

func (m *MemoryStore) GetSettlement(settlementID string) (*models.Settlement, error) {
	m.settlementMu.RLock()
	defer m.settlementMu.RUnlock()

	s, exists := m.settlements[settlementID]
	if !exists {
		return nil, fmt.Errorf("settlement not found")
	}
	return s, nil
}

func (m *MemoryStore) GetSettlementByRunnerAndPeriod(runnerID string, periodStart, periodEnd time.Time) (*models.Settlement, error) {
	m.settlementMu.RLock()
	defer m.settlementMu.RUnlock()

	key := settlementKey(runnerID, periodStart, periodEnd)
	id, exists := m.settlementKeys[key]
	if !exists {
		return nil, fmt.Errorf("settlement not found")
	}
	return m.settlements[id], nil
}

func (m *MemoryStore) GetSettlementsByRunner(runnerID string) ([]*models.Settlement, error) {
	m.settlementMu.RLock()
	defer m.settlementMu.RUnlock()

	var settlements []*models.Settlement
	for _, s := range m.settlements {
		if s.RunnerID == runnerID {
			settlements = append(settlements, s)
		}
	}
	return settlements, nil
}

func (m *MemoryStore) GetSettlementsInRange(periodStart, periodEnd time.Time) ([]*models.Settlement, error) {
	m.settlementMu.RLock()
	defer m.settlementMu.RUnlock()

	startDate := period.Truncate(periodStart)
	endDate := period.Truncate(periodEnd)

	var settlements []*models.Settlement
	for _, s := range m.settlements {
		if period.Truncate(s.PeriodStart).Before(startDate) || period.Truncate(s.PeriodEnd).After(endDate) {
			continue
		}
		settlements = append(settlements, s)
	}
	return settlements, nil
}

func (m *MemoryStore) UpdateSettlement(s *models.Settlement) error {
	m.settlementMu.Lock()
	defer m.settlementMu.Unlock()

	if _, exists := m.settlements[s.SettlementID]; !exists {
		return fmt.Errorf("settlement not found")
	}
	s.UpdatedAt = time.Now()
	m.settlements[s.SettlementID] = s
	return nil
}

// Analytics operations

func (m *MemoryStore) GetRunnerStats(runnerID string) (*models.RunnerStats, error) {
	runner, err := m.GetRunnerByID(runnerID)
	if err != nil {
		return nil, err
	}

	stats := &models.RunnerStats{
		RunnerID:      runnerID,
		AverageRating: runner.Rating,
	}

	errands, _ := m.GetErrandsByRunner(runnerID)
	for _, e := range errands {
		if e.IsSettleable() {
			stats.CompletedErrands++
		}
	}

	settlements, _ := m.GetSettlementsByRunner(runnerID)
	for _, s := range settlements {
		stats.TotalEarnings += s.TotalEarnings
		if s.Status == models.SettlementStatusPending {
			stats.PendingPayout += s.TotalEarnings
		}
	}

	if !runner.UpdatedAt.IsZero() {
		lastActive := runner.UpdatedAt
		stats.LastActiveAt = &lastActive
	}
	return stats, nil
}

func (m *MemoryStore) GetCallerStats(callerID string) (*models.CallerStats, error) {
	if _, err := m.GetCallerByID(callerID); err != nil {
		return nil, err
	}

	stats := &models.CallerStats{CallerID: callerID}

	errands, _ := m.GetErrandsByCaller(callerID)
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
