package service

import (
	"context"
	"time"

	"github.com/lightstack-home/lightstack/internal/domain"
	"github.com/lightstack-home/lightstack/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	maxRecentLimit  = 100
)

// HistoryService serves the append-only audit log and the dashboard counters
// derived from it.
type HistoryService struct {
	historyRepo repository.HistoryRepositoryInterface
	configRepo  repository.AlertConfigRepositoryInterface
	stateRepo   repository.AlertStateRepositoryInterface
}

func NewHistoryService(
	historyRepo repository.HistoryRepositoryInterface,
	configRepo repository.AlertConfigRepositoryInterface,
	stateRepo repository.AlertStateRepositoryInterface,
) *HistoryService {
	return &HistoryService{
		historyRepo: historyRepo,
		configRepo:  configRepo,
		stateRepo:   stateRepo,
	}
}

// Query returns one page of history, newest first. Out-of-range paging
// parameters are clamped rather than rejected.
func (s *HistoryService) Query(ctx context.Context, filter repository.HistoryFilter) (*domain.HistoryPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	if filter.Action != "" &&
		filter.Action != string(domain.ActionTriggered) &&
		filter.Action != string(domain.ActionCleared) {
		return nil, domain.ErrValidationFailed
	}

	return s.historyRepo.Query(ctx, filter)
}

// RecentFor returns the newest events for one alert key.
func (s *HistoryService) RecentFor(ctx context.Context, alertKey string, limit int) ([]domain.HistoryEvent, error) {
	if alertKey == "" {
		return nil, domain.ErrMissingAlertKey
	}
	if limit < 1 {
		limit = 10
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	return s.historyRepo.RecentFor(ctx, alertKey, limit)
}

// DashboardStats aggregates today's counters. "Today" is the current UTC day.
func (s *HistoryService) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	since := startOfDayUTC(time.Now())

	totalToday, err := s.historyRepo.CountByActionSince(ctx, domain.ActionTriggered, since)
	if err != nil {
		return nil, err
	}

	criticalToday, err := s.historyRepo.CountCriticalSince(ctx, since)
	if err != nil {
		return nil, err
	}

	autoCleared, err := s.historyRepo.CountAutoClearedSince(ctx, since)
	if err != nil {
		return nil, err
	}

	activeCount, err := s.stateRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	totalKeys, err := s.configRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardStats{
		TotalAlertsToday: totalToday,
		CriticalToday:    criticalToday,
		AutoCleared:      autoCleared,
		ActiveCount:      activeCount,
		TotalAlertKeys:   totalKeys,
	}, nil
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
