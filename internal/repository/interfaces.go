package repository

import (
	"context"
	"time"

	"github.com/lightstack-home/lightstack/internal/domain"
)

// AlertConfigRepositoryInterface defines operations for alert config data access
type AlertConfigRepositoryInterface interface {
	GetByKey(ctx context.Context, alertKey string) (*domain.AlertConfig, error)
	List(ctx context.Context) ([]domain.AlertConfig, error)
	Create(ctx context.Context, c *domain.AlertConfig) error
	GetOrCreate(ctx context.Context, alertKey string) (*domain.AlertConfig, error)
	Update(ctx context.Context, alertKey string, upd domain.AlertConfigUpdate) (*domain.AlertConfig, error)
	Delete(ctx context.Context, alertKey string) error
	IncrementTriggerCount(ctx context.Context, alertKey string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// AlertStateRepositoryInterface defines operations for alert state data access
type AlertStateRepositoryInterface interface {
	Activate(ctx context.Context, alertKey string, priority *int, now time.Time) (*domain.AlertState, error)
	Deactivate(ctx context.Context, alertKey string) (*domain.AlertState, error)
	DeactivateAll(ctx context.Context) ([]string, error)
	GetByKey(ctx context.Context, alertKey string) (*domain.AlertState, error)
	GetView(ctx context.Context, alertKey string) (*domain.AlertView, error)
	ListActiveViews(ctx context.Context) ([]domain.AlertView, error)
	ListAllViews(ctx context.Context) ([]domain.AlertView, error)
	CountActive(ctx context.Context) (int64, error)
}

// HistoryRepositoryInterface defines operations for the append-only audit log
type HistoryRepositoryInterface interface {
	Append(ctx context.Context, alertKey string, action domain.Action, note *string) (*domain.HistoryEvent, error)
	Query(ctx context.Context, filter HistoryFilter) (*domain.HistoryPage, error)
	RecentFor(ctx context.Context, alertKey string, limit int) ([]domain.HistoryEvent, error)
	CountByActionSince(ctx context.Context, action domain.Action, since time.Time) (int64, error)
	CountCriticalSince(ctx context.Context, since time.Time) (int64, error)
	CountAutoClearedSince(ctx context.Context, since time.Time) (int64, error)
	TriggerCount(ctx context.Context, alertKey string) (int64, error)
}
