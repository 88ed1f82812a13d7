package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lightstack-home/lightstack/internal/domain"
	"github.com/lightstack-home/lightstack/internal/repository"
	"github.com/lightstack-home/lightstack/internal/resolver"
	"github.com/lightstack-home/lightstack/internal/ws"
)

// Broadcaster publishes one event onto the ordered subscriber stream.
type Broadcaster interface {
	Broadcast(eventType ws.EventType, data any)
}

// AlertService owns every alert mutation. Each mutation runs in a single
// database transaction, serialized per alert key, and publishes its events
// only after the transaction commits.
type AlertService struct {
	pool        repository.PgxPool
	configRepo  *repository.AlertConfigRepository
	stateRepo   *repository.AlertStateRepository
	historyRepo *repository.HistoryRepository
	broadcaster Broadcaster
	locks       *keyMutex
	logger      *slog.Logger
}

func NewAlertService(
	pool repository.PgxPool,
	configRepo *repository.AlertConfigRepository,
	stateRepo *repository.AlertStateRepository,
	historyRepo *repository.HistoryRepository,
	broadcaster Broadcaster,
	logger *slog.Logger,
) *AlertService {
	return &AlertService{
		pool:        pool,
		configRepo:  configRepo,
		stateRepo:   stateRepo,
		historyRepo: historyRepo,
		broadcaster: broadcaster,
		locks:       newKeyMutex(),
		logger:      logger,
	}
}

// mutationResult is everything a committed mutation needs to publish.
type mutationResult struct {
	view        *domain.AlertView
	previous    *domain.AlertView
	current     *domain.AlertView
	activeCount int
}

func (s *AlertService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrStorageUnavailable.WithError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal.WithError(fmt.Errorf("commit: %w", err))
	}

	return nil
}

// Trigger activates an alert. An unknown key registers its config on the fly
// with the default priority, so sensors never have to pre-provision keys.
func (s *AlertService) Trigger(ctx context.Context, alertKey string, priority *int, note *string) (*domain.AlertView, error) {
	if alertKey == "" {
		return nil, domain.ErrMissingAlertKey
	}
	if priority != nil && !domain.ValidPriority(*priority) {
		return nil, domain.ErrInvalidPriority
	}

	unlock := s.locks.LockKey(alertKey)
	defer unlock()

	var res mutationResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		stateRepo := s.stateRepo.WithTx(tx)
		configRepo := s.configRepo.WithTx(tx)
		historyRepo := s.historyRepo.WithTx(tx)

		previousActive, err := stateRepo.ListActiveViews(ctx)
		if err != nil {
			return err
		}
		res.previous = resolver.Resolve(previousActive)

		if _, err := configRepo.GetOrCreate(ctx, alertKey); err != nil {
			return err
		}

		if _, err := stateRepo.Activate(ctx, alertKey, priority, time.Now().UTC()); err != nil {
			return err
		}

		if _, err := configRepo.IncrementTriggerCount(ctx, alertKey); err != nil {
			return err
		}

		if _, err := historyRepo.Append(ctx, alertKey, domain.ActionTriggered, note); err != nil {
			return err
		}

		res.view, err = stateRepo.GetView(ctx, alertKey)
		if err != nil {
			return err
		}

		active, err := stateRepo.ListActiveViews(ctx)
		if err != nil {
			return err
		}
		res.current = resolver.Resolve(active)
		res.activeCount = len(active)

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("alert triggered",
		"alert_key", alertKey,
		"effective_priority", res.view.EffectivePriority,
		"current_changed", resolver.Changed(res.previous, res.current),
	)

	s.publishAlertEvent(ws.EventAlertTriggered, res)

	return res.view, nil
}

// Clear deactivates an alert. Clearing one that is already inactive is not an
// error: the clear is still recorded and published, which keeps retrying
// automations idempotent. Only a key that has never been triggered fails.
func (s *AlertService) Clear(ctx context.Context, alertKey string, note *string) (*domain.AlertView, error) {
	if alertKey == "" {
		return nil, domain.ErrMissingAlertKey
	}

	unlock := s.locks.LockKey(alertKey)
	defer unlock()

	var res mutationResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		stateRepo := s.stateRepo.WithTx(tx)
		historyRepo := s.historyRepo.WithTx(tx)

		previousActive, err := stateRepo.ListActiveViews(ctx)
		if err != nil {
			return err
		}
		res.previous = resolver.Resolve(previousActive)

		if _, err := stateRepo.Deactivate(ctx, alertKey); err != nil {
			return err
		}

		if _, err := historyRepo.Append(ctx, alertKey, domain.ActionCleared, note); err != nil {
			return err
		}

		res.view, err = stateRepo.GetView(ctx, alertKey)
		if err != nil {
			return err
		}

		active, err := stateRepo.ListActiveViews(ctx)
		if err != nil {
			return err
		}
		res.current = resolver.Resolve(active)
		res.activeCount = len(active)

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("alert cleared",
		"alert_key", alertKey,
		"current_changed", resolver.Changed(res.previous, res.current),
	)

	s.publishAlertEvent(ws.EventAlertCleared, res)

	return res.view, nil
}

// ClearAll deactivates every active alert as one batch and reports exactly
// the keys that batch cleared. Clearing nothing is a valid, empty result.
func (s *AlertService) ClearAll(ctx context.Context, note *string) (*domain.BulkClearResult, error) {
	unlock := s.locks.LockAll()
	defer unlock()

	var (
		previous    *domain.AlertView
		current     *domain.AlertView
		activeCount int
		keys        []string
	)
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		stateRepo := s.stateRepo.WithTx(tx)
		historyRepo := s.historyRepo.WithTx(tx)

		previousActive, err := stateRepo.ListActiveViews(ctx)
		if err != nil {
			return err
		}
		previous = resolver.Resolve(previousActive)

		keys, err = stateRepo.DeactivateAll(ctx)
		if err != nil {
			return err
		}

		for _, key := range keys {
			if _, err := historyRepo.Append(ctx, key, domain.ActionCleared, note); err != nil {
				return err
			}
		}

		// The post-batch winner is re-read rather than assumed empty, so a
		// row activated by a concurrent writer would still be reported.
		remaining, err := stateRepo.ListActiveViews(ctx)
		if err != nil {
			return err
		}
		current = resolver.Resolve(remaining)
		activeCount = len(remaining)

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(keys)
	result := &domain.BulkClearResult{
		ClearedCount: len(keys),
		ClearedKeys:  keys,
	}

	s.logger.Info("all alerts cleared", "cleared_count", result.ClearedCount)

	s.broadcaster.Broadcast(ws.EventAllAlertsCleared, ws.AllAlertsClearedData{
		ClearedCount: result.ClearedCount,
		ClearedKeys:  result.ClearedKeys,
	})

	if resolver.Changed(previous, current) {
		s.broadcaster.Broadcast(ws.EventCurrentAlertChanged, ws.CurrentAlertChangedData{
			Previous:    previous,
			Current:     current,
			IsAllClear:  current == nil,
			ActiveCount: activeCount,
		})
	}

	return result, nil
}

// publishAlertEvent emits the mutation event and, when the winner of the
// display slot moved, a current_alert_changed after it. Both land on the same
// ordered stream, so subscribers always see the cause before the effect.
func (s *AlertService) publishAlertEvent(eventType ws.EventType, res mutationResult) {
	changed := resolver.Changed(res.previous, res.current)

	s.broadcaster.Broadcast(eventType, ws.AlertEventData{
		Alert:           res.view,
		PreviousCurrent: res.previous,
		NewCurrent:      res.current,
		CurrentChanged:  changed,
	})

	if changed {
		s.broadcaster.Broadcast(ws.EventCurrentAlertChanged, ws.CurrentAlertChangedData{
			Previous:    res.previous,
			Current:     res.current,
			IsAllClear:  res.current == nil,
			ActiveCount: res.activeCount,
		})
	}
}

// GetCurrentDisplay resolves which alert owns the display slot right now.
func (s *AlertService) GetCurrentDisplay(ctx context.Context) (*domain.CurrentDisplay, error) {
	active, err := s.stateRepo.ListActiveViews(ctx)
	if err != nil {
		return nil, err
	}

	current := resolver.Resolve(active)

	return &domain.CurrentDisplay{
		IsAllClear:  current == nil,
		Alert:       current,
		ActiveCount: len(active),
	}, nil
}

// CurrentState is the full snapshot pushed to new websocket subscribers.
func (s *AlertService) CurrentState(ctx context.Context) (*domain.CurrentAlertState, error) {
	active, err := s.stateRepo.ListActiveViews(ctx)
	if err != nil {
		return nil, err
	}

	ordered := resolver.Sort(active)
	current := resolver.Resolve(active)

	return &domain.CurrentAlertState{
		IsAllClear:   current == nil,
		CurrentAlert: current,
		ActiveCount:  len(ordered),
		ActiveAlerts: ordered,
	}, nil
}

func (s *AlertService) GetAlert(ctx context.Context, alertKey string) (*domain.AlertView, error) {
	if alertKey == "" {
		return nil, domain.ErrMissingAlertKey
	}
	return s.stateRepo.GetView(ctx, alertKey)
}

// ListAlerts returns active alerts in display order, or every known alert
// when activeOnly is false.
func (s *AlertService) ListAlerts(ctx context.Context, activeOnly bool) ([]domain.AlertView, error) {
	if activeOnly {
		active, err := s.stateRepo.ListActiveViews(ctx)
		if err != nil {
			return nil, err
		}
		return resolver.Sort(active), nil
	}
	return s.stateRepo.ListAllViews(ctx)
}
