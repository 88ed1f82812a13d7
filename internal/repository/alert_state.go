package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lightstack-home/lightstack/internal/domain"
)

const alertViewColumns = `a.alert_key, a.is_active, a.priority, a.last_triggered_at,
		       a.created_at, a.updated_at,
		       c.name, c.description, c.default_priority,
		       c.led_color, c.led_effect, c.led_brightness, c.led_duration,
		       c.trigger_count`

type AlertStateRepository struct {
	db Querier
}

func NewAlertStateRepository(db Querier) *AlertStateRepository {
	return &AlertStateRepository{db: db}
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *AlertStateRepository) WithTx(tx pgx.Tx) *AlertStateRepository {
	return &AlertStateRepository{db: tx}
}

// Activate upserts the state row for alertKey: lazily created on first
// trigger, refreshed on re-trigger. The override priority is replaced
// wholesale, so a trigger without an override clears a previous one.
func (r *AlertStateRepository) Activate(ctx context.Context, alertKey string, priority *int, now time.Time) (*domain.AlertState, error) {
	query := `
		INSERT INTO alerts (alert_key, is_active, priority, last_triggered_at)
		VALUES ($1, true, $2, $3)
		ON CONFLICT (alert_key) DO UPDATE
		SET is_active = true,
		    priority = EXCLUDED.priority,
		    last_triggered_at = EXCLUDED.last_triggered_at,
		    updated_at = NOW()
		RETURNING id, alert_key, is_active, priority, last_triggered_at, created_at, updated_at
	`

	state, err := scanState(r.db.QueryRow(ctx, query, alertKey, priority, now))
	if err != nil {
		return nil, fmt.Errorf("activate alert: %w", err)
	}

	return state, nil
}

// Deactivate clears the active flag and always resets the override: an
// override is scoped to a single activation.
func (r *AlertStateRepository) Deactivate(ctx context.Context, alertKey string) (*domain.AlertState, error) {
	query := `
		UPDATE alerts
		SET is_active = false, priority = NULL, updated_at = NOW()
		WHERE alert_key = $1
		RETURNING id, alert_key, is_active, priority, last_triggered_at, created_at, updated_at
	`

	state, err := scanState(r.db.QueryRow(ctx, query, alertKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("deactivate alert: %w", err)
	}

	return state, nil
}

// DeactivateAll clears every active alert in one statement and returns
// exactly the keys that were active, as a single consistent snapshot.
func (r *AlertStateRepository) DeactivateAll(ctx context.Context) ([]string, error) {
	query := `
		UPDATE alerts
		SET is_active = false, priority = NULL, updated_at = NOW()
		WHERE is_active
		RETURNING alert_key
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("deactivate all alerts: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan cleared key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

func (r *AlertStateRepository) GetByKey(ctx context.Context, alertKey string) (*domain.AlertState, error) {
	query := `
		SELECT id, alert_key, is_active, priority, last_triggered_at, created_at, updated_at
		FROM alerts
		WHERE alert_key = $1
	`

	state, err := scanState(r.db.QueryRow(ctx, query, alertKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}

	return state, nil
}

// GetView returns the flattened state+config shape for one alert key.
func (r *AlertStateRepository) GetView(ctx context.Context, alertKey string) (*domain.AlertView, error) {
	query := `
		SELECT ` + alertViewColumns + `
		FROM alerts a
		JOIN alert_configs c ON c.alert_key = a.alert_key
		WHERE a.alert_key = $1
	`

	view, err := scanView(r.db.QueryRow(ctx, query, alertKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alert view: %w", err)
	}

	return view, nil
}

// ListActiveViews returns the active alerts unordered; callers sort with the
// resolver so the display ordering rule lives in one place.
func (r *AlertStateRepository) ListActiveViews(ctx context.Context) ([]domain.AlertView, error) {
	query := `
		SELECT ` + alertViewColumns + `
		FROM alerts a
		JOIN alert_configs c ON c.alert_key = a.alert_key
		WHERE a.is_active
	`

	return r.queryViews(ctx, query)
}

func (r *AlertStateRepository) ListAllViews(ctx context.Context) ([]domain.AlertView, error) {
	query := `
		SELECT ` + alertViewColumns + `
		FROM alerts a
		JOIN alert_configs c ON c.alert_key = a.alert_key
		ORDER BY a.alert_key
	`

	return r.queryViews(ctx, query)
}

func (r *AlertStateRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM alerts WHERE is_active`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active alerts: %w", err)
	}
	return count, nil
}

func (r *AlertStateRepository) queryViews(ctx context.Context, query string) ([]domain.AlertView, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list alert views: %w", err)
	}
	defer rows.Close()

	var views []domain.AlertView
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert view: %w", err)
		}
		views = append(views, *view)
	}

	return views, rows.Err()
}

func scanState(row pgx.Row) (*domain.AlertState, error) {
	var s domain.AlertState
	err := row.Scan(
		&s.ID, &s.AlertKey, &s.IsActive, &s.Priority,
		&s.LastTriggeredAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanView(row pgx.Row) (*domain.AlertView, error) {
	var v domain.AlertView
	err := row.Scan(
		&v.AlertKey, &v.IsActive, &v.Priority, &v.LastTriggeredAt,
		&v.CreatedAt, &v.UpdatedAt,
		&v.Name, &v.Description, &v.DefaultPriority,
		&v.LEDColor, &v.LEDEffect, &v.LEDBrightness, &v.LEDDuration,
		&v.TriggerCount,
	)
	if err != nil {
		return nil, err
	}
	v.EffectivePriority = v.ComputeEffectivePriority()
	return &v, nil
}
