package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lightstack-home/lightstack/internal/domain"
)

const alertConfigColumns = `id, alert_key, name, description, default_priority,
		       led_color, led_effect, led_brightness, led_duration,
		       trigger_count, created_at, updated_at`

type AlertConfigRepository struct {
	db Querier
}

func NewAlertConfigRepository(db Querier) *AlertConfigRepository {
	return &AlertConfigRepository{db: db}
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *AlertConfigRepository) WithTx(tx pgx.Tx) *AlertConfigRepository {
	return &AlertConfigRepository{db: tx}
}

func (r *AlertConfigRepository) GetByKey(ctx context.Context, alertKey string) (*domain.AlertConfig, error) {
	query := `
		SELECT ` + alertConfigColumns + `
		FROM alert_configs
		WHERE alert_key = $1
	`

	cfg, err := scanConfig(r.db.QueryRow(ctx, query, alertKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alert config: %w", err)
	}

	return cfg, nil
}

func (r *AlertConfigRepository) List(ctx context.Context) ([]domain.AlertConfig, error) {
	query := `
		SELECT ` + alertConfigColumns + `
		FROM alert_configs
		ORDER BY alert_key
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list alert configs: %w", err)
	}
	defer rows.Close()

	var configs []domain.AlertConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert config: %w", err)
		}
		configs = append(configs, *cfg)
	}

	return configs, rows.Err()
}

func (r *AlertConfigRepository) Create(ctx context.Context, c *domain.AlertConfig) error {
	query := `
		INSERT INTO alert_configs (
			alert_key, name, description, default_priority,
			led_color, led_effect, led_brightness, led_duration
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, trigger_count, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		c.AlertKey, c.Name, c.Description, c.DefaultPriority,
		c.LEDColor, c.LEDEffect, c.LEDBrightness, c.LEDDuration,
	).Scan(&c.ID, &c.TriggerCount, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConfigExists
		}
		return fmt.Errorf("create alert config: %w", err)
	}

	return nil
}

// GetOrCreate returns the config for alertKey, creating one with the default
// priority if none exists. INSERT ... ON CONFLICT DO NOTHING keeps a
// concurrent auto-registration race from aborting the surrounding
// transaction; the loser of the race re-reads the winner's row.
func (r *AlertConfigRepository) GetOrCreate(ctx context.Context, alertKey string) (*domain.AlertConfig, error) {
	cfg, err := r.GetByKey(ctx, alertKey)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, domain.ErrConfigNotFound) {
		return nil, err
	}

	query := `
		INSERT INTO alert_configs (alert_key, default_priority)
		VALUES ($1, $2)
		ON CONFLICT (alert_key) DO NOTHING
		RETURNING ` + alertConfigColumns + `
	`

	cfg, err = scanConfig(r.db.QueryRow(ctx, query, alertKey, domain.PriorityDefault))
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the insert race; the row exists now.
		return r.GetByKey(ctx, alertKey)
	}
	if err != nil {
		return nil, fmt.Errorf("create alert config: %w", err)
	}

	return cfg, nil
}

func (r *AlertConfigRepository) Update(ctx context.Context, alertKey string, upd domain.AlertConfigUpdate) (*domain.AlertConfig, error) {
	query := `
		UPDATE alert_configs
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    default_priority = COALESCE($4, default_priority),
		    led_color = COALESCE($5, led_color),
		    led_effect = COALESCE($6, led_effect),
		    led_brightness = COALESCE($7, led_brightness),
		    led_duration = COALESCE($8, led_duration),
		    updated_at = NOW()
		WHERE alert_key = $1
		RETURNING ` + alertConfigColumns + `
	`

	cfg, err := scanConfig(r.db.QueryRow(ctx, query,
		alertKey, upd.Name, upd.Description, upd.DefaultPriority,
		upd.LEDColor, upd.LEDEffect, upd.LEDBrightness, upd.LEDDuration,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update alert config: %w", err)
	}

	return cfg, nil
}

// Delete removes the config; the alerts row goes with it via ON DELETE
// CASCADE. History rows are untouched.
func (r *AlertConfigRepository) Delete(ctx context.Context, alertKey string) error {
	query := `DELETE FROM alert_configs WHERE alert_key = $1`

	result, err := r.db.Exec(ctx, query, alertKey)
	if err != nil {
		return fmt.Errorf("delete alert config: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrConfigNotFound
	}

	return nil
}

func (r *AlertConfigRepository) IncrementTriggerCount(ctx context.Context, alertKey string) (int64, error) {
	query := `
		UPDATE alert_configs
		SET trigger_count = trigger_count + 1, updated_at = NOW()
		WHERE alert_key = $1
		RETURNING trigger_count
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, alertKey).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrConfigNotFound
		}
		return 0, fmt.Errorf("increment trigger count: %w", err)
	}

	return count, nil
}

func (r *AlertConfigRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM alert_configs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count alert configs: %w", err)
	}
	return count, nil
}

func scanConfig(row pgx.Row) (*domain.AlertConfig, error) {
	var c domain.AlertConfig
	err := row.Scan(
		&c.ID, &c.AlertKey, &c.Name, &c.Description, &c.DefaultPriority,
		&c.LEDColor, &c.LEDEffect, &c.LEDBrightness, &c.LEDDuration,
		&c.TriggerCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
