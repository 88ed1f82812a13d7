package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lightstack-home/lightstack/internal/domain"
)

type HistoryRepository struct {
	db Querier
}

func NewHistoryRepository(db Querier) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *HistoryRepository) WithTx(tx pgx.Tx) *HistoryRepository {
	return &HistoryRepository{db: tx}
}

// Append inserts one audit event. History rows are never updated or deleted.
func (r *HistoryRepository) Append(ctx context.Context, alertKey string, action domain.Action, note *string) (*domain.HistoryEvent, error) {
	query := `
		INSERT INTO alert_history (alert_key, action, note)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	event := &domain.HistoryEvent{
		AlertKey: alertKey,
		Action:   action,
		Note:     note,
	}

	err := r.db.QueryRow(ctx, query, alertKey, string(action), note).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	return event, nil
}

// HistoryFilter narrows a history query. Zero values mean "no filter".
type HistoryFilter struct {
	AlertKey string
	Action   string
	Page     int
	PageSize int
}

// Query returns one page of events ordered by created_at descending, plus
// the total match count for pagination.
func (r *HistoryRepository) Query(ctx context.Context, filter HistoryFilter) (*domain.HistoryPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}

	where := ""
	args := []any{}
	if filter.AlertKey != "" {
		args = append(args, filter.AlertKey)
		where = fmt.Sprintf(" WHERE alert_key = $%d", len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		if where == "" {
			where = fmt.Sprintf(" WHERE action = $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND action = $%d", len(args))
		}
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM alert_history` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}

	dataArgs := append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	dataQuery := fmt.Sprintf(`
		SELECT id, alert_key, action, note, created_at
		FROM alert_history%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)

	rows, err := r.db.Query(ctx, dataQuery, dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	items := []domain.HistoryEvent{}
	for rows.Next() {
		var e domain.HistoryEvent
		if err := rows.Scan(&e.ID, &e.AlertKey, &e.Action, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history event: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))

	return &domain.HistoryPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// RecentFor returns the newest events for one alert key.
func (r *HistoryRepository) RecentFor(ctx context.Context, alertKey string, limit int) ([]domain.HistoryEvent, error) {
	query := `
		SELECT id, alert_key, action, note, created_at
		FROM alert_history
		WHERE alert_key = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, alertKey, limit)
	if err != nil {
		return nil, fmt.Errorf("recent history: %w", err)
	}
	defer rows.Close()

	var events []domain.HistoryEvent
	for rows.Next() {
		var e domain.HistoryEvent
		if err := rows.Scan(&e.ID, &e.AlertKey, &e.Action, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// CountByActionSince counts events of one action type created at or after
// since. Used for the dashboard counters.
func (r *HistoryRepository) CountByActionSince(ctx context.Context, action domain.Action, since time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM alert_history
		WHERE action = $1 AND created_at >= $2
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, string(action), since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count history by action: %w", err)
	}

	return count, nil
}

// CountCriticalSince counts triggers of P1-configured keys since the cutoff.
func (r *HistoryRepository) CountCriticalSince(ctx context.Context, since time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM alert_history h
		JOIN alert_configs c ON c.alert_key = h.alert_key
		WHERE h.action = $1 AND h.created_at >= $2 AND c.default_priority = 1
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, string(domain.ActionTriggered), since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count critical history: %w", err)
	}

	return count, nil
}

// CountAutoClearedSince counts clears whose note marks them as automatic.
func (r *HistoryRepository) CountAutoClearedSince(ctx context.Context, since time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM alert_history
		WHERE action = $1 AND created_at >= $2 AND note ILIKE '%auto%'
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, string(domain.ActionCleared), since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count auto-cleared history: %w", err)
	}

	return count, nil
}

// TriggerCount returns how many times one key has ever been triggered,
// derived from history rather than the config counter.
func (r *HistoryRepository) TriggerCount(ctx context.Context, alertKey string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM alert_history
		WHERE alert_key = $1 AND action = $2
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, alertKey, string(domain.ActionTriggered)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count triggers: %w", err)
	}

	return count, nil
}
