package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightstack-home/lightstack/internal/domain"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func configRow(now time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "alert_key", "name", "description", "default_priority",
		"led_color", "led_effect", "led_brightness", "led_duration",
		"trigger_count", "created_at", "updated_at",
	}).AddRow(
		int64(1), "doorbell", strPtr("Doorbell"), (*string)(nil), 2,
		intPtr(240), strPtr("pulse"), intPtr(80), intPtr(30),
		int64(7), now, now,
	)
}

func viewRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"alert_key", "is_active", "priority", "last_triggered_at",
		"created_at", "updated_at",
		"name", "description", "default_priority",
		"led_color", "led_effect", "led_brightness", "led_duration",
		"trigger_count",
	})
}

// AlertConfigRepository tests

func TestAlertConfigRepository_GetByKey(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		alertKey  string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name:     "successful retrieval",
			alertKey: "doorbell",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM alert_configs`).
					WithArgs("doorbell").
					WillReturnRows(configRow(now))
			},
			wantErr: nil,
		},
		{
			name:     "config not found",
			alertKey: "ghost",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM alert_configs`).
					WithArgs("ghost").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrConfigNotFound,
		},
		{
			name:     "database error",
			alertKey: "doorbell",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM alert_configs`).
					WithArgs("doorbell").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: errors.New("get alert config: connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewAlertConfigRepository(mock)
			got, err := repo.GetByKey(context.Background(), tt.alertKey)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, "doorbell", got.AlertKey)
				assert.Equal(t, 2, got.DefaultPriority)
				assert.Equal(t, int64(7), got.TriggerCount)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAlertConfigRepository_Create(t *testing.T) {
	now := time.Now()

	t.Run("successful create", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`INSERT INTO alert_configs`).
			WithArgs("doorbell", strPtr("Doorbell"), (*string)(nil), 2,
				(*int)(nil), (*string)(nil), (*int)(nil), (*int)(nil)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "trigger_count", "created_at", "updated_at"}).
				AddRow(int64(1), int64(0), now, now))

		repo := NewAlertConfigRepository(mock)
		cfg := &domain.AlertConfig{
			AlertKey:        "doorbell",
			Name:            strPtr("Doorbell"),
			DefaultPriority: 2,
		}

		require.NoError(t, repo.Create(context.Background(), cfg))
		assert.Equal(t, int64(1), cfg.ID)
		assert.Equal(t, now, cfg.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate key", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`INSERT INTO alert_configs`).
			WithArgs("doorbell", (*string)(nil), (*string)(nil), 3,
				(*int)(nil), (*string)(nil), (*int)(nil), (*int)(nil)).
			WillReturnError(errors.New(`duplicate key value violates unique constraint "alert_configs_alert_key_key" (SQLSTATE 23505)`))

		repo := NewAlertConfigRepository(mock)
		err = repo.Create(context.Background(), &domain.AlertConfig{
			AlertKey:        "doorbell",
			DefaultPriority: 3,
		})

		assert.ErrorIs(t, err, domain.ErrConfigExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAlertConfigRepository_GetOrCreate(t *testing.T) {
	now := time.Now()

	t.Run("already exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM alert_configs`).
			WithArgs("doorbell").
			WillReturnRows(configRow(now))

		repo := NewAlertConfigRepository(mock)
		cfg, err := repo.GetOrCreate(context.Background(), "doorbell")

		require.NoError(t, err)
		assert.Equal(t, "doorbell", cfg.AlertKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("auto-registers with default priority", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM alert_configs`).
			WithArgs("washer_done").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO alert_configs \(alert_key, default_priority\)`).
			WithArgs("washer_done", domain.PriorityDefault).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "alert_key", "name", "description", "default_priority",
				"led_color", "led_effect", "led_brightness", "led_duration",
				"trigger_count", "created_at", "updated_at",
			}).AddRow(
				int64(2), "washer_done", (*string)(nil), (*string)(nil), domain.PriorityDefault,
				(*int)(nil), (*string)(nil), (*int)(nil), (*int)(nil),
				int64(0), now, now,
			))

		repo := NewAlertConfigRepository(mock)
		cfg, err := repo.GetOrCreate(context.Background(), "washer_done")

		require.NoError(t, err)
		assert.Equal(t, domain.PriorityDefault, cfg.DefaultPriority)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost insert race re-reads winner", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM alert_configs`).
			WithArgs("doorbell").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO alert_configs \(alert_key, default_priority\)`).
			WithArgs("doorbell", domain.PriorityDefault).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`FROM alert_configs`).
			WithArgs("doorbell").
			WillReturnRows(configRow(now))

		repo := NewAlertConfigRepository(mock)
		cfg, err := repo.GetOrCreate(context.Background(), "doorbell")

		require.NoError(t, err)
		assert.Equal(t, "doorbell", cfg.AlertKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAlertConfigRepository_Delete(t *testing.T) {
	t.Run("successful delete", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM alert_configs`).
			WithArgs("doorbell").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewAlertConfigRepository(mock)
		require.NoError(t, repo.Delete(context.Background(), "doorbell"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM alert_configs`).
			WithArgs("ghost").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewAlertConfigRepository(mock)
		err = repo.Delete(context.Background(), "ghost")

		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAlertConfigRepository_IncrementTriggerCount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SET trigger_count = trigger_count \+ 1`).
		WithArgs("doorbell").
		WillReturnRows(pgxmock.NewRows([]string{"trigger_count"}).AddRow(int64(8)))

	repo := NewAlertConfigRepository(mock)
	count, err := repo.IncrementTriggerCount(context.Background(), "doorbell")

	require.NoError(t, err)
	assert.Equal(t, int64(8), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// AlertStateRepository tests

func TestAlertStateRepository_Activate(t *testing.T) {
	now := time.Now().UTC()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO alerts`).
		WithArgs("doorbell", intPtr(1), now).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "alert_key", "is_active", "priority", "last_triggered_at", "created_at", "updated_at",
		}).AddRow(int64(1), "doorbell", true, intPtr(1), &now, now, now))

	repo := NewAlertStateRepository(mock)
	state, err := repo.Activate(context.Background(), "doorbell", intPtr(1), now)

	require.NoError(t, err)
	assert.True(t, state.IsActive)
	require.NotNil(t, state.Priority)
	assert.Equal(t, 1, *state.Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertStateRepository_Deactivate(t *testing.T) {
	now := time.Now()

	t.Run("resets the override", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SET is_active = false, priority = NULL`).
			WithArgs("doorbell").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "alert_key", "is_active", "priority", "last_triggered_at", "created_at", "updated_at",
			}).AddRow(int64(1), "doorbell", false, (*int)(nil), &now, now, now))

		repo := NewAlertStateRepository(mock)
		state, err := repo.Deactivate(context.Background(), "doorbell")

		require.NoError(t, err)
		assert.False(t, state.IsActive)
		assert.Nil(t, state.Priority)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("never triggered", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SET is_active = false, priority = NULL`).
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		repo := NewAlertStateRepository(mock)
		_, err = repo.Deactivate(context.Background(), "ghost")

		assert.ErrorIs(t, err, domain.ErrAlertNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAlertStateRepository_DeactivateAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`WHERE is_active`).
		WillReturnRows(pgxmock.NewRows([]string{"alert_key"}).
			AddRow("doorbell").
			AddRow("smoke_detector"))

	repo := NewAlertStateRepository(mock)
	keys, err := repo.DeactivateAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"doorbell", "smoke_detector"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertStateRepository_ListActiveViews(t *testing.T) {
	now := time.Now()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := viewRows().
		AddRow("doorbell", true, intPtr(1), &now, now, now,
			strPtr("Doorbell"), (*string)(nil), 2,
			intPtr(240), strPtr("pulse"), intPtr(80), intPtr(30), int64(7)).
		AddRow("washer_done", true, (*int)(nil), &now, now, now,
			(*string)(nil), (*string)(nil), 4,
			(*int)(nil), (*string)(nil), (*int)(nil), (*int)(nil), int64(2))

	mock.ExpectQuery(`JOIN alert_configs c ON c.alert_key = a.alert_key`).
		WillReturnRows(rows)

	repo := NewAlertStateRepository(mock)
	views, err := repo.ListActiveViews(context.Background())

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 1, views[0].EffectivePriority, "override wins")
	assert.Equal(t, 4, views[1].EffectivePriority, "falls back to config default")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertStateRepository_GetView_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`WHERE a.alert_key = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	repo := NewAlertStateRepository(mock)
	_, err = repo.GetView(context.Background(), "ghost")

	assert.ErrorIs(t, err, domain.ErrAlertNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// HistoryRepository tests

func TestHistoryRepository_Append(t *testing.T) {
	now := time.Now()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO alert_history`).
		WithArgs("doorbell", "triggered", strPtr("front door")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), now))

	repo := NewHistoryRepository(mock)
	event, err := repo.Append(context.Background(), "doorbell", domain.ActionTriggered, strPtr("front door"))

	require.NoError(t, err)
	assert.Equal(t, int64(42), event.ID)
	assert.Equal(t, "doorbell", event.AlertKey)
	assert.Equal(t, domain.ActionTriggered, event.Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepository_Query(t *testing.T) {
	now := time.Now()

	t.Run("filtered by key and action", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM alert_history WHERE alert_key = \$1 AND action = \$2`).
			WithArgs("doorbell", "triggered").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
		mock.ExpectQuery(`ORDER BY created_at DESC`).
			WithArgs("doorbell", "triggered", 2, 0).
			WillReturnRows(pgxmock.NewRows([]string{"id", "alert_key", "action", "note", "created_at"}).
				AddRow(int64(3), "doorbell", "triggered", (*string)(nil), now).
				AddRow(int64(2), "doorbell", "triggered", strPtr("back door"), now.Add(-time.Minute)))

		repo := NewHistoryRepository(mock)
		page, err := repo.Query(context.Background(), HistoryFilter{
			AlertKey: "doorbell",
			Action:   "triggered",
			Page:     1,
			PageSize: 2,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Items, 2)
		assert.Equal(t, int64(3), page.Items[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result has empty items", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM alert_history`).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectQuery(`ORDER BY created_at DESC`).
			WithArgs(50, 0).
			WillReturnRows(pgxmock.NewRows([]string{"id", "alert_key", "action", "note", "created_at"}))

		repo := NewHistoryRepository(mock)
		page, err := repo.Query(context.Background(), HistoryFilter{})

		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.Equal(t, 0, page.TotalPages)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHistoryRepository_CountCriticalSince(t *testing.T) {
	since := time.Now().Add(-24 * time.Hour)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`c.default_priority = 1`).
		WithArgs("triggered", since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(5)))

	repo := NewHistoryRepository(mock)
	count, err := repo.CountCriticalSince(context.Background(), since)

	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
