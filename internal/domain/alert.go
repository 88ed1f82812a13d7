package domain

import (
	"time"
)

// Action is the kind of event recorded in alert history.
type Action string

const (
	ActionTriggered Action = "triggered"
	ActionCleared   Action = "cleared"
)

// Priority bounds for alerts and overrides (1 = most urgent).
const (
	PriorityMin     = 1
	PriorityMax     = 5
	PriorityDefault = 3
)

// ValidPriority reports whether p is inside the accepted 1-5 range.
func ValidPriority(p int) bool {
	return p >= PriorityMin && p <= PriorityMax
}

// AlertConfig is the durable default configuration for one alert key.
type AlertConfig struct {
	ID              int64     `json:"id"`
	AlertKey        string    `json:"alert_key"`
	Name            *string   `json:"name"`
	Description     *string   `json:"description"`
	DefaultPriority int       `json:"default_priority"`
	LEDColor        *int      `json:"led_color"`
	LEDEffect       *string   `json:"led_effect"`
	LEDBrightness   *int      `json:"led_brightness"`
	LEDDuration     *int      `json:"led_duration"`
	TriggerCount    int64     `json:"trigger_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AlertConfigUpdate carries the editable fields for a partial config update.
// Nil fields are left untouched.
type AlertConfigUpdate struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	DefaultPriority *int    `json:"default_priority"`
	LEDColor        *int    `json:"led_color"`
	LEDEffect       *string `json:"led_effect"`
	LEDBrightness   *int    `json:"led_brightness"`
	LEDDuration     *int    `json:"led_duration"`
}

// AlertState is the mutable activation state of one alert key. Priority is
// the per-activation override; it is always nil while the alert is inactive.
type AlertState struct {
	ID              int64      `json:"id"`
	AlertKey        string     `json:"alert_key"`
	IsActive        bool       `json:"is_active"`
	Priority        *int       `json:"priority"`
	LastTriggeredAt *time.Time `json:"last_triggered_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EffectivePriority returns the override when set, else the config default.
func (s *AlertState) EffectivePriority(defaultPriority int) int {
	if s.Priority != nil {
		return *s.Priority
	}
	return defaultPriority
}

// HistoryEvent is one immutable audit record. AlertKey is a plain string on
// purpose so history survives config deletion.
type HistoryEvent struct {
	ID        int64     `json:"id"`
	AlertKey  string    `json:"alert_key"`
	Action    Action    `json:"action"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertView is the flattened state+config shape returned to callers on both
// the REST and websocket paths.
type AlertView struct {
	AlertKey          string     `json:"alert_key"`
	IsActive          bool       `json:"is_active"`
	Priority          *int       `json:"priority"`
	EffectivePriority int        `json:"effective_priority"`
	LastTriggeredAt   *time.Time `json:"last_triggered_at"`
	Name              *string    `json:"name"`
	Description       *string    `json:"description"`
	DefaultPriority   int        `json:"default_priority"`
	LEDColor          *int       `json:"led_color"`
	LEDEffect         *string    `json:"led_effect"`
	LEDBrightness     *int       `json:"led_brightness"`
	LEDDuration       *int       `json:"led_duration"`
	TriggerCount      int64      `json:"trigger_count"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ComputeEffectivePriority returns the override when set, else the default.
// Kept as an accessor so the fallback rule lives in exactly one place.
func (v *AlertView) ComputeEffectivePriority() int {
	if v.Priority != nil {
		return *v.Priority
	}
	return v.DefaultPriority
}

// CurrentDisplay is the read model for the shared display slot.
type CurrentDisplay struct {
	IsAllClear  bool       `json:"is_all_clear"`
	Alert       *AlertView `json:"alert"`
	ActiveCount int        `json:"active_count"`
}

// CurrentAlertState is the full snapshot pushed to websocket subscribers.
type CurrentAlertState struct {
	IsAllClear   bool        `json:"is_all_clear"`
	CurrentAlert *AlertView  `json:"current_alert"`
	ActiveCount  int         `json:"active_count"`
	ActiveAlerts []AlertView `json:"active_alerts"`
}

// BulkClearResult reports a clear-all outcome: exactly the keys that were
// active when the batch ran.
type BulkClearResult struct {
	ClearedCount int      `json:"cleared_count"`
	ClearedKeys  []string `json:"cleared_keys"`
}

// KeySummary is one row of the alert keys overview page.
type KeySummary struct {
	AlertKey        string     `json:"alert_key"`
	Name            *string    `json:"name"`
	DefaultPriority int        `json:"default_priority"`
	IsActive        bool       `json:"is_active"`
	LastTriggeredAt *time.Time `json:"last_triggered_at"`
	TriggerCount    int64      `json:"trigger_count"`
	LEDColor        *int       `json:"led_color"`
	LEDEffect       *string    `json:"led_effect"`
	LEDBrightness   *int       `json:"led_brightness"`
	LEDDuration     *int       `json:"led_duration"`
}

// DashboardStats holds the counters shown on the dashboard.
type DashboardStats struct {
	TotalAlertsToday int64 `json:"total_alerts_today"`
	CriticalToday    int64 `json:"critical_today"`
	AutoCleared      int64 `json:"auto_cleared"`
	ActiveCount      int64 `json:"active_count"`
	TotalAlertKeys   int64 `json:"total_alert_keys"`
}

// HistoryPage is one page of audit events ordered newest first.
type HistoryPage struct {
	Items      []HistoryEvent `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}
