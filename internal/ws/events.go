package ws

import (
	"encoding/json"
	"time"

	"github.com/lightstack-home/lightstack/internal/domain"
)

// EventType is a server-to-client event name.
type EventType string

const (
	EventConnectionEstablished EventType = "connection_established"
	EventAlertTriggered        EventType = "alert_triggered"
	EventAlertCleared          EventType = "alert_cleared"
	EventAllAlertsCleared      EventType = "all_alerts_cleared"
	EventCurrentAlertChanged   EventType = "current_alert_changed"
	EventCommandResult         EventType = "command_result"
	EventError                 EventType = "error"
)

// CommandType is a client-to-server command name.
type CommandType string

const (
	CommandPing            CommandType = "ping"
	CommandGetState        CommandType = "get_state"
	CommandGetActiveAlerts CommandType = "get_active_alerts"
	CommandGetAllAlerts    CommandType = "get_all_alerts"
	CommandTriggerAlert    CommandType = "trigger_alert"
	CommandClearAlert      CommandType = "clear_alert"
	CommandClearAllAlerts  CommandType = "clear_all_alerts"
)

// Protocol-level error codes. Command failures that originate in the alert
// engine carry the engine's own error code instead.
const (
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeUnknownCommand = "UNKNOWN_COMMAND"
)

// ServerMessage is the envelope for everything sent to subscribers.
type ServerMessage struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is the envelope for inbound commands. ID is a caller-supplied
// correlation token echoed back in the matching result or error.
type ClientMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ConnectionEstablishedData is pushed once, immediately after connect.
type ConnectionEstablishedData struct {
	State         domain.CurrentAlertState `json:"state"`
	ServerVersion string                   `json:"server_version"`
}

// AlertEventData is the payload of alert_triggered and alert_cleared.
type AlertEventData struct {
	Alert           *domain.AlertView `json:"alert"`
	PreviousCurrent *domain.AlertView `json:"previous_current"`
	NewCurrent      *domain.AlertView `json:"new_current"`
	CurrentChanged  bool              `json:"current_changed"`
}

// AllAlertsClearedData is the payload of all_alerts_cleared.
type AllAlertsClearedData struct {
	ClearedCount int      `json:"cleared_count"`
	ClearedKeys  []string `json:"cleared_keys"`
}

// CurrentAlertChangedData is the payload of current_alert_changed.
type CurrentAlertChangedData struct {
	Previous    *domain.AlertView `json:"previous"`
	Current     *domain.AlertView `json:"current"`
	IsAllClear  bool              `json:"is_all_clear"`
	ActiveCount int               `json:"active_count"`
}

// CommandResultData answers one client command, addressed by correlation id.
type CommandResultData struct {
	CommandID   string `json:"command_id,omitempty"`
	CommandType string `json:"command_type"`
	Success     bool   `json:"success"`
	Result      any    `json:"result,omitempty"`
}

// ErrorData is sent instead of a command_result when a command fails.
type ErrorData struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	CommandID string `json:"command_id,omitempty"`
}

// TriggerAlertCommand is the data of a trigger_alert command.
type TriggerAlertCommand struct {
	AlertKey string  `json:"alert_key"`
	Priority *int    `json:"priority,omitempty"`
	Note     *string `json:"note,omitempty"`
}

// ClearAlertCommand is the data of a clear_alert command.
type ClearAlertCommand struct {
	AlertKey string  `json:"alert_key"`
	Note     *string `json:"note,omitempty"`
}

// ClearAllAlertsCommand is the data of a clear_all_alerts command.
type ClearAllAlertsCommand struct {
	Note *string `json:"note,omitempty"`
}
