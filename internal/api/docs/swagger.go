package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// AlertResponse represents an alert with its effective configuration
type AlertResponse struct {
	AlertKey          string  `json:"alert_key" example:"doorbell"`
	IsActive          bool    `json:"is_active" example:"true"`
	Priority          *int    `json:"priority" example:"1"`
	EffectivePriority int     `json:"effective_priority" example:"1"`
	LastTriggeredAt   string  `json:"last_triggered_at" example:"2024-01-01T12:00:00Z"`
	Name              *string `json:"name" example:"Front Doorbell"`
	DefaultPriority   int     `json:"default_priority" example:"3"`
	LEDColor          *int    `json:"led_color" example:"240"`
	LEDEffect         *string `json:"led_effect" example:"pulse"`
	LEDBrightness     *int    `json:"led_brightness" example:"80"`
	LEDDuration       *int    `json:"led_duration" example:"30"`
	TriggerCount      int64   `json:"trigger_count" example:"7"`
}

// AlertListResponse represents a list of alerts
type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
	Count  int             `json:"count" example:"2"`
}

// CurrentDisplayResponse represents the alert currently owning the display
type CurrentDisplayResponse struct {
	IsAllClear  bool           `json:"is_all_clear" example:"false"`
	Alert       *AlertResponse `json:"alert"`
	ActiveCount int            `json:"active_count" example:"2"`
}

// TriggerRequest represents the optional trigger body
type TriggerRequest struct {
	Priority *int    `json:"priority" example:"1"`
	Note     *string `json:"note" example:"motion at front door"`
}

// ClearRequest represents the optional clear body
type ClearRequest struct {
	Note *string `json:"note" example:"acknowledged"`
}

// BulkClearResponse represents the outcome of a clear-all
type BulkClearResponse struct {
	ClearedCount int      `json:"cleared_count" example:"2"`
	ClearedKeys  []string `json:"cleared_keys" example:"doorbell,smoke_detector"`
}

// ConfigResponse represents a stored alert configuration
type ConfigResponse struct {
	ID              int64   `json:"id" example:"1"`
	AlertKey        string  `json:"alert_key" example:"doorbell"`
	Name            *string `json:"name" example:"Front Doorbell"`
	Description     *string `json:"description" example:"Rings when someone is at the door"`
	DefaultPriority int     `json:"default_priority" example:"3"`
	LEDColor        *int    `json:"led_color" example:"240"`
	LEDEffect       *string `json:"led_effect" example:"pulse"`
	LEDBrightness   *int    `json:"led_brightness" example:"80"`
	LEDDuration     *int    `json:"led_duration" example:"30"`
	TriggerCount    int64   `json:"trigger_count" example:"7"`
	CreatedAt       string  `json:"created_at" example:"2024-01-01T00:00:00Z"`
	UpdatedAt       string  `json:"updated_at" example:"2024-01-01T00:00:00Z"`
}

// ConfigListResponse represents a list of configurations
type ConfigListResponse struct {
	Configs []ConfigResponse `json:"configs"`
	Count   int              `json:"count" example:"5"`
}

// CreateConfigRequest represents the create config body
type CreateConfigRequest struct {
	AlertKey        string  `json:"alert_key" example:"doorbell"`
	Name            *string `json:"name" example:"Front Doorbell"`
	Description     *string `json:"description" example:"Rings when someone is at the door"`
	DefaultPriority int     `json:"default_priority" example:"3"`
	LEDColor        *int    `json:"led_color" example:"240"`
	LEDEffect       *string `json:"led_effect" example:"pulse"`
	LEDBrightness   *int    `json:"led_brightness" example:"80"`
	LEDDuration     *int    `json:"led_duration" example:"30"`
}

// KeySummaryResponse represents one row of the keys overview
type KeySummaryResponse struct {
	AlertKey        string  `json:"alert_key" example:"doorbell"`
	Name            *string `json:"name" example:"Front Doorbell"`
	DefaultPriority int     `json:"default_priority" example:"3"`
	IsActive        bool    `json:"is_active" example:"true"`
	LastTriggeredAt *string `json:"last_triggered_at" example:"2024-01-01T12:00:00Z"`
	TriggerCount    int64   `json:"trigger_count" example:"7"`
}

// SummaryListResponse represents the keys overview
type SummaryListResponse struct {
	Keys  []KeySummaryResponse `json:"keys"`
	Count int                  `json:"count" example:"5"`
}

// HistoryEventResponse represents one audit event
type HistoryEventResponse struct {
	ID        int64   `json:"id" example:"42"`
	AlertKey  string  `json:"alert_key" example:"doorbell"`
	Action    string  `json:"action" example:"triggered"`
	Note      *string `json:"note" example:"motion at front door"`
	CreatedAt string  `json:"created_at" example:"2024-01-01T12:00:00Z"`
}

// HistoryPageResponse represents one page of audit events
type HistoryPageResponse struct {
	Items      []HistoryEventResponse `json:"items"`
	Total      int64                  `json:"total" example:"120"`
	Page       int                    `json:"page" example:"1"`
	PageSize   int                    `json:"page_size" example:"50"`
	TotalPages int                    `json:"total_pages" example:"3"`
}

// DashboardStatsResponse represents the dashboard counters
type DashboardStatsResponse struct {
	TotalAlertsToday int64 `json:"total_alerts_today" example:"12"`
	CriticalToday    int64 `json:"critical_today" example:"2"`
	AutoCleared      int64 `json:"auto_cleared" example:"4"`
	ActiveCount      int64 `json:"active_count" example:"3"`
	TotalAlertKeys   int64 `json:"total_alert_keys" example:"9"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"ALERT_NOT_FOUND"`
	Message string `json:"message" example:"Alert not found"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "LightStack Alert API",
		Version:     "v1.0.0",
		Description: "Alert state and notification engine for home automation: alerts compete for a single LED display slot by priority",
		Host:        "localhost:3000",
		Path:        "/api/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// Alerts

		endpoint.New(
			endpoint.GET,
			"/alerts",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("List alerts"),
			endpoint.WithDescription("Lists every known alert, or only the active ones when active_only is set"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("active_only", parameter.Query, parameter.WithDescription("Return only active alerts (true/false)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AlertListResponse{}, "200", "Alerts listed"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/alerts/active",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("List active alerts"),
			endpoint.WithDescription("Active alerts in display order: most urgent first"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AlertListResponse{}, "200", "Active alerts listed"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/alerts/current",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Get the alert owning the display"),
			endpoint.WithDescription("Resolves which active alert currently owns the shared display slot"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CurrentDisplayResponse{}, "200", "Current display state"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/alerts/{alert_key}",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Get one alert"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("alert_key", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AlertResponse{}, "200", "Alert found"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "ALERT_NOT_FOUND", Message: "Alert not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/alerts/{alert_key}/trigger",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Trigger an alert"),
			endpoint.WithDescription("Activates the alert, auto-registering its config on first use. An optional priority overrides the configured default for this activation."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("alert_key", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithBody(TriggerRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AlertResponse{}, "200", "Alert triggered"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_PRIORITY", Message: "Priority must be between 1 and 5"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/alerts/{alert_key}/clear",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Clear an alert"),
			endpoint.WithDescription("Deactivates the alert and resets any priority override"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("alert_key", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithBody(ClearRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AlertResponse{}, "200", "Alert cleared"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "ALERT_NOT_FOUND", Message: "Alert not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/alerts/clear-all",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Clear every active alert"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(ClearRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(BulkClearResponse{}, "200", "Alerts cleared"),
			}),
		),

		// Alert configs

		endpoint.New(
			endpoint.GET,
			"/alert-configs",
			endpoint.WithTags("Configs"),
			endpoint.WithSummary("List alert configs"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ConfigListResponse{}, "200", "Configs listed"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/alert-configs",
			endpoint.WithTags("Configs"),
			endpoint.WithSummary("Create an alert config"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(CreateConfigRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ConfigResponse{}, "201", "Config created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "MISSING_ALERT_KEY", Message: "alert_key is required"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "ALERT_CONFIG_EXISTS", Message: "Alert config already exists for this alert_key"}, "409", "Conflict"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/alert-configs/summary",
			endpoint.WithTags("Configs"),
			endpoint.WithSummary("Per-key overview"),
			endpoint.WithDescription("Every configured key joined with its live activation state"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SummaryListResponse{}, "200", "Summary listed"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/alert-configs/{alert_key}",
			endpoint.WithTags("Configs"),
			endpoint.WithSummary("Get one alert config"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("alert_key", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ConfigResponse{}, "200", "Config found"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "ALERT_CONFIG_NOT_FOUND", Message: "Alert config not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.PATCH,
			"/alert-configs/{alert_key}",
			endpoint.WithTags("Configs"),
			endpoint.WithSummary("Update an alert config"),
			endpoint.WithDescription("Partial update: omitted fields keep their stored values"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("alert_key", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithBody(CreateConfigRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ConfigResponse{}, "200", "Config updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "ALERT_CONFIG_NOT_FOUND", Message: "Alert config not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INVALID_PRIORITY", Message: "Priority must be between 1 and 5"}, "422", "Unprocessable Entity"),
			}),
		),

		endpoint.New(
			endpoint.DELETE,
			"/alert-configs/{alert_key}",
			endpoint.WithTags("Configs"),
			endpoint.WithSummary("Delete an alert config"),
			endpoint.WithDescription("Removes the config and its activation state. History is kept."),
			endpoint.WithParams(
				parameter.StrParam("alert_key", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Config deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "ALERT_CONFIG_NOT_FOUND", Message: "Alert config not found"}, "404", "Not Found"),
			}),
		),

		// History and stats

		endpoint.New(
			endpoint.GET,
			"/history",
			endpoint.WithTags("History"),
			endpoint.WithSummary("Query the audit log"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("alert_key", parameter.Query, parameter.WithDescription("Filter by alert key")),
				parameter.StrParam("action", parameter.Query, parameter.WithDescription("Filter by action (triggered/cleared)")),
				parameter.IntParam("page", parameter.Query, parameter.WithDescription("Page number (default 1)")),
				parameter.IntParam("page_size", parameter.Query, parameter.WithDescription("Page size (default 50, max 200)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HistoryPageResponse{}, "200", "History page"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/history/{alert_key}/recent",
			endpoint.WithTags("History"),
			endpoint.WithSummary("Recent events for one key"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("alert_key", parameter.Path, parameter.WithRequired()),
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Number of events (default 10, max 100)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]HistoryEventResponse{}, "200", "Recent events"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/stats/dashboard",
			endpoint.WithTags("Stats"),
			endpoint.WithSummary("Dashboard counters"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DashboardStatsResponse{}, "200", "Dashboard stats"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
