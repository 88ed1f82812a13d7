package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/lightstack-home/lightstack/internal/domain"
)

// AlertService is the slice of the alert engine the alert routes need.
type AlertService interface {
	Trigger(ctx context.Context, alertKey string, priority *int, note *string) (*domain.AlertView, error)
	Clear(ctx context.Context, alertKey string, note *string) (*domain.AlertView, error)
	ClearAll(ctx context.Context, note *string) (*domain.BulkClearResult, error)
	GetCurrentDisplay(ctx context.Context) (*domain.CurrentDisplay, error)
	GetAlert(ctx context.Context, alertKey string) (*domain.AlertView, error)
	ListAlerts(ctx context.Context, activeOnly bool) ([]domain.AlertView, error)
}

type AlertHandler struct {
	service AlertService
	logger  *slog.Logger
}

func NewAlertHandler(service AlertService, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{
		service: service,
		logger:  logger,
	}
}

// TriggerRequest is the optional body of a trigger call. A bare POST with no
// body is a valid trigger.
type TriggerRequest struct {
	Priority *int    `json:"priority"`
	Note     *string `json:"note"`
}

// ClearRequest is the optional body of clear and clear-all calls.
type ClearRequest struct {
	Note *string `json:"note"`
}

func parseOptionalBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	return nil
}

// Trigger POST /api/v1/alerts/:alert_key/trigger
func (h *AlertHandler) Trigger(c *fiber.Ctx) error {
	var req TriggerRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return err
	}

	view, err := h.service.Trigger(c.Context(), c.Params("alert_key"), req.Priority, req.Note)
	if err != nil {
		return err
	}

	return c.JSON(view)
}

// Clear POST /api/v1/alerts/:alert_key/clear
func (h *AlertHandler) Clear(c *fiber.Ctx) error {
	var req ClearRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return err
	}

	view, err := h.service.Clear(c.Context(), c.Params("alert_key"), req.Note)
	if err != nil {
		return err
	}

	return c.JSON(view)
}

// ClearAll POST /api/v1/alerts/clear-all
func (h *AlertHandler) ClearAll(c *fiber.Ctx) error {
	var req ClearRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return err
	}

	result, err := h.service.ClearAll(c.Context(), req.Note)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// Current GET /api/v1/alerts/current
func (h *AlertHandler) Current(c *fiber.Ctx) error {
	display, err := h.service.GetCurrentDisplay(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(display)
}

// Active GET /api/v1/alerts/active
func (h *AlertHandler) Active(c *fiber.Ctx) error {
	alerts, err := h.service.ListAlerts(c.Context(), true)
	if err != nil {
		return err
	}

	return c.JSON(alertListResponse(alerts))
}

// List GET /api/v1/alerts?active_only=true
func (h *AlertHandler) List(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active_only", false)

	alerts, err := h.service.ListAlerts(c.Context(), activeOnly)
	if err != nil {
		return err
	}

	return c.JSON(alertListResponse(alerts))
}

// Get GET /api/v1/alerts/:alert_key
func (h *AlertHandler) Get(c *fiber.Ctx) error {
	view, err := h.service.GetAlert(c.Context(), c.Params("alert_key"))
	if err != nil {
		return err
	}

	return c.JSON(view)
}

func alertListResponse(alerts []domain.AlertView) fiber.Map {
	if alerts == nil {
		alerts = []domain.AlertView{}
	}
	return fiber.Map{
		"alerts": alerts,
		"count":  len(alerts),
	}
}
