package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/lightstack-home/lightstack/internal/domain"
	"github.com/lightstack-home/lightstack/internal/repository"
)

// HistoryService is the slice of the audit layer the history and stats
// routes need.
type HistoryService interface {
	Query(ctx context.Context, filter repository.HistoryFilter) (*domain.HistoryPage, error)
	RecentFor(ctx context.Context, alertKey string, limit int) ([]domain.HistoryEvent, error)
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}

type HistoryHandler struct {
	service HistoryService
	logger  *slog.Logger
}

func NewHistoryHandler(service HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  logger,
	}
}

// List GET /api/v1/history?alert_key=&action=&page=&page_size=
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	filter := repository.HistoryFilter{
		AlertKey: c.Query("alert_key"),
		Action:   c.Query("action"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 50),
	}

	page, err := h.service.Query(c.Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(page)
}

// Recent GET /api/v1/history/:alert_key/recent?limit=
func (h *HistoryHandler) Recent(c *fiber.Ctx) error {
	events, err := h.service.RecentFor(c.Context(), c.Params("alert_key"), c.QueryInt("limit", 10))
	if err != nil {
		return err
	}

	if events == nil {
		events = []domain.HistoryEvent{}
	}

	return c.JSON(fiber.Map{
		"events": events,
		"count":  len(events),
	})
}

// Dashboard GET /api/v1/stats/dashboard
func (h *HistoryHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.service.DashboardStats(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(stats)
}
