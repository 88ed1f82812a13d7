package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/lightstack-home/lightstack/internal/domain"
)

// ConfigService is the slice of the config layer the config routes need.
type ConfigService interface {
	Create(ctx context.Context, cfg *domain.AlertConfig) (*domain.AlertConfig, error)
	Get(ctx context.Context, alertKey string) (*domain.AlertConfig, error)
	List(ctx context.Context) ([]domain.AlertConfig, error)
	Update(ctx context.Context, alertKey string, upd domain.AlertConfigUpdate) (*domain.AlertConfig, error)
	Delete(ctx context.Context, alertKey string) error
	Summary(ctx context.Context) ([]domain.KeySummary, error)
}

type ConfigHandler struct {
	service ConfigService
	logger  *slog.Logger
}

func NewConfigHandler(service ConfigService, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{
		service: service,
		logger:  logger,
	}
}

// CreateConfigRequest is the body of POST /api/v1/alert-configs.
type CreateConfigRequest struct {
	AlertKey        string  `json:"alert_key"`
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	DefaultPriority int     `json:"default_priority"`
	LEDColor        *int    `json:"led_color"`
	LEDEffect       *string `json:"led_effect"`
	LEDBrightness   *int    `json:"led_brightness"`
	LEDDuration     *int    `json:"led_duration"`
}

// Create POST /api/v1/alert-configs
func (h *ConfigHandler) Create(c *fiber.Ctx) error {
	var req CreateConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	cfg, err := h.service.Create(c.Context(), &domain.AlertConfig{
		AlertKey:        req.AlertKey,
		Name:            req.Name,
		Description:     req.Description,
		DefaultPriority: req.DefaultPriority,
		LEDColor:        req.LEDColor,
		LEDEffect:       req.LEDEffect,
		LEDBrightness:   req.LEDBrightness,
		LEDDuration:     req.LEDDuration,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(cfg)
}

// List GET /api/v1/alert-configs
func (h *ConfigHandler) List(c *fiber.Ctx) error {
	configs, err := h.service.List(c.Context())
	if err != nil {
		return err
	}

	if configs == nil {
		configs = []domain.AlertConfig{}
	}

	return c.JSON(fiber.Map{
		"configs": configs,
		"count":   len(configs),
	})
}

// Summary GET /api/v1/alert-configs/summary
func (h *ConfigHandler) Summary(c *fiber.Ctx) error {
	summaries, err := h.service.Summary(c.Context())
	if err != nil {
		return err
	}

	if summaries == nil {
		summaries = []domain.KeySummary{}
	}

	return c.JSON(fiber.Map{
		"keys":  summaries,
		"count": len(summaries),
	})
}

// Get GET /api/v1/alert-configs/:alert_key
func (h *ConfigHandler) Get(c *fiber.Ctx) error {
	cfg, err := h.service.Get(c.Context(), c.Params("alert_key"))
	if err != nil {
		return err
	}

	return c.JSON(cfg)
}

// Update PATCH /api/v1/alert-configs/:alert_key
func (h *ConfigHandler) Update(c *fiber.Ctx) error {
	var upd domain.AlertConfigUpdate
	if err := c.BodyParser(&upd); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	cfg, err := h.service.Update(c.Context(), c.Params("alert_key"), upd)
	if err != nil {
		return err
	}

	return c.JSON(cfg)
}

// Delete DELETE /api/v1/alert-configs/:alert_key
func (h *ConfigHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("alert_key")); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
