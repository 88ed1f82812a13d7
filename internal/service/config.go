package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lightstack-home/lightstack/internal/domain"
	"github.com/lightstack-home/lightstack/internal/repository"
)

// ConfigService manages the durable per-key defaults: priority and the LED
// rendering hints the display companion reads.
type ConfigService struct {
	configRepo repository.AlertConfigRepositoryInterface
	stateRepo  repository.AlertStateRepositoryInterface
	logger     *slog.Logger
}

func NewConfigService(
	configRepo repository.AlertConfigRepositoryInterface,
	stateRepo repository.AlertStateRepositoryInterface,
	logger *slog.Logger,
) *ConfigService {
	return &ConfigService{
		configRepo: configRepo,
		stateRepo:  stateRepo,
		logger:     logger,
	}
}

func validateLEDFields(color *int, brightness *int, duration *int) error {
	if color != nil && (*color < 0 || *color > 255) {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("led_color must be between 0 and 255"))
	}
	if brightness != nil && (*brightness < 0 || *brightness > 100) {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("led_brightness must be between 0 and 100"))
	}
	if duration != nil && (*duration < 0 || *duration > 255) {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("led_duration must be between 0 and 255"))
	}
	return nil
}

func (s *ConfigService) Create(ctx context.Context, cfg *domain.AlertConfig) (*domain.AlertConfig, error) {
	if cfg.AlertKey == "" {
		return nil, domain.ErrMissingAlertKey
	}
	if cfg.DefaultPriority == 0 {
		cfg.DefaultPriority = domain.PriorityDefault
	}
	if !domain.ValidPriority(cfg.DefaultPriority) {
		return nil, domain.ErrInvalidPriority
	}
	if err := validateLEDFields(cfg.LEDColor, cfg.LEDBrightness, cfg.LEDDuration); err != nil {
		return nil, err
	}

	if err := s.configRepo.Create(ctx, cfg); err != nil {
		return nil, err
	}

	s.logger.Info("alert config created",
		"alert_key", cfg.AlertKey,
		"default_priority", cfg.DefaultPriority,
	)

	return cfg, nil
}

func (s *ConfigService) Get(ctx context.Context, alertKey string) (*domain.AlertConfig, error) {
	if alertKey == "" {
		return nil, domain.ErrMissingAlertKey
	}
	return s.configRepo.GetByKey(ctx, alertKey)
}

func (s *ConfigService) List(ctx context.Context) ([]domain.AlertConfig, error) {
	return s.configRepo.List(ctx)
}

func (s *ConfigService) Update(ctx context.Context, alertKey string, upd domain.AlertConfigUpdate) (*domain.AlertConfig, error) {
	if alertKey == "" {
		return nil, domain.ErrMissingAlertKey
	}
	if upd.DefaultPriority != nil && !domain.ValidPriority(*upd.DefaultPriority) {
		return nil, domain.ErrInvalidPriority
	}
	if err := validateLEDFields(upd.LEDColor, upd.LEDBrightness, upd.LEDDuration); err != nil {
		return nil, err
	}

	cfg, err := s.configRepo.Update(ctx, alertKey, upd)
	if err != nil {
		return nil, err
	}

	s.logger.Info("alert config updated", "alert_key", alertKey)

	return cfg, nil
}

// Delete removes a config and, through the cascade, its state row. History
// keeps the key's audit trail.
func (s *ConfigService) Delete(ctx context.Context, alertKey string) error {
	if alertKey == "" {
		return domain.ErrMissingAlertKey
	}

	if err := s.configRepo.Delete(ctx, alertKey); err != nil {
		return err
	}

	s.logger.Info("alert config deleted", "alert_key", alertKey)

	return nil
}

// Summary joins every config with its live activation state for the keys
// overview page. Keys that were configured but never triggered show up with
// an inactive, never-triggered state.
func (s *ConfigService) Summary(ctx context.Context) ([]domain.KeySummary, error) {
	configs, err := s.configRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	views, err := s.stateRepo.ListAllViews(ctx)
	if err != nil {
		return nil, err
	}

	states := make(map[string]*domain.AlertView, len(views))
	for i := range views {
		states[views[i].AlertKey] = &views[i]
	}

	summaries := make([]domain.KeySummary, 0, len(configs))
	for _, cfg := range configs {
		summary := domain.KeySummary{
			AlertKey:        cfg.AlertKey,
			Name:            cfg.Name,
			DefaultPriority: cfg.DefaultPriority,
			TriggerCount:    cfg.TriggerCount,
			LEDColor:        cfg.LEDColor,
			LEDEffect:       cfg.LEDEffect,
			LEDBrightness:   cfg.LEDBrightness,
			LEDDuration:     cfg.LEDDuration,
		}

		if view, ok := states[cfg.AlertKey]; ok {
			summary.IsActive = view.IsActive
			summary.LastTriggeredAt = view.LastTriggeredAt
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}
