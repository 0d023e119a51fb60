package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/ports"
)

// AVEService computes advertising-value equivalents and manages the
// per-organization rate tables.
type AVEService struct {
	settings  ports.AVESettingsRepository
	clippings ports.ClippingRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewAVEService wires the AVE calculator.
func NewAVEService(settings ports.AVESettingsRepository, clippings ports.ClippingRepository, logger *slog.Logger) *AVEService {
	return &AVEService{
		settings:  settings,
		clippings: clippings,
		logger:    logger,
		now:       time.Now,
	}
}

// GetOrCreateSettings returns the organization's rate table, creating
// the default one on first access.
func (s *AVEService) GetOrCreateSettings(ctx context.Context, organizationID string) (*domain.AVESettings, error) {
	existing, err := s.settings.GetByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("load ave settings: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	defaults := domain.DefaultAVESettings(organizationID)
	defaults.ID = uuid.NewString()
	defaults.CreatedAt = s.now()
	defaults.UpdatedAt = defaults.CreatedAt
	if err := s.settings.Save(ctx, &defaults); err != nil {
		return nil, fmt.Errorf("create default ave settings: %w", err)
	}
	return &defaults, nil
}

// GetClipping loads one clipping for value presentation.
func (s *AVEService) GetClipping(ctx context.Context, id string) (*domain.MediaClipping, error) {
	clipping, err := s.clippings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load clipping %s: %w", id, err)
	}
	return clipping, nil
}

// CalculateAVE returns the clipping's value. A manual override on the
// record wins unchanged; otherwise the value is computed on read from
// reach, outlet type and the organization's rates. Missing optional
// inputs yield 0, never an error.
func (s *AVEService) CalculateAVE(ctx context.Context, clipping domain.MediaClipping) (float64, error) {
	if clipping.AVE != nil {
		return *clipping.AVE, nil
	}
	settings, err := s.GetOrCreateSettings(ctx, clipping.OrganizationID)
	if err != nil {
		return 0, err
	}
	return settings.Calculate(clipping.OutletType, clipping.Reach, clipping.Sentiment), nil
}

// OverrideAVE stores a manual value on the clipping; it becomes
// authoritative over any computed figure.
func (s *AVEService) OverrideAVE(ctx context.Context, clippingID string, value float64, actor string) error {
	if value < 0 {
		return domain.NewValidationError("ave override must not be negative, got %.2f", value)
	}
	clipping, err := s.clippings.GetByID(ctx, clippingID)
	if err != nil {
		return fmt.Errorf("load clipping %s: %w", clippingID, err)
	}

	clipping.AVE = &value
	clipping.UpdatedAt = s.now()
	if err := s.clippings.Update(ctx, clipping); err != nil {
		return fmt.Errorf("update clipping %s: %w", clippingID, err)
	}
	s.logger.Info("ave overridden", "clipping_id", clippingID, "value", value, "actor", actor)
	return nil
}

// OverrideSentiment corrects the advisory sentiment estimate.
func (s *AVEService) OverrideSentiment(ctx context.Context, clippingID string, sentiment domain.Sentiment, actor string) error {
	switch sentiment {
	case domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative:
	default:
		return domain.NewValidationError("unknown sentiment %q", sentiment)
	}

	clipping, err := s.clippings.GetByID(ctx, clippingID)
	if err != nil {
		return fmt.Errorf("load clipping %s: %w", clippingID, err)
	}

	clipping.Sentiment = sentiment
	clipping.UpdatedAt = s.now()
	if err := s.clippings.Update(ctx, clipping); err != nil {
		return fmt.Errorf("update clipping %s: %w", clippingID, err)
	}
	s.logger.Info("sentiment overridden", "clipping_id", clippingID, "sentiment", sentiment, "actor", actor)
	return nil
}
