package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/infrastructure/storage"
)

func newAVEFixture(t *testing.T) (*AVEService, *storage.MemoryClippingRepository) {
	t.Helper()
	clippings := storage.NewMemoryClippingRepository()
	svc := NewAVEService(storage.NewMemoryAVESettingsRepository(), clippings, testLogger())
	return svc, clippings
}

func TestGetOrCreateSettingsSeedsDefaults(t *testing.T) {
	svc, _ := newAVEFixture(t)

	settings, err := svc.GetOrCreateSettings(context.Background(), "org-1")
	require.NoError(t, err)

	assert.InDelta(t, 0.003, settings.Factors[domain.OutletPrint], 1e-9)
	assert.InDelta(t, 0.001, settings.Factors[domain.OutletOnline], 1e-9)
	assert.InDelta(t, 0.005, settings.Factors[domain.OutletBroadcast], 1e-9)
	assert.InDelta(t, 0.002, settings.Factors[domain.OutletAudio], 1e-9)
	assert.InDelta(t, 1.0, settings.SentimentMultipliers[domain.SentimentPositive], 1e-9)
	assert.InDelta(t, 0.8, settings.SentimentMultipliers[domain.SentimentNeutral], 1e-9)
	assert.InDelta(t, 0.5, settings.SentimentMultipliers[domain.SentimentNegative], 1e-9)

	// Second access returns the persisted table, not a fresh one.
	again, err := svc.GetOrCreateSettings(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, settings.ID, again.ID)
}

func TestCalculateAVE(t *testing.T) {
	svc, _ := newAVEFixture(t)

	value, err := svc.CalculateAVE(context.Background(), domain.MediaClipping{
		OrganizationID: "org-1",
		OutletType:     domain.OutletOnline,
		Reach:          10000,
		Sentiment:      domain.SentimentPositive,
	})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, value, 1e-9)

	// Neutral sentiment discounts the computed value.
	value, err = svc.CalculateAVE(context.Background(), domain.MediaClipping{
		OrganizationID: "org-1",
		OutletType:     domain.OutletPrint,
		Reach:          50000,
		Sentiment:      domain.SentimentNeutral,
	})
	require.NoError(t, err)
	assert.InDelta(t, 120.0, value, 1e-9)
}

func TestCalculateAVEMissingInputs(t *testing.T) {
	svc, _ := newAVEFixture(t)

	value, err := svc.CalculateAVE(context.Background(), domain.MediaClipping{
		OrganizationID: "org-1",
		OutletType:     domain.OutletOnline,
		Sentiment:      domain.SentimentPositive,
	})
	require.NoError(t, err)
	assert.Zero(t, value, "unknown reach must yield 0, not an error")

	value, err = svc.CalculateAVE(context.Background(), domain.MediaClipping{
		OrganizationID: "org-1",
		OutletType:     domain.OutletType("newsletter"),
		Reach:          10000,
		Sentiment:      domain.SentimentPositive,
	})
	require.NoError(t, err)
	assert.Zero(t, value, "unconfigured outlet type must yield 0")
}

func TestCalculateAVEOverrideWins(t *testing.T) {
	svc, clippings := newAVEFixture(t)

	clipping := domain.MediaClipping{
		ID:             "cl-1",
		OrganizationID: "org-1",
		OutletType:     domain.OutletOnline,
		Reach:          10000,
		Sentiment:      domain.SentimentPositive,
	}
	require.NoError(t, clippings.Create(context.Background(), &clipping))

	require.NoError(t, svc.OverrideAVE(context.Background(), "cl-1", 4200, "editor@acme"))

	stored, err := clippings.GetByID(context.Background(), "cl-1")
	require.NoError(t, err)

	value, err := svc.CalculateAVE(context.Background(), *stored)
	require.NoError(t, err)
	assert.InDelta(t, 4200.0, value, 1e-9)
}

func TestOverrideAVERejectsNegative(t *testing.T) {
	svc, _ := newAVEFixture(t)

	err := svc.OverrideAVE(context.Background(), "cl-1", -5, "editor@acme")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestOverridesUnknownClipping(t *testing.T) {
	svc, _ := newAVEFixture(t)

	require.ErrorIs(t, svc.OverrideAVE(context.Background(), "missing", 10, "editor@acme"), domain.ErrNotFound)
	require.ErrorIs(t, svc.OverrideSentiment(context.Background(), "missing", domain.SentimentPositive, "editor@acme"), domain.ErrNotFound)
}

func TestOverrideSentiment(t *testing.T) {
	svc, clippings := newAVEFixture(t)

	clipping := domain.MediaClipping{ID: "cl-1", OrganizationID: "org-1", Sentiment: domain.SentimentNeutral}
	require.NoError(t, clippings.Create(context.Background(), &clipping))

	err := svc.OverrideSentiment(context.Background(), "cl-1", domain.Sentiment("ecstatic"), "editor@acme")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)

	require.NoError(t, svc.OverrideSentiment(context.Background(), "cl-1", domain.SentimentNegative, "editor@acme"))
	stored, err := clippings.GetByID(context.Background(), "cl-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentNegative, stored.Sentiment)
}
