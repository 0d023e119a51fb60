package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/infrastructure/storage"
)

type resolverFixture struct {
	resolver    *Resolver
	trackers    *storage.MemoryTrackerRepository
	suggestions *storage.MemorySuggestionRepository
	clippings   *storage.MemoryClippingRepository
	tracker     domain.MonitoringTracker
	channel     domain.MonitoringChannel
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()

	trackers := storage.NewMemoryTrackerRepository()
	suggestions := storage.NewMemorySuggestionRepository()
	clippings := storage.NewMemoryClippingRepository()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tracker := domain.MonitoringTracker{
		ID:             "tr-1",
		OrganizationID: "org-1",
		CampaignID:     "camp-1",
		IsActive:       true,
		StartDate:      now,
		EndDate:        now.AddDate(0, 0, 30),
		Keywords:       []string{"Acme"},
	}
	require.NoError(t, trackers.Create(context.Background(), &tracker))

	resolver := NewResolver(suggestions, clippings, trackers,
		Thresholds{AutoConfirm: 0.8, Spam: 0.2}, testLogger())

	return &resolverFixture{
		resolver:    resolver,
		trackers:    trackers,
		suggestions: suggestions,
		clippings:   clippings,
		tracker:     tracker,
		channel: domain.MonitoringChannel{
			ID:              "ch-1",
			Type:            domain.ChannelRSSFeed,
			URL:             "https://techdaily.example/rss",
			PublicationName: "Tech Daily",
		},
	}
}

func (f *resolverFixture) storedTracker(t *testing.T) *domain.MonitoringTracker {
	t.Helper()
	stored, err := f.trackers.GetByID(context.Background(), f.tracker.ID)
	require.NoError(t, err)
	return stored
}

func TestResolveAutoConfirm(t *testing.T) {
	f := newResolverFixture(t)

	candidate := domain.ArticleCandidate{
		Title:       "Acme opens plant",
		URL:         "https://techdaily.example/articles/acme-plant",
		PublishedAt: f.tracker.StartDate.AddDate(0, 0, 1),
	}

	suggestion, err := f.resolver.Resolve(context.Background(), f.tracker, f.channel,
		candidate, domain.MatchResult{Confidence: 0.95, Sentiment: domain.SentimentPositive, MatchedKeyword: "Acme"})
	require.NoError(t, err)
	require.NotNil(t, suggestion)

	assert.Equal(t, domain.SuggestionConfirmed, suggestion.Status)
	require.NotEmpty(t, suggestion.ClippingID)

	clipping, err := f.clippings.GetByID(context.Background(), suggestion.ClippingID)
	require.NoError(t, err)
	assert.Equal(t, suggestion.ID, clipping.SuggestionID)
	assert.Equal(t, "system-crawler", clipping.DetectedBy)
	assert.Equal(t, domain.SentimentPositive, clipping.Sentiment)

	stored := f.storedTracker(t)
	assert.Equal(t, int64(1), stored.TotalArticlesFound)
	assert.Equal(t, int64(1), stored.TotalAutoConfirmed)
	assert.Equal(t, int64(0), stored.TotalManuallyAdded)
}

func TestResolveSpamAndPending(t *testing.T) {
	f := newResolverFixture(t)

	spam, err := f.resolver.Resolve(context.Background(), f.tracker, f.channel,
		domain.ArticleCandidate{Title: "Unrelated", URL: "https://a.example/1"},
		domain.MatchResult{Confidence: 0.1})
	require.NoError(t, err)
	assert.Equal(t, domain.SuggestionSpam, spam.Status)
	assert.Empty(t, spam.ClippingID)

	pending, err := f.resolver.Resolve(context.Background(), f.tracker, f.channel,
		domain.ArticleCandidate{Title: "Maybe Acme", URL: "https://a.example/2"},
		domain.MatchResult{Confidence: 0.5})
	require.NoError(t, err)
	assert.Equal(t, domain.SuggestionPending, pending.Status)

	stored := f.storedTracker(t)
	assert.Equal(t, int64(2), stored.TotalArticlesFound)
	assert.Equal(t, int64(0), stored.TotalAutoConfirmed)
}

func TestResolveDuplicateIsSilentlyDropped(t *testing.T) {
	f := newResolverFixture(t)

	candidate := domain.ArticleCandidate{Title: "Acme news", URL: "https://a.example/same"}
	first, err := f.resolver.Resolve(context.Background(), f.tracker, f.channel,
		candidate, domain.MatchResult{Confidence: 0.5})
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := f.resolver.Resolve(context.Background(), f.tracker, f.channel,
		candidate, domain.MatchResult{Confidence: 0.5})
	require.NoError(t, err)
	assert.Nil(t, second)

	stored := f.storedTracker(t)
	assert.Equal(t, int64(1), stored.TotalArticlesFound, "duplicates must not inflate counters")
}

func TestConfirmSuggestion(t *testing.T) {
	f := newResolverFixture(t)

	pending, err := f.resolver.Resolve(context.Background(), f.tracker, f.channel,
		domain.ArticleCandidate{Title: "Maybe Acme", URL: "https://a.example/p"},
		domain.MatchResult{Confidence: 0.5, Sentiment: domain.SentimentNeutral})
	require.NoError(t, err)

	clipping, err := f.resolver.ConfirmSuggestion(context.Background(), pending.ID, "reviewer@acme")
	require.NoError(t, err)
	assert.Equal(t, "reviewer@acme", clipping.DetectedBy)

	stored, err := f.suggestions.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SuggestionConfirmed, stored.Status)
	assert.Equal(t, clipping.ID, stored.ClippingID)

	tracker := f.storedTracker(t)
	assert.Equal(t, int64(1), tracker.TotalManuallyAdded)
	assert.Equal(t, int64(0), tracker.TotalAutoConfirmed)

	// A second confirm hits the terminal-state guard.
	_, err = f.resolver.ConfirmSuggestion(context.Background(), pending.ID, "reviewer@acme")
	var invalidState *domain.InvalidStateError
	require.ErrorAs(t, err, &invalidState)
}

func TestMarkAsSpamFromTerminalState(t *testing.T) {
	f := newResolverFixture(t)

	confirmed, err := f.resolver.Resolve(context.Background(), f.tracker, f.channel,
		domain.ArticleCandidate{Title: "Acme wins", URL: "https://a.example/c"},
		domain.MatchResult{Confidence: 0.95})
	require.NoError(t, err)

	err = f.resolver.MarkAsSpam(context.Background(), confirmed.ID, "reviewer@acme")
	var invalidState *domain.InvalidStateError
	require.ErrorAs(t, err, &invalidState)
}

func TestReviewUnknownSuggestion(t *testing.T) {
	f := newResolverFixture(t)

	_, err := f.resolver.ConfirmSuggestion(context.Background(), "missing", "reviewer@acme")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, f.resolver.MarkAsSpam(context.Background(), "missing", "reviewer@acme"), domain.ErrNotFound)
}

func TestAddManualClipping(t *testing.T) {
	f := newResolverFixture(t)

	_, err := f.resolver.AddManualClipping(context.Background(), f.tracker.ID,
		&domain.MediaClipping{Title: "Print piece"})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)

	clipping, err := f.resolver.AddManualClipping(context.Background(), f.tracker.ID,
		&domain.MediaClipping{
			Title:      "Print piece",
			URL:        "https://paper.example/acme",
			OutletType: domain.OutletPrint,
			Reach:      50000,
		})
	require.NoError(t, err)
	assert.Equal(t, f.tracker.OrganizationID, clipping.OrganizationID)
	assert.Equal(t, domain.SentimentNeutral, clipping.Sentiment)

	tracker := f.storedTracker(t)
	assert.Equal(t, int64(1), tracker.TotalManuallyAdded)
	assert.Equal(t, int64(0), tracker.TotalArticlesFound)
}
