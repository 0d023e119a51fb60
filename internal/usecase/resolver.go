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

// Thresholds are the tunable decision boundaries for the three-way
// classification.
type Thresholds struct {
	AutoConfirm float64
	Spam        float64
}

// Resolver applies the classification decision to scored candidates and
// exposes the manual confirm/spam actions.
type Resolver struct {
	suggestions ports.SuggestionRepository
	clippings   ports.ClippingRepository
	trackers    ports.TrackerRepository
	thresholds  Thresholds
	logger      *slog.Logger
	now         func() time.Time
}

// NewResolver wires the suggestion resolver.
func NewResolver(
	suggestions ports.SuggestionRepository,
	clippings ports.ClippingRepository,
	trackers ports.TrackerRepository,
	thresholds Thresholds,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		suggestions: suggestions,
		clippings:   clippings,
		trackers:    trackers,
		thresholds:  thresholds,
		logger:      logger,
		now:         time.Now,
	}
}

// Resolve classifies a scored candidate: auto-confirm into a clipping,
// flag as spam, or leave pending for human review. Returns nil when the
// candidate was a duplicate within its tracker.
func (r *Resolver) Resolve(
	ctx context.Context,
	tracker domain.MonitoringTracker,
	channel domain.MonitoringChannel,
	candidate domain.ArticleCandidate,
	match domain.MatchResult,
) (*domain.MonitoringSuggestion, error) {
	now := r.now()
	status := domain.SuggestionPending
	switch {
	case match.Confidence >= r.thresholds.AutoConfirm:
		status = domain.SuggestionConfirmed
	case match.Confidence < r.thresholds.Spam:
		status = domain.SuggestionSpam
	}

	publicationName := candidate.PublicationName
	if publicationName == "" {
		publicationName = channel.PublicationName
	}

	suggestion := &domain.MonitoringSuggestion{
		ID:              uuid.NewString(),
		OrganizationID:  tracker.OrganizationID,
		CampaignID:      tracker.CampaignID,
		TrackerID:       tracker.ID,
		ChannelID:       channel.ID,
		Status:          status,
		URL:             candidate.URL,
		NormalizedURL:   domain.NormalizeURL(candidate.URL),
		Title:           candidate.Title,
		Excerpt:         candidate.Excerpt,
		PublicationName: publicationName,
		ConfidenceScore: match.Confidence,
		Sentiment:       match.Sentiment,
		MatchedKeyword:  match.MatchedKeyword,
		PublishedAt:     candidate.PublishedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := r.suggestions.Create(ctx, suggestion)
	if err != nil {
		return nil, fmt.Errorf("create suggestion: %w", err)
	}
	if !created {
		return nil, nil
	}

	deltas := ports.CounterDeltas{ArticlesFound: 1}
	if status == domain.SuggestionConfirmed {
		if _, err := r.materializeClipping(ctx, suggestion, "system-crawler"); err != nil {
			return nil, err
		}
		deltas.AutoConfirmed = 1
	}
	if err := r.trackers.IncrementCounters(ctx, tracker.ID, deltas); err != nil {
		return nil, fmt.Errorf("increment counters: %w", err)
	}

	r.logger.Debug("candidate resolved",
		"tracker_id", tracker.ID,
		"status", status,
		"confidence", match.Confidence,
		"url", candidate.URL)
	return suggestion, nil
}

// ConfirmSuggestion is the manual pending→confirmed transition. It
// materializes a clipping and counts toward totalManuallyAdded so
// provenance stays distinguishable from auto-confirms.
func (r *Resolver) ConfirmSuggestion(ctx context.Context, id, actor string) (*domain.MediaClipping, error) {
	suggestion, err := r.suggestions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load suggestion %s: %w", id, err)
	}

	if err := r.suggestions.Transition(ctx, id, domain.SuggestionPending, domain.SuggestionConfirmed); err != nil {
		return nil, err
	}

	suggestion.Status = domain.SuggestionConfirmed
	clipping, err := r.materializeClipping(ctx, suggestion, actor)
	if err != nil {
		return nil, err
	}
	if err := r.trackers.IncrementCounters(ctx, suggestion.TrackerID, ports.CounterDeltas{ManuallyAdded: 1}); err != nil {
		return nil, fmt.Errorf("increment counters: %w", err)
	}

	r.logger.Info("suggestion confirmed", "suggestion_id", id, "actor", actor, "clipping_id", clipping.ID)
	return clipping, nil
}

// MarkAsSpam is the manual pending→spam transition.
func (r *Resolver) MarkAsSpam(ctx context.Context, id, actor string) error {
	if err := r.suggestions.Transition(ctx, id, domain.SuggestionPending, domain.SuggestionSpam); err != nil {
		return err
	}

	r.logger.Info("suggestion marked as spam", "suggestion_id", id, "actor", actor)
	return nil
}

// AddManualClipping records coverage a user found themselves, bypassing
// the suggestion flow entirely.
func (r *Resolver) AddManualClipping(ctx context.Context, trackerID string, clipping *domain.MediaClipping) (*domain.MediaClipping, error) {
	tracker, err := r.trackers.GetByID(ctx, trackerID)
	if err != nil {
		return nil, fmt.Errorf("load tracker %s: %w", trackerID, err)
	}
	if clipping.Title == "" || clipping.URL == "" {
		return nil, domain.NewValidationError("manual clipping requires title and url")
	}

	now := r.now()
	clipping.ID = uuid.NewString()
	clipping.OrganizationID = tracker.OrganizationID
	clipping.CampaignID = tracker.CampaignID
	clipping.ProjectID = tracker.ProjectID
	if clipping.Sentiment == "" {
		clipping.Sentiment = domain.SentimentNeutral
	}
	if clipping.OutletType == "" {
		clipping.OutletType = domain.OutletOnline
	}
	clipping.CreatedAt = now
	clipping.UpdatedAt = now

	if err := r.clippings.Create(ctx, clipping); err != nil {
		return nil, fmt.Errorf("create clipping: %w", err)
	}
	if err := r.trackers.IncrementCounters(ctx, trackerID, ports.CounterDeltas{ManuallyAdded: 1}); err != nil {
		return nil, fmt.Errorf("increment counters: %w", err)
	}
	return clipping, nil
}

func (r *Resolver) materializeClipping(ctx context.Context, suggestion *domain.MonitoringSuggestion, actor string) (*domain.MediaClipping, error) {
	now := r.now()
	publishedAt := suggestion.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = now
	}

	clipping := &domain.MediaClipping{
		ID:             uuid.NewString(),
		OrganizationID: suggestion.OrganizationID,
		CampaignID:     suggestion.CampaignID,
		SuggestionID:   suggestion.ID,
		Title:          suggestion.Title,
		URL:            suggestion.URL,
		Excerpt:        suggestion.Excerpt,
		OutletName:     suggestion.PublicationName,
		OutletType:     domain.OutletOnline,
		Sentiment:      suggestion.Sentiment,
		PublishedAt:    publishedAt,
		DetectedBy:     actor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if clipping.Sentiment == "" {
		clipping.Sentiment = domain.SentimentNeutral
	}

	if err := r.clippings.Create(ctx, clipping); err != nil {
		return nil, fmt.Errorf("create clipping: %w", err)
	}
	if err := r.suggestions.SetClippingID(ctx, suggestion.ID, clipping.ID); err != nil {
		return nil, fmt.Errorf("link clipping to suggestion: %w", err)
	}
	suggestion.ClippingID = clipping.ID
	return clipping, nil
}
