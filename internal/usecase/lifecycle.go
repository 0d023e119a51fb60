package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/keywords"
	"CampaignMonitor/internal/ports"
)

const defaultMonitoringPeriodDays = 30

// CreateTrackerInput carries everything needed to start monitoring a
// sent campaign. Feeds come from the publications reached by the
// campaign's distribution lists; ManualKeywords back up the company
// lookup when no client is linked.
type CreateTrackerInput struct {
	CampaignID     string
	OrganizationID string
	Feeds          []domain.PublicationFeed
	ManualKeywords []string
}

// LifecycleService owns the time-boxed monitoring window per campaign.
type LifecycleService struct {
	trackers  ports.TrackerRepository
	campaigns ports.CampaignStore
	companies ports.CompanyDirectory
	logger    *slog.Logger
	now       func() time.Time
}

// NewLifecycleService wires the tracker lifecycle manager.
func NewLifecycleService(
	trackers ports.TrackerRepository,
	campaigns ports.CampaignStore,
	companies ports.CompanyDirectory,
	logger *slog.Logger,
) *LifecycleService {
	return &LifecycleService{
		trackers:  trackers,
		campaigns: campaigns,
		companies: companies,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateForCampaign creates and activates a tracker for a sent campaign.
// Monitoring is triggered by a linked project or an explicit
// monitoringConfig.isEnabled; keywords come from the linked company,
// falling back to manually configured ones.
func (s *LifecycleService) CreateForCampaign(ctx context.Context, input CreateTrackerInput) (*domain.MonitoringTracker, error) {
	campaign, err := s.campaigns.GetCampaign(ctx, input.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign %s: %w", input.CampaignID, err)
	}
	if campaign == nil {
		return nil, domain.NewValidationError("campaign %s not found", input.CampaignID)
	}

	monitoringEnabled := campaign.MonitoringConfig != nil && campaign.MonitoringConfig.IsEnabled
	if !monitoringEnabled && campaign.ProjectID == "" {
		return nil, domain.NewValidationError("monitoring not enabled for campaign %s", input.CampaignID)
	}

	trackerKeywords, err := s.resolveKeywords(ctx, campaign, input.ManualKeywords)
	if err != nil {
		return nil, err
	}

	periodDays := defaultMonitoringPeriodDays
	if campaign.MonitoringConfig != nil && campaign.MonitoringConfig.PeriodDays > 0 {
		periodDays = campaign.MonitoringConfig.PeriodDays
	}

	now := s.now()
	tracker := &domain.MonitoringTracker{
		ID:             uuid.NewString(),
		OrganizationID: input.OrganizationID,
		CampaignID:     campaign.ID,
		ProjectID:      campaign.ProjectID,
		IsActive:       true,
		StartDate:      now,
		EndDate:        now.AddDate(0, 0, periodDays),
		Keywords:       trackerKeywords,
		Channels:       s.buildChannels(campaign, input, trackerKeywords),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.trackers.Create(ctx, tracker); err != nil {
		return nil, fmt.Errorf("create tracker: %w", err)
	}

	s.logger.Info("tracker created",
		"tracker_id", tracker.ID,
		"campaign_id", campaign.ID,
		"channels", len(tracker.Channels),
		"keywords", len(tracker.Keywords))
	return tracker, nil
}

// resolveKeywords tries the company directory first, then the manual
// keywords from campaign config or input. Exhaustion of every source is
// a validation failure: a tracker with nothing to match on is useless.
func (s *LifecycleService) resolveKeywords(ctx context.Context, campaign *domain.Campaign, manual []string) ([]string, error) {
	if campaign.ClientID != "" {
		company, err := s.companies.Resolve(ctx, campaign.ClientID, campaign.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("resolve company %s: %w", campaign.ClientID, err)
		}
		if company != nil {
			if extracted := keywords.FromCompany(*company); len(extracted) > 0 {
				return extracted, nil
			}
		}
		s.logger.Warn("no resolvable company, falling back to manual keywords",
			"campaign_id", campaign.ID, "client_id", campaign.ClientID)
	}

	if campaign.MonitoringConfig != nil && len(campaign.MonitoringConfig.Keywords) > 0 {
		return campaign.MonitoringConfig.Keywords, nil
	}
	if len(manual) > 0 {
		return manual, nil
	}

	return nil, domain.NewValidationError(
		"no keyword source for campaign %s: no resolvable company and no manual keywords", campaign.ID)
}

// buildChannels seeds one RSS channel per publication feed plus a single
// campaign-wide Google News search channel over the keyword set.
func (s *LifecycleService) buildChannels(campaign *domain.Campaign, input CreateTrackerInput, trackerKeywords []string) []domain.MonitoringChannel {
	var channels []domain.MonitoringChannel
	seen := map[string]struct{}{}

	for _, feed := range input.Feeds {
		if feed.FeedURL == "" || !strings.HasPrefix(feed.FeedURL, "http") {
			continue
		}
		id := channelID(domain.ChannelRSSFeed, feed.PublicationID, feed.FeedURL)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		channels = append(channels, domain.MonitoringChannel{
			ID:              id,
			Type:            domain.ChannelRSSFeed,
			URL:             feed.FeedURL,
			PublicationID:   feed.PublicationID,
			PublicationName: feed.PublicationName,
			OrganizationID:  input.OrganizationID,
		})
	}

	if len(trackerKeywords) > 0 {
		channels = append(channels, domain.MonitoringChannel{
			ID:              "google_news_" + campaign.ID,
			Type:            domain.ChannelGoogleNews,
			URL:             googleNewsSearchURL(trackerKeywords),
			PublicationName: "Google News",
			OrganizationID:  input.OrganizationID,
		})
	}

	return channels
}

// Toggle flips the active flag without touching the window or counters.
// Deactivation is reversible.
func (s *LifecycleService) Toggle(ctx context.Context, trackerID string, enabled bool) error {
	tracker, err := s.trackers.GetByID(ctx, trackerID)
	if err != nil {
		return fmt.Errorf("load tracker %s: %w", trackerID, err)
	}

	tracker.IsActive = enabled
	tracker.UpdatedAt = s.now()
	if err := s.trackers.Update(ctx, tracker); err != nil {
		return fmt.Errorf("update tracker %s: %w", trackerID, err)
	}

	s.logger.Info("tracker toggled", "tracker_id", trackerID, "enabled", enabled)
	return nil
}

// Extend pushes the end date out by 30, 60 or 90 days, additive to the
// current endDate. Extending an expired tracker revives its window; it
// does not flip a manually disabled active flag.
func (s *LifecycleService) Extend(ctx context.Context, trackerID string, days int) error {
	if days != 30 && days != 60 && days != 90 {
		return domain.NewValidationError("extension must be 30, 60 or 90 days, got %d", days)
	}

	tracker, err := s.trackers.GetByID(ctx, trackerID)
	if err != nil {
		return fmt.Errorf("load tracker %s: %w", trackerID, err)
	}

	tracker.EndDate = tracker.EndDate.AddDate(0, 0, days)
	tracker.UpdatedAt = s.now()
	if tracker.EndDate.Before(tracker.StartDate) {
		return domain.NewInvalidStateError("tracker %s end date would precede start date", trackerID)
	}
	if err := s.trackers.Update(ctx, tracker); err != nil {
		return fmt.Errorf("update tracker %s: %w", trackerID, err)
	}

	s.logger.Info("tracker extended", "tracker_id", trackerID, "days", days, "end_date", tracker.EndDate)
	return nil
}

// Status derives the tracker state at the service's current time.
func (s *LifecycleService) Status(ctx context.Context, trackerID string) (domain.TrackerStatus, error) {
	tracker, err := s.trackers.GetByID(ctx, trackerID)
	if err != nil {
		return "", fmt.Errorf("load tracker %s: %w", trackerID, err)
	}
	return tracker.Status(s.now()), nil
}

func channelID(channelType domain.ChannelType, publicationID, feedURL string) string {
	sum := sha256.Sum256([]byte(string(channelType) + ":" + publicationID + ":" + feedURL))
	return fmt.Sprintf("%s_%s_%s", channelType, publicationID, hex.EncodeToString(sum[:6]))
}

// googleNewsSearchURL builds the campaign-wide news search query: the
// OR-join of all keywords.
func googleNewsSearchURL(trackerKeywords []string) string {
	query := url.QueryEscape(strings.Join(trackerKeywords, " OR "))
	return "https://news.google.com/rss/search?q=" + query + "&hl=de&gl=DE&ceid=DE:de"
}
