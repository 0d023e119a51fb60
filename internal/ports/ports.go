package ports

import (
	"context"
	"time"

	"CampaignMonitor/internal/domain"
)

// CounterDeltas carries atomic increments for a tracker's monotonic
// counters. Applied as a single read-modify-write unit at the
// persistence boundary.
type CounterDeltas struct {
	ArticlesFound int64
	AutoConfirmed int64
	ManuallyAdded int64
}

// SuggestionFilter narrows suggestion listings for the aggregation layer.
type SuggestionFilter struct {
	OrganizationID string
	TrackerID      string
	Status         domain.SuggestionStatus
	CreatedAfter   time.Time
}

// TrackerRepository persists monitoring trackers and their channels.
type TrackerRepository interface {
	Create(ctx context.Context, tracker *domain.MonitoringTracker) error
	GetByID(ctx context.Context, id string) (*domain.MonitoringTracker, error)
	GetByCampaignID(ctx context.Context, campaignID string) (*domain.MonitoringTracker, error)
	// ListActive returns trackers with isActive set whose window has not
	// expired at the given instant.
	ListActive(ctx context.Context, now time.Time) ([]domain.MonitoringTracker, error)
	// List returns the trackers of one organization; ListAll spans every
	// tenant for operator-level views.
	List(ctx context.Context, organizationID string) ([]domain.MonitoringTracker, error)
	ListAll(ctx context.Context) ([]domain.MonitoringTracker, error)
	Update(ctx context.Context, tracker *domain.MonitoringTracker) error
	// IncrementCounters applies the deltas atomically; no lost updates
	// under concurrent confirmations.
	IncrementCounters(ctx context.Context, trackerID string, deltas CounterDeltas) error
	// TouchChannel records a successful fetch for one channel.
	TouchChannel(ctx context.Context, trackerID, channelID string, at time.Time) error
}

// SuggestionRepository persists candidate articles. Create reports
// whether a row was actually inserted; a duplicate (trackerID,
// normalizedURL) pair inserts nothing.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *domain.MonitoringSuggestion) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.MonitoringSuggestion, error)
	ExistsByURL(ctx context.Context, trackerID, normalizedURL string) (bool, error)
	// Transition moves a suggestion from one status to another as a
	// compare-and-set; a mismatch on the current status returns
	// *domain.InvalidStateError.
	Transition(ctx context.Context, id string, from, to domain.SuggestionStatus) error
	SetClippingID(ctx context.Context, id, clippingID string) error
	List(ctx context.Context, filter SuggestionFilter) ([]domain.MonitoringSuggestion, error)
}

// ClippingRepository persists confirmed media coverage.
type ClippingRepository interface {
	Create(ctx context.Context, clipping *domain.MediaClipping) error
	GetByID(ctx context.Context, id string) (*domain.MediaClipping, error)
	Update(ctx context.Context, clipping *domain.MediaClipping) error
	List(ctx context.Context, organizationID string) ([]domain.MediaClipping, error)
}

// AVESettingsRepository stores one rate table per organization.
// GetByOrganization returns nil when none exists yet.
type AVESettingsRepository interface {
	GetByOrganization(ctx context.Context, organizationID string) (*domain.AVESettings, error)
	Save(ctx context.Context, settings *domain.AVESettings) error
}

// CrawlLogRepository is the append-only audit trail of ingestion passes.
type CrawlLogRepository interface {
	CreateRun(ctx context.Context, run *domain.CrawlRunLog) error
	LatestRun(ctx context.Context) (*domain.CrawlRunLog, error)
	CreateError(ctx context.Context, entry *domain.CrawlErrorLog) error
	// RecentErrorsByChannel returns the newest entries first, capped at limit.
	RecentErrorsByChannel(ctx context.Context, channelID string, limit int) ([]domain.CrawlErrorLog, error)
}

// ChannelSource fetches article candidates for one channel type.
type ChannelSource interface {
	Type() domain.ChannelType
	Fetch(ctx context.Context, channel domain.MonitoringChannel) ([]domain.ArticleCandidate, error)
}

// SourceResolver maps a channel type to its source implementation.
type SourceResolver interface {
	Resolve(channelType domain.ChannelType) (ChannelSource, error)
}

// CampaignStore supplies the campaign slice needed at tracker creation.
type CampaignStore interface {
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
}

// CompanyDirectory resolves a campaign's client to a company record.
// Returns nil without error when no company is resolvable; absence is a
// recognized degraded mode, not a failure.
type CompanyDirectory interface {
	Resolve(ctx context.Context, companyID, organizationID string) (*domain.Company, error)
}

// Scheduler controls when ingestion passes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
