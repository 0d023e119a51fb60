// Package storage provides the persistence implementations: Postgres for
// deployments and an in-memory variant for tests and DSN-less runs.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/ports"
)

// MemoryTrackerRepository keeps trackers in process memory. It backs unit
// tests and local runs without a database.
type MemoryTrackerRepository struct {
	mu       sync.RWMutex
	trackers map[string]*domain.MonitoringTracker
}

var _ ports.TrackerRepository = (*MemoryTrackerRepository)(nil)

// NewMemoryTrackerRepository builds an empty repository.
func NewMemoryTrackerRepository() *MemoryTrackerRepository {
	return &MemoryTrackerRepository{trackers: map[string]*domain.MonitoringTracker{}}
}

func cloneTracker(t *domain.MonitoringTracker) *domain.MonitoringTracker {
	cp := *t
	cp.Keywords = append([]string(nil), t.Keywords...)
	cp.Channels = append([]domain.MonitoringChannel(nil), t.Channels...)
	return &cp
}

// Create stores a new tracker, assigning an id if none is set.
func (r *MemoryTrackerRepository) Create(ctx context.Context, tracker *domain.MonitoringTracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tracker.ID == "" {
		tracker.ID = uuid.NewString()
	}
	r.trackers[tracker.ID] = cloneTracker(tracker)
	return nil
}

// GetByID returns a tracker copy or ErrNotFound.
func (r *MemoryTrackerRepository) GetByID(ctx context.Context, id string) (*domain.MonitoringTracker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracker, ok := r.trackers[id]
	if !ok {
		return nil, fmt.Errorf("tracker %s: %w", id, domain.ErrNotFound)
	}
	return cloneTracker(tracker), nil
}

// GetByCampaignID returns the tracker bound to a campaign or ErrNotFound.
func (r *MemoryTrackerRepository) GetByCampaignID(ctx context.Context, campaignID string) (*domain.MonitoringTracker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tracker := range r.trackers {
		if tracker.CampaignID == campaignID {
			return cloneTracker(tracker), nil
		}
	}
	return nil, fmt.Errorf("tracker for campaign %s: %w", campaignID, domain.ErrNotFound)
}

// ListActive returns enabled trackers whose window has not expired.
func (r *MemoryTrackerRepository) ListActive(ctx context.Context, now time.Time) ([]domain.MonitoringTracker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.MonitoringTracker
	for _, tracker := range r.trackers {
		if tracker.Status(now) == domain.TrackerActive {
			result = append(result, *cloneTracker(tracker))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// List returns all trackers for one organization.
func (r *MemoryTrackerRepository) List(ctx context.Context, organizationID string) ([]domain.MonitoringTracker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.MonitoringTracker
	for _, tracker := range r.trackers {
		if tracker.OrganizationID == organizationID {
			result = append(result, *cloneTracker(tracker))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListAll returns every tracker regardless of organization.
func (r *MemoryTrackerRepository) ListAll(ctx context.Context) ([]domain.MonitoringTracker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.MonitoringTracker
	for _, tracker := range r.trackers {
		result = append(result, *cloneTracker(tracker))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update replaces a stored tracker, preserving its counters.
func (r *MemoryTrackerRepository) Update(ctx context.Context, tracker *domain.MonitoringTracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.trackers[tracker.ID]
	if !ok {
		return fmt.Errorf("tracker %s: %w", tracker.ID, domain.ErrNotFound)
	}
	cp := cloneTracker(tracker)
	cp.TotalArticlesFound = existing.TotalArticlesFound
	cp.TotalAutoConfirmed = existing.TotalAutoConfirmed
	cp.TotalManuallyAdded = existing.TotalManuallyAdded
	r.trackers[tracker.ID] = cp
	return nil
}

// IncrementCounters applies deltas under the repository lock.
func (r *MemoryTrackerRepository) IncrementCounters(ctx context.Context, trackerID string, deltas ports.CounterDeltas) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracker, ok := r.trackers[trackerID]
	if !ok {
		return fmt.Errorf("tracker %s: %w", trackerID, domain.ErrNotFound)
	}
	tracker.TotalArticlesFound += deltas.ArticlesFound
	tracker.TotalAutoConfirmed += deltas.AutoConfirmed
	tracker.TotalManuallyAdded += deltas.ManuallyAdded
	return nil
}

// TouchChannel records a successful fetch timestamp on one channel.
func (r *MemoryTrackerRepository) TouchChannel(ctx context.Context, trackerID, channelID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracker, ok := r.trackers[trackerID]
	if !ok {
		return fmt.Errorf("tracker %s: %w", trackerID, domain.ErrNotFound)
	}
	for i := range tracker.Channels {
		if tracker.Channels[i].ID == channelID {
			ts := at
			tracker.Channels[i].LastSuccess = &ts
			return nil
		}
	}
	return fmt.Errorf("channel %s on tracker %s: %w", channelID, trackerID, domain.ErrNotFound)
}

// MemorySuggestionRepository keeps suggestions in process memory.
type MemorySuggestionRepository struct {
	mu          sync.RWMutex
	suggestions map[string]*domain.MonitoringSuggestion
}

var _ ports.SuggestionRepository = (*MemorySuggestionRepository)(nil)

// NewMemorySuggestionRepository builds an empty repository.
func NewMemorySuggestionRepository() *MemorySuggestionRepository {
	return &MemorySuggestionRepository{suggestions: map[string]*domain.MonitoringSuggestion{}}
}

// Create inserts a suggestion unless its normalized URL already exists for
// the tracker; the bool reports whether a row landed.
func (r *MemorySuggestionRepository) Create(ctx context.Context, suggestion *domain.MonitoringSuggestion) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.suggestions {
		if existing.TrackerID == suggestion.TrackerID && existing.NormalizedURL == suggestion.NormalizedURL {
			return false, nil
		}
	}
	if suggestion.ID == "" {
		suggestion.ID = uuid.NewString()
	}
	cp := *suggestion
	r.suggestions[suggestion.ID] = &cp
	return true, nil
}

// GetByID returns a suggestion copy or ErrNotFound.
func (r *MemorySuggestionRepository) GetByID(ctx context.Context, id string) (*domain.MonitoringSuggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	suggestion, ok := r.suggestions[id]
	if !ok {
		return nil, fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
	}
	cp := *suggestion
	return &cp, nil
}

// ExistsByURL reports whether a tracker already saw a normalized URL.
func (r *MemorySuggestionRepository) ExistsByURL(ctx context.Context, trackerID, normalizedURL string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, suggestion := range r.suggestions {
		if suggestion.TrackerID == trackerID && suggestion.NormalizedURL == normalizedURL {
			return true, nil
		}
	}
	return false, nil
}

// Transition moves a suggestion between statuses as a compare-and-set.
func (r *MemorySuggestionRepository) Transition(ctx context.Context, id string, from, to domain.SuggestionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	suggestion, ok := r.suggestions[id]
	if !ok {
		return fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
	}
	if suggestion.Status != from {
		return domain.NewInvalidStateError("suggestion %s is %s, expected %s", id, suggestion.Status, from)
	}
	suggestion.Status = to
	suggestion.UpdatedAt = time.Now().UTC()
	return nil
}

// SetClippingID links a suggestion to the clipping it produced.
func (r *MemorySuggestionRepository) SetClippingID(ctx context.Context, id, clippingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	suggestion, ok := r.suggestions[id]
	if !ok {
		return fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
	}
	suggestion.ClippingID = clippingID
	return nil
}

// List filters suggestions; zero-value filter fields match all.
func (r *MemorySuggestionRepository) List(ctx context.Context, filter ports.SuggestionFilter) ([]domain.MonitoringSuggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.MonitoringSuggestion
	for _, suggestion := range r.suggestions {
		if filter.OrganizationID != "" && suggestion.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.TrackerID != "" && suggestion.TrackerID != filter.TrackerID {
			continue
		}
		if filter.Status != "" && suggestion.Status != filter.Status {
			continue
		}
		if !filter.CreatedAfter.IsZero() && suggestion.CreatedAt.Before(filter.CreatedAfter) {
			continue
		}
		result = append(result, *suggestion)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// MemoryClippingRepository keeps clippings in process memory.
type MemoryClippingRepository struct {
	mu        sync.RWMutex
	clippings map[string]*domain.MediaClipping
}

var _ ports.ClippingRepository = (*MemoryClippingRepository)(nil)

// NewMemoryClippingRepository builds an empty repository.
func NewMemoryClippingRepository() *MemoryClippingRepository {
	return &MemoryClippingRepository{clippings: map[string]*domain.MediaClipping{}}
}

// Create stores a confirmed clipping, assigning an id if none is set.
func (r *MemoryClippingRepository) Create(ctx context.Context, clipping *domain.MediaClipping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clipping.ID == "" {
		clipping.ID = uuid.NewString()
	}
	cp := *clipping
	r.clippings[clipping.ID] = &cp
	return nil
}

// GetByID returns a clipping copy or ErrNotFound.
func (r *MemoryClippingRepository) GetByID(ctx context.Context, id string) (*domain.MediaClipping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clipping, ok := r.clippings[id]
	if !ok {
		return nil, fmt.Errorf("clipping %s: %w", id, domain.ErrNotFound)
	}
	cp := *clipping
	return &cp, nil
}

// Update replaces a stored clipping.
func (r *MemoryClippingRepository) Update(ctx context.Context, clipping *domain.MediaClipping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clippings[clipping.ID]; !ok {
		return fmt.Errorf("clipping %s: %w", clipping.ID, domain.ErrNotFound)
	}
	cp := *clipping
	r.clippings[clipping.ID] = &cp
	return nil
}

// List returns all clippings for one organization.
func (r *MemoryClippingRepository) List(ctx context.Context, organizationID string) ([]domain.MediaClipping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.MediaClipping
	for _, clipping := range r.clippings {
		if clipping.OrganizationID == organizationID {
			result = append(result, *clipping)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// MemoryAVESettingsRepository keeps one rate table per organization.
type MemoryAVESettingsRepository struct {
	mu       sync.RWMutex
	settings map[string]*domain.AVESettings
}

var _ ports.AVESettingsRepository = (*MemoryAVESettingsRepository)(nil)

// NewMemoryAVESettingsRepository builds an empty repository.
func NewMemoryAVESettingsRepository() *MemoryAVESettingsRepository {
	return &MemoryAVESettingsRepository{settings: map[string]*domain.AVESettings{}}
}

// GetByOrganization returns the organization's rate table, nil when unset.
func (r *MemoryAVESettingsRepository) GetByOrganization(ctx context.Context, organizationID string) (*domain.AVESettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settings, ok := r.settings[organizationID]
	if !ok {
		return nil, nil
	}
	cp := *settings
	return &cp, nil
}

// Save stores an organization's rate table.
func (r *MemoryAVESettingsRepository) Save(ctx context.Context, settings *domain.AVESettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}
	cp := *settings
	r.settings[settings.OrganizationID] = &cp
	return nil
}

// MemoryCrawlLogRepository keeps the ingestion audit trail in memory.
type MemoryCrawlLogRepository struct {
	mu     sync.RWMutex
	runs   []domain.CrawlRunLog
	errors []domain.CrawlErrorLog
}

var _ ports.CrawlLogRepository = (*MemoryCrawlLogRepository)(nil)

// NewMemoryCrawlLogRepository builds an empty repository.
func NewMemoryCrawlLogRepository() *MemoryCrawlLogRepository {
	return &MemoryCrawlLogRepository{}
}

// CreateRun appends one run-log entry.
func (r *MemoryCrawlLogRepository) CreateRun(ctx context.Context, run *domain.CrawlRunLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	r.runs = append(r.runs, *run)
	return nil
}

// LatestRun returns the most recently started run, nil when none exist.
func (r *MemoryCrawlLogRepository) LatestRun(ctx context.Context) (*domain.CrawlRunLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.CrawlRunLog
	for i := range r.runs {
		if latest == nil || r.runs[i].StartedAt.After(latest.StartedAt) {
			latest = &r.runs[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

// CreateError appends one channel-failure entry.
func (r *MemoryCrawlLogRepository) CreateError(ctx context.Context, entry *domain.CrawlErrorLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	r.errors = append(r.errors, *entry)
	return nil
}

// RecentErrorsByChannel returns the newest entries first, capped at limit.
func (r *MemoryCrawlLogRepository) RecentErrorsByChannel(ctx context.Context, channelID string, limit int) ([]domain.CrawlErrorLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.CrawlErrorLog
	for _, entry := range r.errors {
		if entry.ChannelID == channelID {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OccurredAt.After(result[j].OccurredAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
