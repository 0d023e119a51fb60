package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/ports"
)

const channelHealthLookback = 10

// SystemStats is the engine-wide view.
type SystemStats struct {
	ActiveTrackers   int                 `json:"activeTrackers"`
	SuggestionsToday int                 `json:"suggestionsToday"`
	SuggestionsTotal int                 `json:"suggestionsTotal"`
	ConfirmedCount   int                 `json:"confirmedCount"`
	PendingCount     int                 `json:"pendingCount"`
	LastRun          *domain.CrawlRunLog `json:"lastRun,omitempty"`
	GeneratedAt      time.Time           `json:"generatedAt"`
}

// OrganizationStats is the per-tenant view.
type OrganizationStats struct {
	OrganizationID   string     `json:"organizationId"`
	ActiveTrackers   int        `json:"activeTrackers"`
	TotalSuggestions int        `json:"totalSuggestions"`
	AutoConfirmRate  float64    `json:"autoConfirmRate"`
	LastSuggestionAt *time.Time `json:"lastSuggestionAt,omitempty"`
}

// ChannelHealth reports recent failures for one channel, worst first.
type ChannelHealth struct {
	ChannelID       string     `json:"channelId"`
	TrackerID       string     `json:"trackerId"`
	URL             string     `json:"url"`
	PublicationName string     `json:"publicationName"`
	ErrorCount      int        `json:"errorCount"`
	LastError       string     `json:"lastError,omitempty"`
	LastErrorAt     *time.Time `json:"lastErrorAt,omitempty"`
	LastSuccess     *time.Time `json:"lastSuccess,omitempty"`
}

// StatsService computes read-only aggregate views behind a short TTL
// cache. Expiry is time-based only; ClearCache exists for operators.
type StatsService struct {
	trackers    ports.TrackerRepository
	suggestions ports.SuggestionRepository
	logs        ports.CrawlLogRepository
	cache       *ttlCache
	now         func() time.Time
}

// NewStatsService wires the aggregator with the given cache TTL.
func NewStatsService(
	trackers ports.TrackerRepository,
	suggestions ports.SuggestionRepository,
	logs ports.CrawlLogRepository,
	cacheTTL time.Duration,
) *StatsService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &StatsService{
		trackers:    trackers,
		suggestions: suggestions,
		logs:        logs,
		cache:       newTTLCache(cacheTTL),
		now:         time.Now,
	}
}

// GetSystemStats returns the engine-wide view, cached.
func (s *StatsService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	if cached, ok := s.cache.get("system"); ok {
		return cached.(*SystemStats), nil
	}

	now := s.now()
	active, err := s.trackers.ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list active trackers: %w", err)
	}

	all, err := s.suggestions.List(ctx, ports.SuggestionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stats := &SystemStats{
		ActiveTrackers:   len(active),
		SuggestionsTotal: len(all),
		GeneratedAt:      now,
	}
	for _, suggestion := range all {
		if !suggestion.CreatedAt.Before(midnight) {
			stats.SuggestionsToday++
		}
		switch suggestion.Status {
		case domain.SuggestionConfirmed:
			stats.ConfirmedCount++
		case domain.SuggestionPending:
			stats.PendingCount++
		}
	}

	lastRun, err := s.logs.LatestRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("load latest run: %w", err)
	}
	stats.LastRun = lastRun

	s.cache.set("system", stats)
	return stats, nil
}

// GetOrganizationStats returns the per-tenant view, cached per
// organization key.
func (s *StatsService) GetOrganizationStats(ctx context.Context, organizationID string) (*OrganizationStats, error) {
	cacheKey := "org:" + organizationID
	if cached, ok := s.cache.get(cacheKey); ok {
		return cached.(*OrganizationStats), nil
	}

	now := s.now()
	trackers, err := s.trackers.List(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list trackers: %w", err)
	}

	suggestions, err := s.suggestions.List(ctx, ports.SuggestionFilter{OrganizationID: organizationID})
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}

	stats := &OrganizationStats{OrganizationID: organizationID}
	for _, tracker := range trackers {
		if tracker.Status(now) == domain.TrackerActive {
			stats.ActiveTrackers++
		}
	}

	confirmed := 0
	for _, suggestion := range suggestions {
		if suggestion.Status == domain.SuggestionConfirmed {
			confirmed++
		}
		if stats.LastSuggestionAt == nil || suggestion.CreatedAt.After(*stats.LastSuggestionAt) {
			createdAt := suggestion.CreatedAt
			stats.LastSuggestionAt = &createdAt
		}
	}
	stats.TotalSuggestions = len(suggestions)
	if len(suggestions) > 0 {
		stats.AutoConfirmRate = float64(confirmed) / float64(len(suggestions))
	}

	s.cache.set(cacheKey, stats)
	return stats, nil
}

// GetChannelHealth surfaces the channels with the most recent failures
// first so the worst ones get operator attention.
func (s *StatsService) GetChannelHealth(ctx context.Context) ([]ChannelHealth, error) {
	if cached, ok := s.cache.get("channel-health"); ok {
		return cached.([]ChannelHealth), nil
	}

	trackers, err := s.trackers.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trackers: %w", err)
	}

	health := make([]ChannelHealth, 0)
	for _, tracker := range trackers {
		for _, channel := range tracker.Channels {
			entry := ChannelHealth{
				ChannelID:       channel.ID,
				TrackerID:       tracker.ID,
				URL:             channel.URL,
				PublicationName: channel.PublicationName,
				LastSuccess:     channel.LastSuccess,
			}

			errors, err := s.logs.RecentErrorsByChannel(ctx, channel.ID, channelHealthLookback)
			if err != nil {
				return nil, fmt.Errorf("load channel errors: %w", err)
			}
			entry.ErrorCount = len(errors)
			if len(errors) > 0 {
				entry.LastError = errors[0].Message
				occurredAt := errors[0].OccurredAt
				entry.LastErrorAt = &occurredAt
			}
			health = append(health, entry)
		}
	}

	sort.SliceStable(health, func(i, j int) bool {
		return health[i].ErrorCount > health[j].ErrorCount
	})

	s.cache.set("channel-health", health)
	return health, nil
}

// ClearCache drops every cached view, forcing recomputation on the next
// read. The only write-adjacent operation on the aggregator.
func (s *StatsService) ClearCache() {
	s.cache.clear()
}

// ttlCache is a process-local key→(value, timestamp) map. Concurrent
// reads are safe; recomputation of one key never blocks others.
type ttlCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	value    any
	storedAt time.Time
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		ttl:     ttl,
		entries: map[string]cacheEntry{},
		now:     time.Now,
	}
}

func (c *ttlCache) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.storedAt) > c.ttl {
		return nil, false
	}
	return entry.value, true
}

func (c *ttlCache) set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
}

func (c *ttlCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]cacheEntry{}
}
