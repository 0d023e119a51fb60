package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/matching"
	"CampaignMonitor/internal/ports"
)

// CrawlerOptions bounds the fan-out of one ingestion pass.
type CrawlerOptions struct {
	MaxConcurrentFetches  int
	ChannelTimeout        time.Duration
	MaxArticlesPerChannel int
}

// Crawler executes scheduled ingestion passes: it loads active trackers,
// fetches every channel in isolation, filters candidates to the
// monitoring window, scores them and hands survivors to the resolver.
type Crawler struct {
	trackers    ports.TrackerRepository
	suggestions ports.SuggestionRepository
	logs        ports.CrawlLogRepository
	sources     ports.SourceResolver
	scorer      *matching.Scorer
	resolver    *Resolver
	opts        CrawlerOptions
	logger      *slog.Logger
	now         func() time.Time
}

// NewCrawler wires the ingestion worker.
func NewCrawler(
	trackers ports.TrackerRepository,
	suggestions ports.SuggestionRepository,
	logs ports.CrawlLogRepository,
	sources ports.SourceResolver,
	scorer *matching.Scorer,
	resolver *Resolver,
	opts CrawlerOptions,
	logger *slog.Logger,
) *Crawler {
	if opts.MaxConcurrentFetches <= 0 {
		opts.MaxConcurrentFetches = 8
	}
	if opts.ChannelTimeout <= 0 {
		opts.ChannelTimeout = 20 * time.Second
	}
	if opts.MaxArticlesPerChannel <= 0 {
		opts.MaxArticlesPerChannel = 50
	}
	return &Crawler{
		trackers:    trackers,
		suggestions: suggestions,
		logs:        logs,
		sources:     sources,
		scorer:      scorer,
		resolver:    resolver,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// RunIngestionPass is the single externally triggered entry point. It
// always writes exactly one run log; the run fails only when the pass
// itself cannot complete, never because of individual channel errors.
func (c *Crawler) RunIngestionPass(ctx context.Context) (*domain.CrawlRunLog, error) {
	started := c.now()
	run := &domain.CrawlRunLog{
		ID:        uuid.NewString(),
		StartedAt: started,
		Status:    domain.RunCompleted,
	}

	trackers, err := c.trackers.ListActive(ctx, started)
	if err != nil {
		fault := &domain.RunFault{Err: fmt.Errorf("list active trackers: %w", err)}
		run.Status = domain.RunFailed
		run.ErrorMessage = fault.Error()
		run.Duration = c.now().Sub(started)
		if logErr := c.logs.CreateRun(ctx, run); logErr != nil {
			c.logger.Error("write run log", "error", logErr)
		}
		return run, fault
	}

	var articlesFound int64
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.opts.MaxConcurrentFetches)

	for i := range trackers {
		tracker := trackers[i]
		for j := range tracker.Channels {
			channel := tracker.Channels[j]
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				found := c.processChannel(ctx, tracker, channel)
				atomic.AddInt64(&articlesFound, int64(found))
			}()
		}
	}
	wg.Wait()

	run.TrackersProcessed = len(trackers)
	run.ArticlesFound = int(articlesFound)
	run.Duration = c.now().Sub(started)
	if err := c.logs.CreateRun(ctx, run); err != nil {
		c.logger.Error("write run log", "error", err)
	}

	c.logger.Info("ingestion pass finished",
		"trackers", run.TrackersProcessed,
		"articles_found", run.ArticlesFound,
		"duration", run.Duration)
	return run, nil
}

// processChannel fetches one channel and pushes its candidates through
// scoring and resolution. Every failure is contained here: logged,
// counted, and invisible to sibling channels.
func (c *Crawler) processChannel(ctx context.Context, tracker domain.MonitoringTracker, channel domain.MonitoringChannel) int {
	fetchCtx, cancel := context.WithTimeout(ctx, c.opts.ChannelTimeout)
	defer cancel()

	candidates, err := c.fetchWithRetry(fetchCtx, channel)
	if err != nil {
		c.recordChannelError(ctx, tracker, channel, err)
		return 0
	}

	if err := c.trackers.TouchChannel(ctx, tracker.ID, channel.ID, c.now()); err != nil {
		c.logger.Warn("record channel success", "channel_id", channel.ID, "error", err)
	}

	if len(candidates) > c.opts.MaxArticlesPerChannel {
		candidates = candidates[:c.opts.MaxArticlesPerChannel]
	}

	now := c.now()
	found := 0
	for _, candidate := range candidates {
		if !candidate.PublishedAt.IsZero() && !tracker.InWindow(candidate.PublishedAt, now) {
			continue
		}

		normalized := domain.NormalizeURL(candidate.URL)
		if normalized == "" {
			continue
		}
		exists, err := c.suggestions.ExistsByURL(ctx, tracker.ID, normalized)
		if err != nil {
			c.logger.Warn("dedup lookup", "tracker_id", tracker.ID, "error", err)
			continue
		}
		if exists {
			continue
		}

		match := c.scorer.Score(candidate, channel, tracker.Keywords, tracker.StartDate)
		suggestion, err := c.resolver.Resolve(ctx, tracker, channel, candidate, match)
		if err != nil {
			c.logger.Warn("resolve candidate", "url", candidate.URL, "error", err)
			continue
		}
		if suggestion != nil {
			found++
		}
	}
	return found
}

// fetchWithRetry tolerates one transient network failure before giving
// up; further healing is left to the next scheduled pass.
func (c *Crawler) fetchWithRetry(ctx context.Context, channel domain.MonitoringChannel) ([]domain.ArticleCandidate, error) {
	source, err := c.sources.Resolve(channel.Type)
	if err != nil {
		return nil, err
	}

	candidates, err := source.Fetch(ctx, channel)
	if err == nil {
		return candidates, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	return source.Fetch(ctx, channel)
}

func (c *Crawler) recordChannelError(ctx context.Context, tracker domain.MonitoringTracker, channel domain.MonitoringChannel, err error) {
	fetchErr := &domain.ChannelFetchError{ChannelID: channel.ID, Err: err}
	c.logger.Warn("channel fetch failed",
		"tracker_id", tracker.ID,
		"channel_id", channel.ID,
		"url", channel.URL,
		"error", err)

	entry := &domain.CrawlErrorLog{
		ID:         uuid.NewString(),
		TrackerID:  tracker.ID,
		ChannelID:  channel.ID,
		ChannelURL: channel.URL,
		OccurredAt: c.now(),
		Message:    fetchErr.Error(),
	}
	if logErr := c.logs.CreateError(ctx, entry); logErr != nil {
		c.logger.Error("write channel error log", "channel_id", channel.ID, "error", logErr)
	}
}
