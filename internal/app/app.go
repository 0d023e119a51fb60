// Package app wires configuration, storage, sources and use cases into a
// runnable engine.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"CampaignMonitor/internal/config"
	"CampaignMonitor/internal/infrastructure/directory"
	"CampaignMonitor/internal/infrastructure/feed"
	"CampaignMonitor/internal/infrastructure/httpapi"
	"CampaignMonitor/internal/infrastructure/scheduler"
	"CampaignMonitor/internal/infrastructure/storage"
	"CampaignMonitor/internal/logging"
	"CampaignMonitor/internal/matching"
	"CampaignMonitor/internal/ports"
	"CampaignMonitor/internal/usecase"
)

// Application owns the long-running pieces: the HTTP listener, the
// ingestion scheduler and the database handle.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	server    *http.Server
	scheduler *usecase.Scheduler

	Campaigns *directory.StaticCampaignStore
	Companies *directory.StaticCompanyStore
}

// New builds a fully wired application. An empty database DSN switches
// every repository to its in-memory implementation.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	var (
		db          *sql.DB
		trackers    ports.TrackerRepository
		suggestions ports.SuggestionRepository
		clippings   ports.ClippingRepository
		aveSettings ports.AVESettingsRepository
		crawlLogs   ports.CrawlLogRepository
	)

	if cfg.Database.DSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		trackers = storage.NewPostgresTrackerRepository(db)
		suggestions = storage.NewPostgresSuggestionRepository(db)
		clippings = storage.NewPostgresClippingRepository(db)
		aveSettings = storage.NewPostgresAVESettingsRepository(db)
		crawlLogs = storage.NewPostgresCrawlLogRepository(db)
	} else {
		baseLogger.Warn("no database configured, using in-memory repositories")
		trackers = storage.NewMemoryTrackerRepository()
		suggestions = storage.NewMemorySuggestionRepository()
		clippings = storage.NewMemoryClippingRepository()
		aveSettings = storage.NewMemoryAVESettingsRepository()
		crawlLogs = storage.NewMemoryCrawlLogRepository()
	}

	campaigns := directory.NewStaticCampaignStore()
	primaryCompanies := directory.NewStaticCompanyStore()
	legacyCompanies := directory.NewStaticCompanyStore()
	companies := directory.NewChainDirectory(primaryCompanies, legacyCompanies)

	registry := feed.NewRegistry()
	registry.Register(feed.NewRSSSource(nil))
	registry.Register(feed.NewGoogleNewsSource(nil))

	lifecycle := usecase.NewLifecycleService(trackers, campaigns, companies,
		logging.Component(baseLogger, "lifecycle"))

	resolver := usecase.NewResolver(suggestions, clippings, trackers,
		usecase.Thresholds{
			AutoConfirm: cfg.Matching.AutoConfirmThreshold,
			Spam:        cfg.Matching.SpamThreshold,
		},
		logging.Component(baseLogger, "resolver"))

	crawler := usecase.NewCrawler(trackers, suggestions, crawlLogs, registry,
		matching.NewScorer(), resolver,
		usecase.CrawlerOptions{
			MaxConcurrentFetches:  cfg.Crawler.MaxConcurrentFetches,
			ChannelTimeout:        cfg.Crawler.ChannelTimeout,
			MaxArticlesPerChannel: cfg.Crawler.MaxArticlesPerChannel,
		},
		logging.Component(baseLogger, "crawler"))

	ave := usecase.NewAVEService(aveSettings, clippings,
		logging.Component(baseLogger, "ave"))

	stats := usecase.NewStatsService(trackers, suggestions, crawlLogs, cfg.Stats.CacheTTL)

	apiServer := httpapi.NewServer(lifecycle, resolver, ave, stats, crawler,
		logging.Component(baseLogger, "http"))

	schedulerDriver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval)
	ingestion := usecase.NewScheduler(schedulerDriver, crawler,
		logging.Component(baseLogger, "scheduler"))

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		db:     db,
		server: &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: apiServer.Router(),
		},
		scheduler: ingestion,
		Campaigns: campaigns,
		Companies: primaryCompanies,
	}, nil
}

// Run starts the scheduler and the HTTP listener and blocks until the
// context is cancelled or the listener fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http listener starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http listener: %w", err)
	}

	return a.shutdown()
}

func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Error("stop scheduler", "error", err)
	}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("shutdown http listener", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("close database", "error", err)
		}
	}
	a.logger.Info("engine stopped")
	return nil
}
