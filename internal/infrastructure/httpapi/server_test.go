package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/infrastructure/directory"
	"CampaignMonitor/internal/infrastructure/storage"
	"CampaignMonitor/internal/matching"
	"CampaignMonitor/internal/ports"
	"CampaignMonitor/internal/usecase"
)

type apiFixture struct {
	router      *gin.Engine
	resolver    *usecase.Resolver
	trackers    *storage.MemoryTrackerRepository
	suggestions *storage.MemorySuggestionRepository
	clippings   *storage.MemoryClippingRepository
}

type noopSourceResolver struct{}

func (noopSourceResolver) Resolve(channelType domain.ChannelType) (ports.ChannelSource, error) {
	return nil, domain.NewValidationError("no source for %s", channelType)
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	trackers := storage.NewMemoryTrackerRepository()
	suggestions := storage.NewMemorySuggestionRepository()
	clippings := storage.NewMemoryClippingRepository()
	aveSettings := storage.NewMemoryAVESettingsRepository()
	crawlLogs := storage.NewMemoryCrawlLogRepository()

	campaigns := directory.NewStaticCampaignStore(domain.Campaign{
		ID:               "camp-1",
		OrganizationID:   "org-1",
		MonitoringConfig: &domain.MonitoringConfig{IsEnabled: true, Keywords: []string{"Acme"}},
	})
	companies := directory.NewChainDirectory(directory.NewStaticCompanyStore())

	lifecycle := usecase.NewLifecycleService(trackers, campaigns, companies, logger)
	resolver := usecase.NewResolver(suggestions, clippings, trackers,
		usecase.Thresholds{AutoConfirm: 0.8, Spam: 0.2}, logger)
	crawler := usecase.NewCrawler(trackers, suggestions, crawlLogs, noopSourceResolver{},
		matching.NewScorer(), resolver, usecase.CrawlerOptions{}, logger)
	ave := usecase.NewAVEService(aveSettings, clippings, logger)
	stats := usecase.NewStatsService(trackers, suggestions, crawlLogs, time.Minute)

	server := NewServer(lifecycle, resolver, ave, stats, crawler, logger)

	return &apiFixture{
		router:      server.Router(),
		resolver:    resolver,
		trackers:    trackers,
		suggestions: suggestions,
		clippings:   clippings,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

func (f *apiFixture) createTracker(t *testing.T) string {
	t.Helper()

	resp := f.do(t, http.MethodPost, "/api/v1/trackers", gin.H{
		"campaignId":     "camp-1",
		"organizationId": "org-1",
		"feeds": []gin.H{
			{"publicationId": "pub-1", "publicationName": "Tech Daily", "feedUrl": "https://techdaily.example/rss"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var tracker domain.MonitoringTracker
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tracker))
	return tracker.ID
}

func TestCreateTracker(t *testing.T) {
	f := newAPIFixture(t)
	trackerID := f.createTracker(t)

	resp := f.do(t, http.MethodGet, "/api/v1/trackers/"+trackerID+"/status", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), string(domain.TrackerActive))
}

func TestCreateTrackerRejectsBadRequests(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/trackers", gin.H{"organizationId": "org-1"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = f.do(t, http.MethodPost, "/api/v1/trackers", gin.H{
		"campaignId":     "unknown",
		"organizationId": "org-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestToggleAndExtend(t *testing.T) {
	f := newAPIFixture(t)
	trackerID := f.createTracker(t)

	resp := f.do(t, http.MethodPost, "/api/v1/trackers/"+trackerID+"/toggle", gin.H{"enabled": false})
	require.Equal(t, http.StatusOK, resp.Code)

	status := f.do(t, http.MethodGet, "/api/v1/trackers/"+trackerID+"/status", nil)
	assert.Contains(t, status.Body.String(), string(domain.TrackerInactive))

	resp = f.do(t, http.MethodPost, "/api/v1/trackers/"+trackerID+"/extend", gin.H{"days": 45})
	assert.Equal(t, http.StatusBadRequest, resp.Code, "only 30/60/90 day extensions are valid")

	resp = f.do(t, http.MethodPost, "/api/v1/trackers/"+trackerID+"/extend", gin.H{"days": 60})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestSuggestionReview(t *testing.T) {
	f := newAPIFixture(t)
	trackerID := f.createTracker(t)

	tracker, err := f.trackers.GetByID(context.Background(), trackerID)
	require.NoError(t, err)

	pending, err := f.resolver.Resolve(context.Background(), *tracker,
		tracker.Channels[0],
		domain.ArticleCandidate{Title: "Maybe Acme", URL: "https://a.example/p"},
		domain.MatchResult{Confidence: 0.5, Sentiment: domain.SentimentNeutral})
	require.NoError(t, err)

	resp := f.do(t, http.MethodPost, "/api/v1/suggestions/"+pending.ID+"/confirm", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var clipping domain.MediaClipping
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &clipping))
	assert.Equal(t, pending.ID, clipping.SuggestionID)

	// Terminal state: confirming again conflicts.
	resp = f.do(t, http.MethodPost, "/api/v1/suggestions/"+pending.ID+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = f.do(t, http.MethodPost, "/api/v1/suggestions/"+pending.ID+"/spam", nil)
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = f.do(t, http.MethodPost, "/api/v1/suggestions/missing/confirm", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestManualClippingAndAVE(t *testing.T) {
	f := newAPIFixture(t)
	trackerID := f.createTracker(t)

	resp := f.do(t, http.MethodPost, "/api/v1/trackers/"+trackerID+"/clippings", gin.H{
		"title":      "Print piece",
		"url":        "https://paper.example/acme",
		"outletType": "online",
		"reach":      10000,
		"sentiment":  "positive",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var clipping domain.MediaClipping
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &clipping))

	resp = f.do(t, http.MethodGet, "/api/v1/clippings/"+clipping.ID+"/ave", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"ave":10`)

	resp = f.do(t, http.MethodPut, "/api/v1/clippings/"+clipping.ID+"/ave", gin.H{"value": 4200.0})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = f.do(t, http.MethodGet, "/api/v1/clippings/"+clipping.ID+"/ave", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"ave":4200`)

	resp = f.do(t, http.MethodPut, "/api/v1/clippings/"+clipping.ID+"/sentiment", gin.H{"sentiment": "ecstatic"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = f.do(t, http.MethodPut, "/api/v1/clippings/"+clipping.ID+"/sentiment", gin.H{"sentiment": "negative"})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestStatsEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	f.createTracker(t)

	resp := f.do(t, http.MethodGet, "/api/v1/stats/system", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"activeTrackers":1`)

	resp = f.do(t, http.MethodGet, "/api/v1/organizations/org-1/stats", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"organizationId":"org-1"`)

	resp = f.do(t, http.MethodGet, "/api/v1/stats/channels", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = f.do(t, http.MethodPost, "/api/v1/stats/cache/clear", nil)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestAVESettingsEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/api/v1/organizations/org-1/ave-settings", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"org-1"`)
}

func TestRunCrawlEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/crawler/run", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), string(domain.RunCompleted))
}
