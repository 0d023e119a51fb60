// Package httpapi exposes the engine over HTTP: tracker lifecycle,
// manual review actions, AVE corrections, aggregate stats and an
// on-demand crawl trigger.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/usecase"
)

// Server bundles the use-case services behind a gin router.
type Server struct {
	lifecycle *usecase.LifecycleService
	resolver  *usecase.Resolver
	ave       *usecase.AVEService
	stats     *usecase.StatsService
	crawler   *usecase.Crawler
	logger    *slog.Logger
}

// NewServer wires the HTTP layer.
func NewServer(
	lifecycle *usecase.LifecycleService,
	resolver *usecase.Resolver,
	ave *usecase.AVEService,
	stats *usecase.StatsService,
	crawler *usecase.Crawler,
	logger *slog.Logger,
) *Server {
	return &Server{
		lifecycle: lifecycle,
		resolver:  resolver,
		ave:       ave,
		stats:     stats,
		crawler:   crawler,
		logger:    logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.POST("/trackers", s.createTracker)
		api.GET("/trackers/:id/status", s.trackerStatus)
		api.POST("/trackers/:id/toggle", s.toggleTracker)
		api.POST("/trackers/:id/extend", s.extendTracker)
		api.POST("/trackers/:id/clippings", s.addManualClipping)

		api.POST("/suggestions/:id/confirm", s.confirmSuggestion)
		api.POST("/suggestions/:id/spam", s.markSuggestionSpam)

		api.GET("/clippings/:id/ave", s.clippingAVE)
		api.PUT("/clippings/:id/ave", s.overrideAVE)
		api.PUT("/clippings/:id/sentiment", s.overrideSentiment)

		api.GET("/organizations/:orgId/ave-settings", s.aveSettings)
		api.GET("/organizations/:orgId/stats", s.organizationStats)

		api.GET("/stats/system", s.systemStats)
		api.GET("/stats/channels", s.channelHealth)
		api.POST("/stats/cache/clear", s.clearStatsCache)

		api.POST("/crawler/run", s.runCrawl)
	}

	return router
}

func (s *Server) respondError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	var invalidState *domain.InvalidStateError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusConflict, gin.H{"error": invalidState.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func actor(c *gin.Context) string {
	if v := c.GetHeader("X-Actor"); v != "" {
		return v
	}
	return "api"
}

type createTrackerRequest struct {
	CampaignID     string   `json:"campaignId" binding:"required"`
	OrganizationID string   `json:"organizationId" binding:"required"`
	ManualKeywords []string `json:"manualKeywords"`
	Feeds          []struct {
		PublicationID   string `json:"publicationId"`
		PublicationName string `json:"publicationName"`
		FeedURL         string `json:"feedUrl"`
	} `json:"feeds"`
}

func (s *Server) createTracker(c *gin.Context) {
	var req createTrackerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := usecase.CreateTrackerInput{
		CampaignID:     req.CampaignID,
		OrganizationID: req.OrganizationID,
		ManualKeywords: req.ManualKeywords,
	}
	for _, feed := range req.Feeds {
		input.Feeds = append(input.Feeds, domain.PublicationFeed{
			PublicationID:   feed.PublicationID,
			PublicationName: feed.PublicationName,
			FeedURL:         feed.FeedURL,
		})
	}

	tracker, err := s.lifecycle.CreateForCampaign(c.Request.Context(), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tracker)
}

func (s *Server) trackerStatus(c *gin.Context) {
	status, err := s.lifecycle.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trackerId": c.Param("id"), "status": status})
}

type toggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (s *Server) toggleTracker(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.lifecycle.Toggle(c.Request.Context(), c.Param("id"), *req.Enabled); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trackerId": c.Param("id"), "enabled": *req.Enabled})
}

type extendRequest struct {
	Days int `json:"days" binding:"required"`
}

func (s *Server) extendTracker(c *gin.Context) {
	var req extendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.lifecycle.Extend(c.Request.Context(), c.Param("id"), req.Days); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trackerId": c.Param("id"), "days": req.Days})
}

type manualClippingRequest struct {
	Title       string `json:"title" binding:"required"`
	URL         string `json:"url" binding:"required"`
	Excerpt     string `json:"excerpt"`
	OutletName  string `json:"outletName"`
	OutletType  string `json:"outletType"`
	Reach       int64  `json:"reach"`
	Sentiment   string `json:"sentiment"`
	PublishedAt string `json:"publishedAt"`
}

func (s *Server) addManualClipping(c *gin.Context) {
	var req manualClippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clipping := &domain.MediaClipping{
		Title:      req.Title,
		URL:        req.URL,
		Excerpt:    req.Excerpt,
		OutletName: req.OutletName,
		OutletType: domain.OutletType(req.OutletType),
		Reach:      req.Reach,
		Sentiment:  domain.Sentiment(req.Sentiment),
		DetectedBy: actor(c),
	}

	created, err := s.resolver.AddManualClipping(c.Request.Context(), c.Param("id"), clipping)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) confirmSuggestion(c *gin.Context) {
	clipping, err := s.resolver.ConfirmSuggestion(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clipping)
}

func (s *Server) markSuggestionSpam(c *gin.Context) {
	if err := s.resolver.MarkAsSpam(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestionId": c.Param("id"), "status": domain.SuggestionSpam})
}

func (s *Server) clippingAVE(c *gin.Context) {
	clipping, err := s.ave.GetClipping(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	value, err := s.ave.CalculateAVE(c.Request.Context(), *clipping)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clippingId": clipping.ID, "ave": value})
}

type aveOverrideRequest struct {
	Value *float64 `json:"value" binding:"required"`
}

func (s *Server) overrideAVE(c *gin.Context) {
	var req aveOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.ave.OverrideAVE(c.Request.Context(), c.Param("id"), *req.Value, actor(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clippingId": c.Param("id"), "ave": *req.Value})
}

type sentimentOverrideRequest struct {
	Sentiment string `json:"sentiment" binding:"required"`
}

func (s *Server) overrideSentiment(c *gin.Context) {
	var req sentimentOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.ave.OverrideSentiment(c.Request.Context(), c.Param("id"), domain.Sentiment(req.Sentiment), actor(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clippingId": c.Param("id"), "sentiment": req.Sentiment})
}

func (s *Server) aveSettings(c *gin.Context) {
	settings, err := s.ave.GetOrCreateSettings(c.Request.Context(), c.Param("orgId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) organizationStats(c *gin.Context) {
	stats, err := s.stats.GetOrganizationStats(c.Request.Context(), c.Param("orgId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) systemStats(c *gin.Context) {
	stats, err := s.stats.GetSystemStats(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) channelHealth(c *gin.Context) {
	health, err := s.stats.GetChannelHealth(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, health)
}

func (s *Server) clearStatsCache(c *gin.Context) {
	s.stats.ClearCache()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func (s *Server) runCrawl(c *gin.Context) {
	run, err := s.crawler.RunIngestionPass(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
