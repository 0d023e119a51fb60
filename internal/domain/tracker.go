package domain

import "time"

// ChannelType distinguishes the kinds of external sources a tracker watches.
type ChannelType string

const (
	ChannelRSSFeed    ChannelType = "rss_feed"
	ChannelGoogleNews ChannelType = "google_news"
)

// MonitoringChannel is one external source bound to a tracker.
type MonitoringChannel struct {
	ID              string
	Type            ChannelType
	URL             string
	PublicationID   string
	PublicationName string
	OrganizationID  string
	LastSuccess     *time.Time
}

// TrackerStatus is derived from the monitoring window and the active flag,
// never stored.
type TrackerStatus string

const (
	TrackerActive   TrackerStatus = "active"
	TrackerInactive TrackerStatus = "inactive"
	TrackerExpired  TrackerStatus = "expired"
)

// MonitoringTracker is the time-boxed monitoring configuration for one
// campaign. Counters are append-only and mutated exclusively through
// atomic increments at the persistence boundary.
type MonitoringTracker struct {
	ID             string
	OrganizationID string
	CampaignID     string
	ProjectID      string
	IsActive       bool
	StartDate      time.Time
	EndDate        time.Time
	Keywords       []string
	Channels       []MonitoringChannel

	TotalArticlesFound int64
	TotalAutoConfirmed int64
	TotalManuallyAdded int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status derives the tracker state at the given instant. Expiry wins over
// the active flag: a tracker past its endDate is expired even if enabled.
func (t MonitoringTracker) Status(now time.Time) TrackerStatus {
	if now.After(t.EndDate) {
		return TrackerExpired
	}
	if t.IsActive {
		return TrackerActive
	}
	return TrackerInactive
}

// InWindow reports whether a publication time falls inside the tracker's
// monitoring window, capped at now.
func (t MonitoringTracker) InWindow(publishedAt, now time.Time) bool {
	upper := t.EndDate
	if now.Before(upper) {
		upper = now
	}
	return !publishedAt.Before(t.StartDate) && !publishedAt.After(upper)
}
