package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips scheme and www", "https://www.TechDaily.example/Articles/acme", "techdaily.example/Articles/acme"},
		{"strips tracking params", "https://techdaily.example/a?utm_source=rss&utm_medium=feed&id=7", "techdaily.example/a?id=7"},
		{"strips fbclid and ref", "https://techdaily.example/a?fbclid=xyz&ref=tw", "techdaily.example/a"},
		{"strips fragment", "https://techdaily.example/a#section", "techdaily.example/a"},
		{"strips trailing slash", "https://techdaily.example/a/", "techdaily.example/a"},
		{"same article dedups across variants", "http://www.techdaily.example/a/?utm_campaign=x", "techdaily.example/a"},
		{"hostless input lowercased", "Not A URL", "not a url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeURL(tc.in))
		})
	}
}

func TestTrackerStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tracker := MonitoringTracker{
		IsActive:  true,
		StartDate: now.AddDate(0, 0, -10),
		EndDate:   now.AddDate(0, 0, 20),
	}

	assert.Equal(t, TrackerActive, tracker.Status(now))

	tracker.IsActive = false
	assert.Equal(t, TrackerInactive, tracker.Status(now))

	// Expiry wins over the active flag.
	tracker.IsActive = true
	assert.Equal(t, TrackerExpired, tracker.Status(tracker.EndDate.AddDate(0, 0, 1)))
}

func TestTrackerInWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tracker := MonitoringTracker{
		StartDate: now.AddDate(0, 0, -10),
		EndDate:   now.AddDate(0, 0, 20),
	}

	assert.True(t, tracker.InWindow(now.AddDate(0, 0, -5), now))
	assert.True(t, tracker.InWindow(tracker.StartDate, now))
	assert.False(t, tracker.InWindow(tracker.StartDate.Add(-time.Second), now))
	// The window is capped at now even when endDate lies further out.
	assert.False(t, tracker.InWindow(now.Add(time.Hour), now))
}

func TestAVESettingsCalculate(t *testing.T) {
	settings := DefaultAVESettings("org-1")

	assert.InDelta(t, 10.0, settings.Calculate(OutletOnline, 10000, SentimentPositive), 1e-9)
	assert.InDelta(t, 8.0, settings.Calculate(OutletOnline, 10000, SentimentNeutral), 1e-9)
	assert.InDelta(t, 5.0, settings.Calculate(OutletOnline, 10000, SentimentNegative), 1e-9)
	assert.Zero(t, settings.Calculate(OutletOnline, 0, SentimentPositive))
	assert.Zero(t, settings.Calculate(OutletType("newsletter"), 10000, SentimentPositive))
	// Unknown sentiment keeps the full value rather than dropping it.
	assert.InDelta(t, 10.0, settings.Calculate(OutletOnline, 10000, Sentiment("mixed")), 1e-9)
}
