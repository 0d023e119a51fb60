package feed

import (
	"context"
	"net/http"
	"strings"
	"time"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/ports"
)

// GoogleNewsSource fetches news-search result feeds. Google News serves
// search results as RSS; item titles carry the outlet as a suffix
// ("Headline - Outlet") and each item has a <source> element.
type GoogleNewsSource struct {
	client *http.Client
}

var _ ports.ChannelSource = (*GoogleNewsSource)(nil)

// NewGoogleNewsSource wires an HTTP client; a nil client gets a
// 20s-timeout default.
func NewGoogleNewsSource(client *http.Client) *GoogleNewsSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &GoogleNewsSource{client: client}
}

// Type identifies the source inside the registry.
func (s *GoogleNewsSource) Type() domain.ChannelType {
	return domain.ChannelGoogleNews
}

// Fetch downloads the search feed and normalizes its items, splitting
// the outlet name off the title when no <source> element is present.
func (s *GoogleNewsSource) Fetch(ctx context.Context, channel domain.MonitoringChannel) ([]domain.ArticleCandidate, error) {
	raw, err := fetchBody(ctx, s.client, channel.URL)
	if err != nil {
		return nil, err
	}

	candidates, err := parseFeed(raw, channel.PublicationName)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		title, outlet := splitTitleOutlet(candidates[i].Title)
		candidates[i].Title = title
		if candidates[i].PublicationName == "" || candidates[i].PublicationName == channel.PublicationName {
			if outlet != "" {
				candidates[i].PublicationName = outlet
			}
		}
	}
	return candidates, nil
}

// splitTitleOutlet separates "Headline - Outlet" titles. The split
// happens on the last separator so hyphens inside the headline survive.
func splitTitleOutlet(title string) (string, string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 || idx >= len(title)-3 {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}
