package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/ports"
)

const (
	userAgent    = "CampaignMonitor/1.0"
	maxFeedBytes = 4 << 20
)

// rssDocument covers RSS 2.0; atomDocument covers Atom feeds.
type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	PubDate     string    `xml:"pubDate"`
	Source      rssSource `xml:"source"`
}

type rssSource struct {
	URL  string `xml:"url,attr"`
	Name string `xml:",chardata"`
}

type atomDocument struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05Z",
	"2 Jan 2006",
}

// RSSSource fetches publication RSS/Atom feeds.
type RSSSource struct {
	client *http.Client
}

var _ ports.ChannelSource = (*RSSSource)(nil)

// NewRSSSource wires an HTTP client; a nil client gets a 20s-timeout default.
func NewRSSSource(client *http.Client) *RSSSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RSSSource{client: client}
}

// Type identifies the source inside the registry.
func (s *RSSSource) Type() domain.ChannelType {
	return domain.ChannelRSSFeed
}

// Fetch downloads and parses the channel's feed into candidates.
func (s *RSSSource) Fetch(ctx context.Context, channel domain.MonitoringChannel) ([]domain.ArticleCandidate, error) {
	raw, err := fetchBody(ctx, s.client, channel.URL)
	if err != nil {
		return nil, err
	}
	return parseFeed(raw, channel.PublicationName)
}

func fetchBody(ctx context.Context, client *http.Client, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	return raw, nil
}

// parseFeed tries RSS 2.0 first, then Atom. fallbackPublication fills in
// for items that carry no source of their own.
func parseFeed(raw []byte, fallbackPublication string) ([]domain.ArticleCandidate, error) {
	var rss rssDocument
	if err := xml.Unmarshal(raw, &rss); err == nil && len(rss.Channel.Items) > 0 {
		return rssCandidates(rss, fallbackPublication), nil
	}

	var atom atomDocument
	if err := xml.Unmarshal(raw, &atom); err == nil && len(atom.Entries) > 0 {
		return atomCandidates(atom, fallbackPublication), nil
	}

	return nil, fmt.Errorf("unrecognized feed format")
}

func rssCandidates(doc rssDocument, fallbackPublication string) []domain.ArticleCandidate {
	candidates := make([]domain.ArticleCandidate, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		publication := strings.TrimSpace(item.Source.Name)
		if publication == "" {
			publication = fallbackPublication
		}
		candidates = append(candidates, domain.ArticleCandidate{
			Title:           strings.TrimSpace(item.Title),
			URL:             link,
			Excerpt:         cleanExcerpt(item.Description),
			PublicationName: publication,
			PublishedAt:     parsePubDate(item.PubDate),
		})
	}
	return candidates
}

func atomCandidates(doc atomDocument, fallbackPublication string) []domain.ArticleCandidate {
	candidates := make([]domain.ArticleCandidate, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		link := pickAtomLink(entry.Links)
		if link == "" {
			continue
		}
		published := entry.Published
		if published == "" {
			published = entry.Updated
		}
		candidates = append(candidates, domain.ArticleCandidate{
			Title:           strings.TrimSpace(entry.Title),
			URL:             link,
			Excerpt:         cleanExcerpt(entry.Summary),
			PublicationName: fallbackPublication,
			PublishedAt:     parsePubDate(published),
		})
	}
	return candidates
}

func pickAtomLink(links []atomLink) string {
	for _, link := range links {
		if link.Rel == "" || link.Rel == "alternate" {
			return strings.TrimSpace(link.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

func parsePubDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range pubDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

// cleanExcerpt strips the embedded HTML markup feed descriptions tend to
// carry, leaving plain text.
func cleanExcerpt(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return description
	}
	return strings.TrimSpace(doc.Text())
}
