package domain

import "time"

// SuggestionStatus is the three-way classification of a candidate article.
// Confirmed and spam are terminal.
type SuggestionStatus string

const (
	SuggestionPending   SuggestionStatus = "pending"
	SuggestionConfirmed SuggestionStatus = "confirmed"
	SuggestionSpam      SuggestionStatus = "spam"
)

// Sentiment is a coarse, advisory polarity estimate.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// MonitoringSuggestion is one candidate article surfaced by the crawler.
// At most one suggestion exists per normalized URL within a tracker.
type MonitoringSuggestion struct {
	ID              string
	OrganizationID  string
	CampaignID      string
	TrackerID       string
	ChannelID       string
	Status          SuggestionStatus
	URL             string
	NormalizedURL   string
	Title           string
	Excerpt         string
	PublicationName string
	ConfidenceScore float64
	Sentiment       Sentiment
	MatchedKeyword  string
	ClippingID      string
	PublishedAt     time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MatchResult is the scorer's verdict for one candidate.
type MatchResult struct {
	Confidence     float64
	Sentiment      Sentiment
	MatchedKeyword string
}
