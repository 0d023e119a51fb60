package domain

import "time"

// RunStatus marks whether an ingestion pass itself completed. Channel
// failures do not fail a run.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// CrawlRunLog summarizes one scheduled ingestion pass.
type CrawlRunLog struct {
	ID                string
	StartedAt         time.Time
	Duration          time.Duration
	TrackersProcessed int
	ArticlesFound     int
	Status            RunStatus
	ErrorMessage      string
}

// CrawlErrorLog records a single channel-level fetch failure.
type CrawlErrorLog struct {
	ID         string
	TrackerID  string
	ChannelID  string
	ChannelURL string
	OccurredAt time.Time
	Message    string
}
