package domain

import "time"

// OutletType categorizes the publishing medium for AVE rate lookup.
type OutletType string

const (
	OutletPrint     OutletType = "print"
	OutletOnline    OutletType = "online"
	OutletBroadcast OutletType = "broadcast"
	OutletAudio     OutletType = "audio"
)

// MediaClipping is a confirmed piece of coverage, the durable output of
// the engine. Immutable after creation except for the manual sentiment
// and AVE corrections.
type MediaClipping struct {
	ID             string
	OrganizationID string
	CampaignID     string
	ProjectID      string
	SuggestionID   string
	Title          string
	URL            string
	Excerpt        string
	OutletName     string
	OutletType     OutletType
	Reach          int64    // 0 means unknown
	AVE            *float64 // manual override; nil means compute on read
	Sentiment      Sentiment
	PublishedAt    time.Time
	DetectedBy     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AVESettings holds one organization's advertising-value rate table.
type AVESettings struct {
	ID                   string
	OrganizationID       string
	Factors              map[OutletType]float64
	SentimentMultipliers map[Sentiment]float64
	UpdatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DefaultAVESettings returns the stock rate table applied when an
// organization has not customized its settings yet.
func DefaultAVESettings(organizationID string) AVESettings {
	return AVESettings{
		OrganizationID: organizationID,
		Factors: map[OutletType]float64{
			OutletPrint:     0.003,
			OutletOnline:    0.001,
			OutletBroadcast: 0.005,
			OutletAudio:     0.002,
		},
		SentimentMultipliers: map[Sentiment]float64{
			SentimentPositive: 1.0,
			SentimentNeutral:  0.8,
			SentimentNegative: 0.5,
		},
	}
}

// Calculate computes reach * outlet factor * sentiment multiplier.
// Missing reach or an unconfigured outlet type yields 0, never an error.
func (s AVESettings) Calculate(outlet OutletType, reach int64, sentiment Sentiment) float64 {
	if reach <= 0 {
		return 0
	}
	factor, ok := s.Factors[outlet]
	if !ok {
		return 0
	}
	multiplier, ok := s.SentimentMultipliers[sentiment]
	if !ok {
		multiplier = 1.0
	}
	return float64(reach) * factor * multiplier
}
