package domain

// MonitoringConfig carries the monitoring preferences attached to a
// campaign by its author.
type MonitoringConfig struct {
	IsEnabled  bool
	PeriodDays int
	Keywords   []string
}

// Campaign is the slice of a press campaign the engine consumes at
// tracker-creation time. The campaign store owns the rest.
type Campaign struct {
	ID               string
	OrganizationID   string
	ClientID         string
	ProjectID        string
	MonitoringConfig *MonitoringConfig
}

// Company is the directory record used for keyword extraction.
type Company struct {
	ID             string
	OrganizationID string
	Name           string
	OfficialName   string
	TradingName    string
}

// PublicationFeed seeds one RSS channel from a publication reached by the
// campaign's distribution lists.
type PublicationFeed struct {
	PublicationID   string
	PublicationName string
	FeedURL         string
}
