package domain

import (
	"net/url"
	"strings"
	"time"
)

// ArticleCandidate is the normalized shape every channel source produces,
// regardless of whether it came from an RSS feed or a news search.
type ArticleCandidate struct {
	Title           string
	URL             string
	Excerpt         string
	PublicationName string
	PublishedAt     time.Time
}

// trackingParams are query parameters stripped during URL normalization so
// that syndicated links dedup to the same key.
var trackingParams = map[string]bool{
	"utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_term": true, "utm_content": true, "fbclid": true, "gclid": true,
	"ref": true,
}

// NormalizeURL produces the dedup key for a candidate URL: lowercased
// host without www, no scheme, no fragment, no tracking parameters, no
// trailing slash. Unparseable input falls back to the trimmed raw value.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(trimmed)
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")

	query := parsed.Query()
	for param := range query {
		if trackingParams[strings.ToLower(param)] {
			query.Del(param)
		}
	}

	path := strings.TrimSuffix(parsed.Path, "/")
	normalized := host + path
	if encoded := query.Encode(); encoded != "" {
		normalized += "?" + encoded
	}
	return normalized
}
