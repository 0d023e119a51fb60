// Package matching scores candidate articles against a tracker's keyword
// set and estimates a coarse sentiment.
package matching

import (
	"regexp"
	"strings"
	"time"

	"CampaignMonitor/internal/domain"
)

// Component weights. Keyword presence in the title dominates; every
// contribution is non-negative so a stronger keyword match can never
// lower the final score.
const (
	titleWeight       = 0.55
	excerptWeight     = 0.25
	publicationWeight = 0.10
	recencyWeight     = 0.10

	// Partial credit for token overlap relative to an exact substring hit.
	partialFactor = 0.6

	// Coverage published within this span after the window start gets the
	// full recency bonus, decaying linearly to zero afterwards.
	recencyFullSpan  = 7 * 24 * time.Hour
	recencyZeroAfter = 28 * 24 * time.Hour
)

var tokenExpr = regexp.MustCompile(`[\p{L}\p{N}]+(?:-[\p{L}\p{N}]+)*`)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "to": true, "of": true,
	"in": true, "on": true, "for": true, "with": true, "by": true,
	"and": true, "or": true, "as": true, "at": true, "from": true,
	"der": true, "die": true, "das": true, "und": true, "für": true,
	"mit": true, "von": true, "im": true, "ein": true, "eine": true,
}

// Scorer compares candidates with tracker keywords.
type Scorer struct{}

// NewScorer builds a stateless scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score produces a confidence in [0,1] plus an advisory sentiment for the
// candidate. windowStart is the tracker's monitoring start, used for the
// recency bonus: coverage clusters shortly after a press release.
func (s *Scorer) Score(
	candidate domain.ArticleCandidate,
	channel domain.MonitoringChannel,
	keywords []string,
	windowStart time.Time,
) domain.MatchResult {
	titleScore, titleKeyword := bestKeywordMatch(candidate.Title, keywords)
	excerptScore, excerptKeyword := bestKeywordMatch(candidate.Excerpt, keywords)

	confidence := titleScore*titleWeight + excerptScore*excerptWeight

	if channel.PublicationName != "" && publicationMatches(candidate.PublicationName, channel.PublicationName) {
		confidence += publicationWeight
	}

	confidence += recencyBonus(candidate.PublishedAt, windowStart) * recencyWeight

	if confidence > 1 {
		confidence = 1
	}

	matched := titleKeyword
	if matched == "" {
		matched = excerptKeyword
	}

	return domain.MatchResult{
		Confidence:     confidence,
		Sentiment:      EstimateSentiment(candidate.Title + " " + candidate.Excerpt),
		MatchedKeyword: matched,
	}
}

// bestKeywordMatch returns the strongest match strength in [0,1] over all
// keywords: 1 for an exact substring hit, a scaled token-overlap ratio
// otherwise.
func bestKeywordMatch(text string, keywords []string) (float64, string) {
	if text == "" || len(keywords) == 0 {
		return 0, ""
	}

	lowerText := strings.ToLower(text)
	textTokens := tokenSet(lowerText)

	var best float64
	var bestKeyword string
	for _, keyword := range keywords {
		lowerKeyword := strings.ToLower(strings.TrimSpace(keyword))
		if lowerKeyword == "" {
			continue
		}

		var strength float64
		if strings.Contains(lowerText, lowerKeyword) {
			strength = 1
		} else {
			strength = overlapRatio(tokenize(lowerKeyword), textTokens) * partialFactor
		}

		if strength > best {
			best = strength
			bestKeyword = keyword
		}
	}
	return best, bestKeyword
}

func tokenize(raw string) []string {
	parts := tokenExpr.FindAllString(raw, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.ToLower(part)
		if stopwords[token] || len(token) <= 1 {
			continue
		}
		out = append(out, token)
	}
	return out
}

func tokenSet(raw string) map[string]bool {
	set := map[string]bool{}
	for _, token := range tokenize(raw) {
		set[token] = true
	}
	return set
}

func overlapRatio(keywordTokens []string, textTokens map[string]bool) float64 {
	if len(keywordTokens) == 0 {
		return 0
	}
	hits := 0
	for _, token := range keywordTokens {
		if textTokens[token] {
			hits++
		}
	}
	return float64(hits) / float64(len(keywordTokens))
}

func publicationMatches(candidateName, channelName string) bool {
	candidateLower := strings.ToLower(strings.TrimSpace(candidateName))
	channelLower := strings.ToLower(strings.TrimSpace(channelName))
	if candidateLower == "" || channelLower == "" {
		return false
	}
	return strings.Contains(candidateLower, channelLower) ||
		strings.Contains(channelLower, candidateLower)
}

func recencyBonus(publishedAt, windowStart time.Time) float64 {
	if publishedAt.IsZero() || publishedAt.Before(windowStart) {
		return 0
	}
	elapsed := publishedAt.Sub(windowStart)
	if elapsed <= recencyFullSpan {
		return 1
	}
	if elapsed >= recencyZeroAfter {
		return 0
	}
	return 1 - float64(elapsed-recencyFullSpan)/float64(recencyZeroAfter-recencyFullSpan)
}
