package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"CampaignMonitor/internal/domain"
)

var windowStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func candidate(title, excerpt string, publishedAt time.Time) domain.ArticleCandidate {
	return domain.ArticleCandidate{
		Title:       title,
		Excerpt:     excerpt,
		PublishedAt: publishedAt,
	}
}

func TestScoreTitleMatchDominates(t *testing.T) {
	t.Parallel()

	scorer := NewScorer()
	keywords := []string{"Acme Robotics"}

	inTitle := scorer.Score(
		candidate("Acme Robotics opens new plant", "", windowStart.Add(24*time.Hour)),
		domain.MonitoringChannel{}, keywords, windowStart)
	inExcerpt := scorer.Score(
		candidate("Industry news roundup", "A report about Acme Robotics", windowStart.Add(24*time.Hour)),
		domain.MonitoringChannel{}, keywords, windowStart)

	assert.Greater(t, inTitle.Confidence, inExcerpt.Confidence)
	assert.Equal(t, "Acme Robotics", inTitle.MatchedKeyword)
}

func TestScoreMonotonicInMatchStrength(t *testing.T) {
	t.Parallel()

	scorer := NewScorer()
	keywords := []string{"Acme Robotics"}
	publishedAt := windowStart.Add(48 * time.Hour)

	none := scorer.Score(candidate("Completely unrelated story", "", publishedAt),
		domain.MonitoringChannel{}, keywords, windowStart)
	partial := scorer.Score(candidate("Robotics fair draws crowds", "", publishedAt),
		domain.MonitoringChannel{}, keywords, windowStart)
	exact := scorer.Score(candidate("Acme Robotics fair draws crowds", "", publishedAt),
		domain.MonitoringChannel{}, keywords, windowStart)

	assert.LessOrEqual(t, none.Confidence, partial.Confidence)
	assert.Less(t, partial.Confidence, exact.Confidence)
}

func TestScorePublicationBonus(t *testing.T) {
	t.Parallel()

	scorer := NewScorer()
	keywords := []string{"Acme"}
	art := candidate("Acme expands", "", windowStart.Add(time.Hour))
	art.PublicationName = "Tech Daily"

	bound := domain.MonitoringChannel{PublicationName: "Tech Daily"}
	unbound := domain.MonitoringChannel{}

	withBonus := scorer.Score(art, bound, keywords, windowStart)
	withoutBonus := scorer.Score(art, unbound, keywords, windowStart)

	assert.InDelta(t, publicationWeight, withBonus.Confidence-withoutBonus.Confidence, 1e-9)
}

func TestScoreRecencyDecays(t *testing.T) {
	t.Parallel()

	scorer := NewScorer()
	keywords := []string{"Acme"}

	fresh := scorer.Score(candidate("Acme news", "", windowStart.Add(2*24*time.Hour)),
		domain.MonitoringChannel{}, keywords, windowStart)
	stale := scorer.Score(candidate("Acme news", "", windowStart.Add(40*24*time.Hour)),
		domain.MonitoringChannel{}, keywords, windowStart)

	assert.Greater(t, fresh.Confidence, stale.Confidence)
}

func TestScoreBounded(t *testing.T) {
	t.Parallel()

	scorer := NewScorer()
	art := candidate("Acme Acme Acme", "Acme everywhere", windowStart)
	art.PublicationName = "Daily"
	result := scorer.Score(art, domain.MonitoringChannel{PublicationName: "Daily"},
		[]string{"Acme", "Acme everywhere"}, windowStart)

	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
}

func TestEstimateSentiment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.SentimentPositive, EstimateSentiment("Acme wins innovation award"))
	assert.Equal(t, domain.SentimentNegative, EstimateSentiment("Acme hit by lawsuit after recall"))
	assert.Equal(t, domain.SentimentNeutral, EstimateSentiment("Acme announces quarterly report"))
	assert.Equal(t, domain.SentimentNeutral, EstimateSentiment(""))
}
