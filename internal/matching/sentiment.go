package matching

import (
	"strings"

	"CampaignMonitor/internal/domain"
)

// Small bilingual polarity lexicons. The estimate is advisory only and
// always user-correctable on the resulting clipping.
var positiveWords = map[string]bool{
	"success": true, "award": true, "growth": true, "wins": true,
	"win": true, "launch": true, "innovative": true, "record": true,
	"breakthrough": true, "partnership": true, "expands": true,
	"erfolg": true, "auszeichnung": true, "wachstum": true,
	"gewinnt": true, "innovativ": true, "rekord": true,
	"durchbruch": true, "partnerschaft": true, "expandiert": true,
}

var negativeWords = map[string]bool{
	"scandal": true, "lawsuit": true, "fraud": true, "losses": true,
	"loss": true, "recall": true, "layoffs": true, "bankruptcy": true,
	"fails": true, "failure": true, "criticism": true,
	"skandal": true, "klage": true, "betrug": true, "verlust": true,
	"verluste": true, "rückruf": true, "entlassungen": true,
	"insolvenz": true, "kritik": true, "scheitert": true,
}

// EstimateSentiment counts polarity hits over the given text and returns
// the dominant polarity, neutral on a tie or no hits.
func EstimateSentiment(text string) domain.Sentiment {
	positives, negatives := 0, 0
	for _, token := range tokenize(strings.ToLower(text)) {
		if positiveWords[token] {
			positives++
		}
		if negativeWords[token] {
			negatives++
		}
	}
	switch {
	case positives > negatives:
		return domain.SentimentPositive
	case negatives > positives:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}
