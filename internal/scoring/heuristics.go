package scoring

import (
	"math"
	"strings"

	"NewsPulse/internal/domain"
)

const (
	// DefaultBaseScore stands in for a missing or non-numeric oracle score.
	DefaultBaseScore = 5
	// MaxKeywordBonus caps the keyword contribution.
	MaxKeywordBonus = 3

	neutralTrust = 5
	trustWeight  = 0.2
)

// KeywordBonus counts the keywords contained in text, case-insensitively,
// up to MaxKeywordBonus.
func KeywordBonus(text string, keywords []string) int {
	lower := strings.ToLower(text)
	bonus := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || !strings.Contains(lower, kw) {
			continue
		}
		bonus++
		if bonus == MaxKeywordBonus {
			break
		}
	}
	return bonus
}

// TrustBonus maps a 1-10 source trust rating to a score adjustment.
func TrustBonus(trust int) float64 {
	return float64(trust-neutralTrust) * trustWeight
}

// BlendScore rounds the sum of all contributions and clamps it to [1,10].
func BlendScore(base, keywordBonus int, trustBonus float64) int {
	total := float64(base) + float64(keywordBonus) + trustBonus
	return domain.ClampScore(int(math.Round(total)))
}
