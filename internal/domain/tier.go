package domain

// Tier enumerates delivery cadences.
type Tier string

const (
	TierRealtime Tier = "realtime"
	TierBatch    Tier = "batch"
	TierDaily    Tier = "daily"
)

// Score thresholds separating the tiers. A score equal to a threshold belongs
// to the higher tier.
const (
	RealtimeThreshold = 8
	BatchThreshold    = 5
)

// Score bounds.
const (
	MinScore = 1
	MaxScore = 10
)

// TierForScore maps a final score to its delivery tier.
func TierForScore(score int) Tier {
	switch {
	case score >= RealtimeThreshold:
		return TierRealtime
	case score >= BatchThreshold:
		return TierBatch
	default:
		return TierDaily
	}
}

// ClampScore bounds a score to [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
