package domain

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// idLength is the number of hex characters kept from the link digest.
const idLength = 12

// CandidateItem is a single aggregated feed entry awaiting evaluation.
type CandidateItem struct {
	ID          string
	Title       string
	Link        string
	Summary     string
	SourceName  string
	SourceTrust int
	Category    string
	PublishedAt *time.Time
	CollectedAt time.Time
}

// ScoredItem captures the decision engine output for one candidate.
type ScoredItem struct {
	Item             CandidateItem
	LocalizedTitle   string
	LocalizedSummary string
	Score            int
	Tier             Tier
	Rationale        string
	Origin           ScoreOrigin
}

// ScoreOrigin records which path of the scoring engine produced a result.
type ScoreOrigin string

const (
	OriginOracle   ScoreOrigin = "oracle"
	OriginFallback ScoreOrigin = "fallback"
)

// ItemID derives the content-addressed identifier of a canonical link.
func ItemID(link string) string {
	sum := md5.Sum([]byte(strings.TrimSpace(link)))
	return hex.EncodeToString(sum[:])[:idLength]
}

// IDs returns the identifiers of the scored items in order.
func IDs(items []ScoredItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.Item.ID)
	}
	return ids
}

// SortByScore orders items by descending score, keeping input order on ties.
func SortByScore(items []ScoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}
