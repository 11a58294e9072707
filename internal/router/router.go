// Package router decides which scored items each run mode delivers.
// Every function is pure and returns a new slice ordered by descending score.
package router

import (
	"NewsPulse/internal/domain"
)

// Default selection limits.
const (
	DefaultMaxBatch  = 10
	DefaultDailyTopN = 15
)

// Limits bounds the batch and daily selections.
type Limits struct {
	MaxBatch  int
	DailyTopN int
}

func (l Limits) withDefaults() Limits {
	if l.MaxBatch <= 0 {
		l.MaxBatch = DefaultMaxBatch
	}
	if l.DailyTopN <= 0 {
		l.DailyTopN = DefaultDailyTopN
	}
	return l
}

// Partition groups items by tier, keeping each group sorted.
func Partition(items []domain.ScoredItem) map[domain.Tier][]domain.ScoredItem {
	groups := make(map[domain.Tier][]domain.ScoredItem, 3)
	for _, it := range sorted(items) {
		groups[it.Tier] = append(groups[it.Tier], it)
	}
	return groups
}

// Realtime returns every REALTIME item.
func Realtime(items []domain.ScoredItem) []domain.ScoredItem {
	return filter(items, func(it domain.ScoredItem) bool {
		return domain.TierForScore(it.Score) == domain.TierRealtime
	})
}

// Batch returns items scoring at least the batch threshold, at most
// limits.MaxBatch of them. The lowest scores are dropped first.
func Batch(items []domain.ScoredItem, limits Limits) []domain.ScoredItem {
	limits = limits.withDefaults()
	selected := filter(items, func(it domain.ScoredItem) bool {
		return it.Score >= domain.BatchThreshold
	})
	return head(selected, limits.MaxBatch)
}

// Daily returns the top limits.DailyTopN items regardless of tier.
func Daily(items []domain.ScoredItem, limits Limits) []domain.ScoredItem {
	limits = limits.withDefaults()
	return head(sorted(items), limits.DailyTopN)
}

// Select applies the selection of mode. Unknown modes select nothing.
func Select(mode domain.Mode, items []domain.ScoredItem, limits Limits) []domain.ScoredItem {
	switch mode {
	case domain.ModeRealtime:
		return Realtime(items)
	case domain.ModeBatch:
		return Batch(items, limits)
	case domain.ModeDaily:
		return Daily(items, limits)
	default:
		return nil
	}
}

func sorted(items []domain.ScoredItem) []domain.ScoredItem {
	out := make([]domain.ScoredItem, len(items))
	copy(out, items)
	domain.SortByScore(out)
	return out
}

func filter(items []domain.ScoredItem, keep func(domain.ScoredItem) bool) []domain.ScoredItem {
	var out []domain.ScoredItem
	for _, it := range sorted(items) {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func head(items []domain.ScoredItem, n int) []domain.ScoredItem {
	if len(items) > n {
		return items[:n]
	}
	return items
}
