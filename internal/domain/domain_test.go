package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForScoreBoundaries(t *testing.T) {
	t.Parallel()

	cases := map[int]Tier{
		1:  TierDaily,
		4:  TierDaily,
		5:  TierBatch,
		7:  TierBatch,
		8:  TierRealtime,
		10: TierRealtime,
	}
	for score, want := range cases {
		assert.Equal(t, want, TierForScore(score), "score %d", score)
	}
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, ClampScore(-3))
	assert.Equal(t, 1, ClampScore(0))
	assert.Equal(t, 6, ClampScore(6))
	assert.Equal(t, 10, ClampScore(14))
}

func TestItemIDIsContentAddressed(t *testing.T) {
	t.Parallel()

	a := ItemID("https://openai.com/news/gpt-5")
	b := ItemID(" https://openai.com/news/gpt-5 ")
	c := ItemID("https://openai.com/news/gpt-6")

	assert.Len(t, a, 12)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestTruncateCountsRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "오픈AI", Truncate("오픈AI 발표", 4))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "", Truncate("anything", 0))
	assert.Equal(t, 6, RuneLen("오픈AI 발"))
}

func TestIDSet(t *testing.T) {
	t.Parallel()

	set := NewIDSet("b", "a")
	set.Add("a", "c")

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Has("c"))
	assert.False(t, set.Has("d"))
	assert.Equal(t, []string{"a", "b", "c"}, set.Slice())
}

func TestSortByScoreIsStable(t *testing.T) {
	t.Parallel()

	items := []ScoredItem{
		{Item: CandidateItem{ID: "a"}, Score: 5},
		{Item: CandidateItem{ID: "b"}, Score: 9},
		{Item: CandidateItem{ID: "c"}, Score: 5},
		{Item: CandidateItem{ID: "d"}, Score: 7},
	}
	SortByScore(items)

	assert.Equal(t, []string{"b", "d", "a", "c"}, IDs(items))
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := ParseMode(" Daily ")
	assert.NoError(t, err)
	assert.Equal(t, ModeDaily, mode)

	_, err = ParseMode("weekly")
	assert.Error(t, err)
}
