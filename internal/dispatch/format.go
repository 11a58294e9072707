package dispatch

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"NewsPulse/internal/domain"
)

const (
	timestampLayout  = "2006-01-02 15:04 MST"
	divider          = "━━━━━━━━━━━━━━━"
	chunkSummaryRune = 100
)

var tierEmoji = map[domain.Tier]string{
	domain.TierRealtime: "🚨",
	domain.TierBatch:    "📢",
	domain.TierDaily:    "📰",
}

// Formatter renders scored items as Telegram HTML.
type Formatter struct {
	location *time.Location
	now      func() time.Time
	policy   *bluemonday.Policy
}

// NewFormatter stamps headers in loc using now. Nil arguments mean UTC and time.Now.
func NewFormatter(loc *time.Location, now func() time.Time) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Formatter{
		location: loc,
		now:      now,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Chunk renders one batch message. index is 1-based; the (i/n) suffix is
// only added when there is more than one chunk.
func (f *Formatter) Chunk(items []domain.ScoredItem, label string, index, total int) string {
	title := label
	if total > 1 {
		title = fmt.Sprintf("%s (%d/%d)", label, index, total)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>%s</b>\n", f.escape(title))
	fmt.Fprintf(&b, "🕐 %s\n", f.now().In(f.location).Format(timestampLayout))
	b.WriteString(divider)

	for i, it := range items {
		summary := it.LocalizedSummary
		if domain.RuneLen(summary) > chunkSummaryRune {
			summary = domain.Truncate(summary, chunkSummaryRune) + "..."
		}
		fmt.Fprintf(&b, "\n\n%d. %s <b>%s</b>\n", i+1, emoji(it), f.escape(it.LocalizedTitle))
		fmt.Fprintf(&b, "   %s\n", f.escape(summary))
		fmt.Fprintf(&b, "   ⭐ %d/10 | 📌 %s\n", it.Score, f.escape(it.Item.SourceName))
		fmt.Fprintf(&b, "   🔗 %s", link(it.Item.Link, "원문"))
	}
	return b.String()
}

// Single renders one item as a standalone alert.
func (f *Formatter) Single(it domain.ScoredItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b>\n\n", emoji(it), f.escape(it.LocalizedTitle))
	fmt.Fprintf(&b, "%s\n\n", f.escape(it.LocalizedSummary))
	fmt.Fprintf(&b, "⭐ 중요도: %d/10 [%s]\n", it.Score, importanceBar(it.Score))
	fmt.Fprintf(&b, "📌 출처: %s\n", f.escape(it.Item.SourceName))
	fmt.Fprintf(&b, "🔗 %s", link(it.Item.Link, "원문 보기"))
	return b.String()
}

// Notice renders free text with markup stripped.
func (f *Formatter) Notice(text string) string {
	return f.escape(text)
}

func (f *Formatter) escape(s string) string {
	return f.policy.Sanitize(s)
}

func emoji(it domain.ScoredItem) string {
	tier := it.Tier
	if tier == "" {
		tier = domain.TierForScore(it.Score)
	}
	if e, ok := tierEmoji[tier]; ok {
		return e
	}
	return tierEmoji[domain.TierDaily]
}

func importanceBar(score int) string {
	score = domain.ClampScore(score)
	return strings.Repeat("●", score) + strings.Repeat("○", domain.MaxScore-score)
}

func link(href, text string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), text)
}
