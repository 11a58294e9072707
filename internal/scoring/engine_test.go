package scoring

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/logging"
	"NewsPulse/internal/metrics"
)

const longSummary = "오픈AI가 개발자를 위한 새로운 도구 모음을 공개했으며 API 사용자는 오늘부터 바로 이용할 수 있다."

// scriptedOracle answers analysis and translation prompts separately.
type scriptedOracle struct {
	analyze   func(ctx context.Context) (string, error)
	translate func(ctx context.Context) (string, error)

	mu           sync.Mutex
	analyses     int
	translations int
}

func (o *scriptedOracle) Name() string { return "scripted" }

func (o *scriptedOracle) Complete(ctx context.Context, prompt string) (string, error) {
	o.mu.Lock()
	isAnalysis := strings.Contains(prompt, "importance_score")
	if isAnalysis {
		o.analyses++
	} else {
		o.translations++
	}
	o.mu.Unlock()

	if isAnalysis {
		if o.analyze == nil {
			return "", errors.New("no analysis scripted")
		}
		return o.analyze(ctx)
	}
	if o.translate == nil {
		return "", errors.New("no translation scripted")
	}
	return o.translate(ctx)
}

func reply(text string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return text, nil }
}

func failWith(err error) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return "", err }
}

func newTestEngine(oracle *scriptedOracle, keywords ...string) *Engine {
	return NewEngine(oracle, Options{
		Keywords: keywords,
		Logger:   logging.Discard(),
	})
}

func candidate(title, summary string, trust int) domain.CandidateItem {
	link := "https://example.com/" + title
	return domain.CandidateItem{
		ID:          domain.ItemID(link),
		Title:       title,
		Link:        link,
		Summary:     summary,
		SourceName:  "Example",
		SourceTrust: trust,
		Category:    "ai_company",
	}
}

func TestScoreBlendsOracleScoreWithHeuristics(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{
		analyze: reply(`{"korean_title":"오픈AI 신규 도구 출시","korean_summary":"` + longSummary + `","importance_score":6,"reason":"주요 기업 발표"}`),
	}
	engine := newTestEngine(oracle, "OpenAI", "release", "Anthropic")

	got := engine.Score(context.Background(), candidate("OpenAI release notes for developers", "New tooling for API users.", 10))

	assert.Equal(t, 9, got.Score)
	assert.Equal(t, domain.TierRealtime, got.Tier)
	assert.Equal(t, domain.OriginOracle, got.Origin)
	assert.Equal(t, "오픈AI 신규 도구 출시", got.LocalizedTitle)
	assert.Equal(t, longSummary, got.LocalizedSummary)
	assert.Equal(t, "주요 기업 발표", got.Rationale)
	assert.Zero(t, oracle.translations)
}

func TestScoreFallsBackWhenOracleTimesOut(t *testing.T) {
	t.Parallel()

	rec := metrics.New()
	oracle := &scriptedOracle{
		analyze:   failWith(context.DeadlineExceeded),
		translate: failWith(context.DeadlineExceeded),
	}
	engine := NewEngine(oracle, Options{
		Keywords: []string{"OpenAI"},
		Metrics:  rec,
		Logger:   logging.Discard(),
	})
	item := candidate("Gardening tips for autumn", "How to prepare your beds before winter.", 5)

	got := engine.Score(context.Background(), item)

	assert.Equal(t, 5, got.Score)
	assert.Equal(t, domain.TierBatch, got.Tier)
	assert.Equal(t, domain.OriginFallback, got.Origin)
	assert.Equal(t, item.Title, got.LocalizedTitle)
	assert.Equal(t, item.Summary, got.LocalizedSummary)
	assert.Equal(t, AutoClassifiedReason, got.Rationale)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.OracleFailures.WithLabelValues(stageCall)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.OracleFailures.WithLabelValues(stageTranslate)))
}

func TestScoreFallbackUsesTranslation(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{
		analyze:   reply("I am unable to produce JSON today."),
		translate: reply("제목: 가을 정원 가꾸기\n요약: 겨울이 오기 전에 화단을 준비하는 방법을 소개한다."),
	}
	engine := newTestEngine(oracle)

	got := engine.Score(context.Background(), candidate("Gardening tips for autumn", "How to prepare your beds.", 5))

	assert.Equal(t, domain.OriginFallback, got.Origin)
	assert.Equal(t, 5, got.Score)
	assert.Equal(t, "가을 정원 가꾸기", got.LocalizedTitle)
	assert.Equal(t, "겨울이 오기 전에 화단을 준비하는 방법을 소개한다.", got.LocalizedSummary)
	assert.Equal(t, AutoClassifiedReason, got.Rationale)
}

func TestScoreHonoursCallTimeout(t *testing.T) {
	t.Parallel()

	block := func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	oracle := &scriptedOracle{analyze: block, translate: block}
	engine := NewEngine(oracle, Options{Timeout: 20 * time.Millisecond, Logger: logging.Discard()})

	start := time.Now()
	got := engine.Score(context.Background(), candidate("Slow oracle", "Nothing comes back.", 5))

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, domain.OriginFallback, got.Origin)
	assert.Equal(t, "Slow oracle", got.LocalizedTitle)
}

func TestScoreRecoversEmbeddedObject(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{
		analyze: reply(`Sure! {"korean_title":"새 모델 공개","importance_score":9,"korean_summary":"` + longSummary + `","reason":"획기적 발표"} Hope this helps!`),
	}
	engine := newTestEngine(oracle, "OpenAI")

	got := engine.Score(context.Background(), candidate("OpenAI ships a new model", "Details inside.", 10))

	assert.Equal(t, 10, got.Score)
	assert.Equal(t, domain.TierRealtime, got.Tier)
	assert.Equal(t, "새 모델 공개", got.LocalizedTitle)
	assert.Equal(t, domain.OriginOracle, got.Origin)
}

func TestScoreRegeneratesShortSummary(t *testing.T) {
	t.Parallel()

	translated := "번역으로 새로 만든 충분히 긴 한국어 요약 문장이며 핵심 내용을 담고 있다."
	oracle := &scriptedOracle{
		analyze:   reply(`{"korean_title":"짧은 요약 기사","korean_summary":"아주 짧은 요약 문장입니다","importance_score":6,"reason":"일반 뉴스"}`),
		translate: reply("제목: 다른 제목\n요약: " + translated),
	}
	engine := newTestEngine(oracle)

	got := engine.Score(context.Background(), candidate("Short summary story", "An English summary.", 5))

	assert.Equal(t, 1, oracle.translations)
	assert.Equal(t, "짧은 요약 기사", got.LocalizedTitle, "only the summary is regenerated")
	assert.Equal(t, translated, got.LocalizedSummary)
	assert.Equal(t, 6, got.Score)
	assert.Equal(t, domain.OriginOracle, got.Origin)
}

func TestScoreShortSummaryWithFailedTranslationKeepsOriginal(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{
		analyze:   reply(`{"korean_title":"제목","korean_summary":"짧음","importance_score":3}`),
		translate: failWith(errors.New("quota exceeded")),
	}
	engine := newTestEngine(oracle)
	item := candidate("Quota story", "Original English summary kept verbatim.", 5)

	got := engine.Score(context.Background(), item)

	assert.Equal(t, item.Summary, got.LocalizedSummary)
	assert.Equal(t, 3, got.Score)
	assert.Equal(t, domain.TierDaily, got.Tier)
}

func TestScoreAlwaysWithinRange(t *testing.T) {
	t.Parallel()

	keywords := []string{"openai", "gpt", "release", "model", "launch"}
	for _, raw := range []string{"-40", "0", "1", "4", "7", "10", "11", "999", `"12"`, `"abc"`} {
		for trust := 1; trust <= 10; trust++ {
			oracle := &scriptedOracle{
				analyze: reply(`{"korean_title":"t","korean_summary":"` + longSummary + `","importance_score":` + raw + `}`),
			}
			engine := newTestEngine(oracle, keywords...)

			got := engine.Score(context.Background(), candidate("OpenAI GPT model launch release", "", trust))

			assert.GreaterOrEqual(t, got.Score, domain.MinScore, "raw %s trust %d", raw, trust)
			assert.LessOrEqual(t, got.Score, domain.MaxScore, "raw %s trust %d", raw, trust)
			assert.Equal(t, domain.TierForScore(got.Score), got.Tier)
		}
	}
}

func TestScoreTruncatesLocalizedText(t *testing.T) {
	t.Parallel()

	longTitle := strings.Repeat("가", 80)
	longText := strings.Repeat("나", 400)
	longReason := strings.Repeat("다", 150)
	oracle := &scriptedOracle{
		analyze: reply(`{"korean_title":"` + longTitle + `","korean_summary":"` + longText + `","importance_score":5,"reason":"` + longReason + `"}`),
	}
	engine := newTestEngine(oracle)

	got := engine.Score(context.Background(), candidate("Long", "Long", 5))

	assert.Equal(t, domain.MaxTitleRunes, domain.RuneLen(got.LocalizedTitle))
	assert.Equal(t, domain.MaxSummaryRunes, domain.RuneLen(got.LocalizedSummary))
	assert.Equal(t, domain.MaxRationaleRunes, domain.RuneLen(got.Rationale))
}

func TestKeywordBonusIsCapped(t *testing.T) {
	t.Parallel()

	text := "OpenAI and Anthropic release GPT and Claude models at a launch event"
	keywords := []string{"openai", "anthropic", "release", "gpt", "claude", "launch"}

	assert.Equal(t, MaxKeywordBonus, KeywordBonus(text, keywords))
	assert.Equal(t, 2, KeywordBonus("OPENAI RELEASE", keywords))
	assert.Zero(t, KeywordBonus("gardening", keywords))
	assert.Zero(t, KeywordBonus("anything", []string{"", "  "}))
}

func TestBlendScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 9, BlendScore(6, 2, TrustBonus(10)))
	assert.Equal(t, 5, BlendScore(5, 0, TrustBonus(5)))
	assert.Equal(t, 6, BlendScore(5, 0, TrustBonus(8)))
	assert.Equal(t, 4, BlendScore(5, 0, TrustBonus(1)))
	assert.Equal(t, 10, BlendScore(9, 3, TrustBonus(10)))
	assert.Equal(t, 1, BlendScore(-5, 0, TrustBonus(1)))
}

type countingPacer struct {
	calls   int
	failAt  int
	failErr error
}

func (p *countingPacer) Wait(context.Context) error {
	p.calls++
	if p.failAt > 0 && p.calls >= p.failAt {
		return p.failErr
	}
	return nil
}

func TestScoreAllSortsAndPaces(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{analyze: failWith(errors.New("offline"))}
	pacer := &countingPacer{}
	engine := NewEngine(oracle, Options{
		Keywords: []string{"openai", "gpt", "release"},
		Pacer:    pacer,
		Logger:   logging.Discard(),
	})

	items := []domain.CandidateItem{
		candidate("weekly digest", "", 5),
		candidate("openai gpt release", "", 10),
		candidate("small update", "", 1),
		candidate("gpt tips", "", 5),
	}
	got := engine.ScoreAll(context.Background(), items)

	require.Len(t, got, 4)
	assert.Equal(t, 3, pacer.calls)
	assert.Equal(t, []int{9, 6, 5, 4}, []int{got[0].Score, got[1].Score, got[2].Score, got[3].Score})
	assert.Equal(t, items[1].ID, got[0].Item.ID)
}

func TestScoreAllStopsWhenPacerFails(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{analyze: failWith(errors.New("offline"))}
	pacer := &countingPacer{failAt: 2, failErr: context.Canceled}
	engine := NewEngine(oracle, Options{Pacer: pacer, Logger: logging.Discard()})

	items := []domain.CandidateItem{
		candidate("one", "", 5),
		candidate("two", "", 5),
		candidate("three", "", 5),
	}
	got := engine.ScoreAll(context.Background(), items)

	assert.Len(t, got, 2)
}
