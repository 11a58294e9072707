package scoring

import (
	"fmt"
	"strings"

	"NewsPulse/internal/domain"
)

const analysisTemplate = `다음 AI/기술 뉴스를 분석해주세요.

**원문 제목**: %s
**원문 요약**: %s
**소스**: %s (신뢰도: %d/10)
**카테고리**: %s

다음 형식의 JSON으로만 응답해주세요 (다른 텍스트 없이):
{"korean_title": "한국어로 번역한 핵심 제목 (30자 이내)", "korean_summary": "한국어로 요약 (2-3문장, 핵심 내용만)", "importance_score": 5, "reason": "중요도 판단 이유 (1문장)"}

**중요도 기준**:
- 9-10: 주요 AI 기업의 새 모델 출시, 획기적인 연구 발표, 중요 정책/규제
- 7-8: 주목할 만한 기술 발전, 주요 인물의 중요 발언
- 5-6: 일반적인 업계 뉴스, 흥미로운 연구
- 3-4: 사소한 업데이트, 일상적인 뉴스
- 1-2: 광고성, 반복적인 내용

반드시 JSON 형식으로만 응답하세요. 줄바꿈 없이 한 줄로 응답하세요.`

const translationTemplate = `다음 영어 텍스트를 한국어로 번역해주세요. 반드시 아래 형식으로만 응답하세요.

제목: %s
요약: %s

응답 형식:
제목: [한국어 제목 30자 이내]
요약: [한국어 요약 2문장]`

// Input limits for the translation prompt, in runes.
const (
	translateTitleRunes   = 100
	translateSummaryRunes = 300
)

func analysisPrompt(item domain.CandidateItem) string {
	return fmt.Sprintf(analysisTemplate,
		item.Title,
		item.Summary,
		item.SourceName,
		item.SourceTrust,
		item.Category,
	)
}

func translationPrompt(title, summary string) string {
	return fmt.Sprintf(translationTemplate,
		domain.Truncate(title, translateTitleRunes),
		domain.Truncate(summary, translateSummaryRunes),
	)
}

var (
	titlePrefixes   = []string{"제목:", "title:"}
	summaryPrefixes = []string{"요약:", "summary:"}
)

// parseTranslation reads "제목:" and "요약:" lines from a translation reply.
// Lines that are missing or empty keep the given defaults.
func parseTranslation(reply, title, summary string) (string, string) {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*"))
		if v, ok := cutPrefix(line, titlePrefixes); ok && v != "" {
			title = v
		} else if v, ok := cutPrefix(line, summaryPrefixes); ok && v != "" {
			summary = v
		}
	}
	return title, summary
}

func cutPrefix(line string, prefixes []string) (string, bool) {
	lower := strings.ToLower(line)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return strings.TrimSpace(strings.TrimLeft(line[len(p):], "* ")), true
		}
	}
	return "", false
}
