package scoring

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	fieldTitle   = "korean_title"
	fieldSummary = "korean_summary"
	fieldScore   = "importance_score"
	fieldReason  = "reason"
)

// Analysis is the structured part of an oracle reply.
type Analysis struct {
	Title   string
	Summary string
	Reason  string
	// Score is only meaningful when HasScore is set.
	Score    int
	HasScore bool
}

// Parser is one strategy for recovering an Analysis from free text.
// Parse reports false when none of the expected fields could be found.
type Parser interface {
	Name() string
	Parse(text string) (Analysis, bool)
}

// DefaultParsers returns the strategies in the order they are attempted.
func DefaultParsers() []Parser {
	return []Parser{StrictParser{}, BraceParser{}, FieldParser{}}
}

// ParseAnalysis strips code fences from reply and returns the result of the
// first parser that succeeds together with its name.
func ParseAnalysis(parsers []Parser, reply string) (Analysis, string, bool) {
	text := stripFences(reply)
	if text == "" {
		return Analysis{}, "", false
	}
	for _, p := range parsers {
		if analysis, ok := p.Parse(text); ok {
			return analysis, p.Name(), true
		}
	}
	return Analysis{}, "", false
}

var fencePattern = regexp.MustCompile("(?i)```(?:json)?\\s*")

func stripFences(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}

// StrictParser decodes the whole text as one JSON object.
type StrictParser struct{}

func (StrictParser) Name() string { return "strict" }

func (StrictParser) Parse(text string) (Analysis, bool) {
	return decodeObject(text)
}

// BraceParser decodes the first balanced {...} object embedded in the text.
type BraceParser struct{}

func (BraceParser) Name() string { return "brace" }

func (BraceParser) Parse(text string) (Analysis, bool) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		end := matchBrace(text, start)
		if end < 0 {
			return Analysis{}, false
		}
		if analysis, ok := decodeObject(text[start : end+1]); ok {
			return analysis, true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return Analysis{}, false
}

// matchBrace returns the index of the brace closing the one at start, or -1.
// Braces inside string literals do not count.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// FieldParser pulls each expected field out with its own pattern, so it
// still works on truncated or otherwise invalid JSON.
type FieldParser struct{}

var (
	titlePattern   = stringFieldPattern(fieldTitle)
	summaryPattern = stringFieldPattern(fieldSummary)
	reasonPattern  = stringFieldPattern(fieldReason)
	scorePattern   = regexp.MustCompile(`"` + fieldScore + `"\s*:\s*"?(-?\d+(?:\.\d+)?)`)
)

func stringFieldPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`"` + name + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
}

func (FieldParser) Name() string { return "field" }

func (FieldParser) Parse(text string) (Analysis, bool) {
	var analysis Analysis
	found := false

	if m := titlePattern.FindStringSubmatch(text); m != nil {
		analysis.Title = unescape(m[1])
		found = true
	}
	if m := summaryPattern.FindStringSubmatch(text); m != nil {
		analysis.Summary = unescape(m[1])
		found = true
	}
	if m := reasonPattern.FindStringSubmatch(text); m != nil {
		analysis.Reason = unescape(m[1])
		found = true
	}
	if m := scorePattern.FindStringSubmatch(text); m != nil {
		analysis.Score, analysis.HasScore = coerceScore(m[1])
		found = true
	}
	return analysis, found
}

func unescape(raw string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &out); err == nil {
		return out
	}
	return strings.ReplaceAll(raw, `\"`, `"`)
}

func decodeObject(text string) (Analysis, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Analysis{}, false
	}

	var analysis Analysis
	found := false
	if v, ok := raw[fieldTitle]; ok {
		analysis.Title = stringValue(v)
		found = true
	}
	if v, ok := raw[fieldSummary]; ok {
		analysis.Summary = stringValue(v)
		found = true
	}
	if v, ok := raw[fieldReason]; ok {
		analysis.Reason = stringValue(v)
		found = true
	}
	if v, ok := raw[fieldScore]; ok {
		analysis.Score, analysis.HasScore = coerceScore(v)
		found = true
	}
	return analysis, found
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// coerceScore turns a decoded score into an int. Fractions are truncated.
func coerceScore(v any) (int, bool) {
	switch s := v.(type) {
	case int:
		return s, true
	case float64:
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return 0, false
		}
		return int(math.Max(-1000, math.Min(1000, s))), true
	case string:
		s = strings.TrimSpace(s)
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return coerceScore(f)
		}
	}
	return 0, false
}
