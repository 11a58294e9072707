package domain

// Length limits applied to localized output, counted in runes.
const (
	MaxTitleRunes     = 50
	MaxSummaryRunes   = 200
	MaxRationaleRunes = 100
)

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// RuneLen counts the runes of s.
func RuneLen(s string) int {
	return len([]rune(s))
}
