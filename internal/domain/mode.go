package domain

import (
	"fmt"
	"strings"
)

// Mode selects what a single pipeline run delivers.
type Mode string

const (
	ModeRealtime Mode = "realtime"
	ModeBatch    Mode = "batch"
	ModeDaily    Mode = "daily"
	ModeTest     Mode = "test"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeRealtime, ModeBatch, ModeDaily, ModeTest:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}
