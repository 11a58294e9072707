// Package llm holds the oracle adapters used by the scoring engine.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"NewsPulse/internal/config"
	"NewsPulse/internal/ports"
)

const defaultTimeout = 60 * time.Second

// NewOracle selects the provider named in cfg. Missing credentials are an error.
func NewOracle(ctx context.Context, cfg config.OracleConfig) (ports.Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case config.ProviderGemini, "":
		oracle, err := NewGeminiOracle(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("gemini oracle: %w", err)
		}
		return oracle, nil
	case config.ProviderOpenAI:
		oracle, err := NewOpenAIOracle(cfg)
		if err != nil {
			return nil, fmt.Errorf("openai oracle: %w", err)
		}
		return oracle, nil
	case config.ProviderHTTP:
		oracle, err := NewHTTPOracle(cfg)
		if err != nil {
			return nil, fmt.Errorf("http oracle: %w", err)
		}
		return oracle, nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}
