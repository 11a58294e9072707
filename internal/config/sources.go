package config

import (
	_ "embed"
	"log"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultSourcesYAML []byte

// DefaultSources returns the built-in feed list.
func DefaultSources() []SourceConfig {
	var sources []SourceConfig
	if err := yaml.Unmarshal(defaultSourcesYAML, &sources); err != nil {
		log.Printf("config: embedded sources are invalid: %v", err)
		return nil
	}
	return sources
}

// DefaultKeywords lists terms that raise an item's importance.
func DefaultKeywords() []string {
	return []string{
		"gpt-5", "gpt5", "claude 4", "claude-4", "gemini 3", "llama 4",
		"release", "launch", "announce", "발표", "출시",
		"openai", "anthropic", "google deepmind", "meta ai",
		"breakthrough", "sota", "state-of-the-art", "benchmark",
		"agi", "safety", "alignment", "regulation", "법안",
		"sam altman", "dario amodei", "demis hassabis", "yann lecun",
		"andrej karpathy", "ilya sutskever",
	}
}

// DefaultExcludeKeywords lists terms that drop an item at ingestion.
func DefaultExcludeKeywords() []string {
	return []string{"sponsor", "advertisement", "promoted", "job posting"}
}
