package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(telegramTokenEnv, "")
	t.Setenv(geminiAPIKeyEnv, "")
	t.Setenv(oracleAPIKeyEnv, "")

	cfg := Load("")

	assert.Equal(t, ProviderGemini, cfg.Oracle.Provider)
	assert.Equal(t, 48*time.Hour, cfg.Dedup.Retention)
	assert.Equal(t, 5, cfg.Delivery.ChunkSize)
	assert.Equal(t, 10, cfg.Delivery.MaxBatch)
	assert.Equal(t, 15, cfg.Delivery.DailyTopN)
	assert.Equal(t, 30, cfg.Scoring.MinSummaryLength)
	assert.Len(t, cfg.Sources, 53)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newspulse.yaml")
	raw := `
oracle:
  provider: openai
  model: gpt-4o-mini
dedup:
  backend: sqlite
  path: /tmp/seen.db
  retention: 24h
delivery:
  maxBatch: 3
  timezone: UTC
sources:
  - name: Test Feed
    url: https://example.com/feed.xml
    type: rss
    trust: 7
    category: news
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	t.Setenv(openAIAPIKeyEnv, "sk-test")
	t.Setenv(oracleAPIKeyEnv, "")
	t.Setenv(telegramTokenEnv, "bot-token")
	t.Setenv(telegramChatIDEnv, "42")

	cfg := Load(path)

	assert.Equal(t, ProviderOpenAI, cfg.Oracle.Provider)
	assert.Equal(t, "sk-test", cfg.Oracle.APIKey)
	assert.Equal(t, "bot-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, BackendSQLite, cfg.Dedup.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Dedup.Retention)
	assert.Equal(t, 3, cfg.Delivery.MaxBatch)
	assert.Equal(t, 5, cfg.Delivery.ChunkSize, "unset fields keep defaults")
	assert.Equal(t, time.UTC.String(), cfg.Delivery.Location().String())
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, 7, cfg.Sources[0].Trust)
}

func TestLoadBrokenFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("oracle: [unterminated"), 0o644))

	cfg := Load(path)

	assert.Equal(t, ProviderGemini, cfg.Oracle.Provider)
	assert.NotEmpty(t, cfg.Sources)
}

func TestValidateRejectsBadSource(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Sources = []SourceConfig{{Name: "bad", URL: "https://example.com", Trust: 11}}
	assert.Error(t, cfg.Validate())

	cfg.Sources = []SourceConfig{{Name: "ok", URL: "https://example.com", Trust: 5}}
	cfg.Dedup.Backend = "mongo"
	assert.Error(t, cfg.Validate())
}

func TestDefaultSourcesAreWellFormed(t *testing.T) {
	t.Parallel()

	for _, src := range DefaultSources() {
		assert.NotEmpty(t, src.Name)
		assert.NotEmpty(t, src.URL)
		assert.Equal(t, "rss", src.Type)
		assert.GreaterOrEqual(t, src.Trust, 1)
		assert.LessOrEqual(t, src.Trust, 10)
	}
}
