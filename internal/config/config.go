package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Asia/Seoul"

	configPathEnv     = "NEWSPULSE_CONFIG"
	logLevelEnv       = "NEWSPULSE_LOG_LEVEL"
	dedupDSNEnv       = "NEWSPULSE_DEDUP_DSN"
	pushgatewayEnv    = "NEWSPULSE_PUSHGATEWAY_URL"
	oracleAPIKeyEnv   = "ORACLE_API_KEY"
	geminiAPIKeyEnv   = "GEMINI_API_KEY"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Oracle providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderHTTP   = "http"
)

// Dedup backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Telegram TelegramConfig `yaml:"telegram"`
	Dedup    DedupConfig    `yaml:"dedup"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Sources  []SourceConfig `yaml:"sources"`
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OracleConfig defines how to contact the text-analysis model.
type OracleConfig struct {
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	APIKey          string        `yaml:"apiKey"`
	BaseURL         string        `yaml:"baseUrl"`
	Timeout         time.Duration `yaml:"timeout"`
	Temperature     float32       `yaml:"temperature"`
	MaxOutputTokens int           `yaml:"maxOutputTokens"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string        `yaml:"botToken"`
	ChatID   string        `yaml:"chatId"`
	BaseURL  string        `yaml:"baseUrl"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DedupConfig selects where seen identifiers live and for how long.
type DedupConfig struct {
	Backend   string        `yaml:"backend"`
	Path      string        `yaml:"path"`
	DSN       string        `yaml:"dsn"`
	RedisAddr string        `yaml:"redisAddr"`
	RedisKey  string        `yaml:"redisKey"`
	Retention time.Duration `yaml:"retention"`
}

// ScoringConfig tunes the heuristic half of the scoring engine.
type ScoringConfig struct {
	Keywords         []string      `yaml:"keywords"`
	ExcludeKeywords  []string      `yaml:"excludeKeywords"`
	MinSummaryLength int           `yaml:"minSummaryLength"`
	Pacing           time.Duration `yaml:"pacing"`
}

// DeliveryConfig bounds what each run mode sends.
type DeliveryConfig struct {
	ChunkSize  int            `yaml:"chunkSize"`
	MaxBatch   int            `yaml:"maxBatch"`
	DailyTopN  int            `yaml:"dailyTopN"`
	BatchLabel string         `yaml:"batchLabel"`
	DailyLabel string         `yaml:"dailyLabel"`
	Timezone   string         `yaml:"timezone"`
	location   *time.Location `yaml:"-"`
}

// Location resolves the delivery timezone string to a time.Location.
func (d DeliveryConfig) Location() *time.Location {
	if d.location != nil {
		return d.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FeedsConfig controls the ingestion collaborator.
type FeedsConfig struct {
	MaxPerSource int           `yaml:"maxPerSource"`
	MaxSummary   int           `yaml:"maxSummary"`
	Concurrency  int           `yaml:"concurrency"`
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"userAgent"`
}

// ScheduleConfig defines how often the schedule command runs each mode.
type ScheduleConfig struct {
	Realtime time.Duration `yaml:"realtime"`
	Batch    time.Duration `yaml:"batch"`
	Daily    time.Duration `yaml:"daily"`
}

// MetricsConfig points at an optional Prometheus Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgatewayUrl"`
	Job            string `yaml:"job"`
}

// SourceConfig describes a single feed with its scanner strategy.
type SourceConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Type     string `yaml:"type"`
	Trust    int    `yaml:"trust"`
	Category string `yaml:"category"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// An empty path falls back to NEWSPULSE_CONFIG.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}

	return cfg
}

// Validate reports structural problems that make a run meaningless.
// Missing credentials are reported by the adapters that need them.
func (c Config) Validate() error {
	switch c.Dedup.Backend {
	case BackendFile, BackendMemory, BackendSQLite, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("unknown dedup backend %q", c.Dedup.Backend)
	}
	if c.Dedup.Retention <= 0 {
		return fmt.Errorf("dedup retention must be positive")
	}
	if c.Delivery.ChunkSize <= 0 {
		return fmt.Errorf("delivery chunk size must be positive")
	}
	if c.Delivery.MaxBatch <= 0 || c.Delivery.DailyTopN <= 0 {
		return fmt.Errorf("delivery limits must be positive")
	}
	for _, src := range c.Sources {
		if src.URL == "" {
			return fmt.Errorf("source %q has no url", src.Name)
		}
		if src.Trust < 1 || src.Trust > 10 {
			return fmt.Errorf("source %q trust %d outside 1-10", src.Name, src.Trust)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Telegram.ChatID = v
	}

	if v := os.Getenv(oracleAPIKeyEnv); v != "" {
		c.Oracle.APIKey = v
	}

	if c.Oracle.APIKey == "" {
		switch strings.ToLower(c.Oracle.Provider) {
		case ProviderGemini:
			c.Oracle.APIKey = os.Getenv(geminiAPIKeyEnv)
		case ProviderOpenAI:
			c.Oracle.APIKey = os.Getenv(openAIAPIKeyEnv)
		}
	}

	if v := os.Getenv(dedupDSNEnv); v != "" {
		c.Dedup.DSN = v
	}

	if v := os.Getenv(pushgatewayEnv); v != "" {
		c.Metrics.PushgatewayURL = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Delivery.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Delivery.location = loc
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Oracle: OracleConfig{
			Provider:        ProviderGemini,
			Model:           "gemini-2.5-flash",
			Timeout:         60 * time.Second,
			Temperature:     0.2,
			MaxOutputTokens: 1000,
		},
		Telegram: TelegramConfig{
			BaseURL: "https://api.telegram.org",
			Timeout: 30 * time.Second,
		},
		Dedup: DedupConfig{
			Backend:   BackendFile,
			Path:      "data/seen_news.json",
			RedisKey:  "newspulse:seen",
			Retention: 48 * time.Hour,
		},
		Scoring: ScoringConfig{
			Keywords:         DefaultKeywords(),
			ExcludeKeywords:  DefaultExcludeKeywords(),
			MinSummaryLength: 30,
			Pacing:           300 * time.Millisecond,
		},
		Delivery: DeliveryConfig{
			ChunkSize:  5,
			MaxBatch:   10,
			DailyTopN:  15,
			BatchLabel: "AI 뉴스 6시간 요약",
			DailyLabel: "오늘의 AI 뉴스 요약",
			Timezone:   defaultTimezone,
		},
		Feeds: FeedsConfig{
			MaxPerSource: 15,
			MaxSummary:   500,
			Concurrency:  4,
			Timeout:      20 * time.Second,
			UserAgent:    "NewsPulse/1.0 (Personal Use)",
		},
		Schedule: ScheduleConfig{
			Realtime: 30 * time.Minute,
			Batch:    6 * time.Hour,
			Daily:    24 * time.Hour,
		},
		Metrics: MetricsConfig{Job: "newspulse"},
	}
}
