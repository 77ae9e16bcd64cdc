// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// search thresholds, stage timeouts, cache TTLs, and provider credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Stage timeout defaults. The semantic stage is local and fast; the generic
// fallback fans out to remote LLM providers and gets the largest budget.
const (
	DefaultSemanticTimeout  = 1 * time.Second
	DefaultDiscoveryTimeout = 15 * time.Second
	DefaultFallbackTimeout  = 8 * time.Second
)

// Search threshold defaults. Domain-tunable; kept as configuration rather
// than constants in the pipeline.
const (
	DefaultHighThreshold  = 0.8
	DefaultBroadThreshold = 0.5
	DefaultSearchTopK     = 5
)

// Config holds all application configuration
type Config struct {
	// LINE Bot Configuration
	LineChannelToken  string
	LineChannelSecret string

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	WebhookTimeout  time.Duration

	// Data Configuration
	DataDir        string        // Directory for the SQLite profile DB and the vector index
	RedisAddr      string        // Redis address for the live-search cache (empty = in-process cache disabled features degrade to direct calls)
	RedisPassword  string
	LiveCacheTTL   time.Duration // TTL for cached live place-search results
	SessionIdleTTL time.Duration // Idle period after which a conversation session is discarded

	// Search cascade configuration
	HighThreshold  float64 // Similarity required for an immediate index-high answer
	BroadThreshold float64 // Similarity for the widened second pass
	SearchTopK     int     // Candidates requested from the semantic index

	// Stage timeout budgets
	SemanticTimeout  time.Duration
	DiscoveryTimeout time.Duration
	FallbackTimeout  time.Duration

	// Live discovery
	PlacesBaseURL        string // Place-search API base URL
	DirectoryBaseURL     string // Government directory pages scraped as a fallback source
	DiscoveryMaxRetries  int
	DiscoveryHTTPTimeout time.Duration

	// Generic AI providers
	LLMProviders       []string // Ordered provider preference, e.g. "gemini,groq"
	GeminiAPIKey       string
	GroqAPIKey         string
	CerebrasAPIKey     string
	GeminiModel        string
	GroqModel          string
	CerebrasModel      string
	FallbackMaxAnswer  int // Maximum accepted answer length from a generic provider

	// Rate limits (token bucket)
	UserRateBurst  float64
	UserRateRefill float64 // tokens per second

	// Backup (S3-compatible object storage)
	BackupEnabled         bool
	BackupEndpoint        string
	BackupAccessKeyID     string
	BackupSecretAccessKey string
	BackupBucket          string
	BackupInterval        time.Duration

	// Sentry
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	// Metrics endpoint auth
	MetricsUsername string
	MetricsPassword string
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LineChannelToken:  getEnv(EnvLineChannelAccessToken, ""),
		LineChannelSecret: getEnv(EnvLineChannelSecret, ""),

		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),
		WebhookTimeout:  getDurationEnv(EnvWebhookTimeout, 60*time.Second),

		DataDir:        getEnv(EnvDataDir, "./data"),
		RedisAddr:      getEnv(EnvRedisAddr, ""),
		RedisPassword:  getEnv(EnvRedisPassword, ""),
		LiveCacheTTL:   getDurationEnv(EnvLiveCacheTTL, 24*time.Hour),
		SessionIdleTTL: getDurationEnv(EnvSessionIdleTTL, 2*time.Hour),

		HighThreshold:  getFloatEnv(EnvSearchHighThreshold, DefaultHighThreshold),
		BroadThreshold: getFloatEnv(EnvSearchBroadThreshold, DefaultBroadThreshold),
		SearchTopK:     getIntEnv(EnvSearchTopK, DefaultSearchTopK),

		SemanticTimeout:  getDurationEnv(EnvSemanticTimeout, DefaultSemanticTimeout),
		DiscoveryTimeout: getDurationEnv(EnvDiscoveryTimeout, DefaultDiscoveryTimeout),
		FallbackTimeout:  getDurationEnv(EnvFallbackTimeout, DefaultFallbackTimeout),

		PlacesBaseURL:        getEnv(EnvPlacesBaseURL, "https://nominatim.openstreetmap.org"),
		DirectoryBaseURL:     getEnv(EnvDirectoryBaseURL, ""),
		DiscoveryMaxRetries:  getIntEnv(EnvDiscoveryMaxRetries, 3),
		DiscoveryHTTPTimeout: getDurationEnv(EnvDiscoveryHTTPTimeout, 10*time.Second),

		LLMProviders:      splitList(getEnv(EnvLLMProviders, "gemini,groq")),
		GeminiAPIKey:      getEnv(EnvGeminiAPIKey, ""),
		GroqAPIKey:        getEnv(EnvGroqAPIKey, ""),
		CerebrasAPIKey:    getEnv(EnvCerebrasAPIKey, ""),
		GeminiModel:       getEnv(EnvGeminiModel, ""),
		GroqModel:         getEnv(EnvGroqModel, ""),
		CerebrasModel:     getEnv(EnvCerebrasModel, ""),
		FallbackMaxAnswer: getIntEnv(EnvFallbackMaxAnswer, 2000),

		UserRateBurst:  getFloatEnv(EnvUserRateBurst, 10),
		UserRateRefill: getFloatEnv(EnvUserRateRefill, 0.2),

		BackupEnabled:         getBoolEnv(EnvBackupEnabled, false),
		BackupEndpoint:        getEnv(EnvBackupEndpoint, ""),
		BackupAccessKeyID:     getEnv(EnvBackupAccessKeyID, ""),
		BackupSecretAccessKey: getEnv(EnvBackupSecretAccessKey, ""),
		BackupBucket:          getEnv(EnvBackupBucket, ""),
		BackupInterval:        getDurationEnv(EnvBackupInterval, 6*time.Hour),

		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.LineChannelToken == "" {
		return errors.New(EnvLineChannelAccessToken + " is required")
	}
	if c.LineChannelSecret == "" {
		return errors.New(EnvLineChannelSecret + " is required")
	}
	if c.HighThreshold < 0 || c.HighThreshold > 1 {
		return fmt.Errorf("high threshold %v out of range [0,1]", c.HighThreshold)
	}
	if c.BroadThreshold < 0 || c.BroadThreshold > 1 {
		return fmt.Errorf("broad threshold %v out of range [0,1]", c.BroadThreshold)
	}
	if c.BroadThreshold > c.HighThreshold {
		return fmt.Errorf("broad threshold %v must not exceed high threshold %v", c.BroadThreshold, c.HighThreshold)
	}
	if c.SearchTopK <= 0 {
		return fmt.Errorf("search top-k must be positive, got %d", c.SearchTopK)
	}
	if c.BackupEnabled && (c.BackupEndpoint == "" || c.BackupBucket == "") {
		return errors.New("backup endpoint and bucket are required when backup is enabled")
	}
	return nil
}

// SQLitePath returns the path to the profile database file.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "janseva.db")
}

// IndexDir returns the persistence directory for the vector index.
func (c *Config) IndexDir() string {
	return filepath.Join(c.DataDir, "index")
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv parses a duration environment variable or returns a default.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getIntEnv parses an integer environment variable or returns a default.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getFloatEnv parses a float environment variable or returns a default.
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getBoolEnv parses a boolean environment variable or returns a default.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// splitList splits a comma-separated list, trimming whitespace and
// dropping empty elements.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
