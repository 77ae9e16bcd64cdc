// Package config defines environment variable keys for configuration.
package config

//nolint:gosec // Environment variable keys are not credentials.
const (
	// Core (Required)
	EnvLineChannelAccessToken = "JANSEVA_LINE_CHANNEL_ACCESS_TOKEN"
	EnvLineChannelSecret      = "JANSEVA_LINE_CHANNEL_SECRET"

	// Server
	EnvPort            = "JANSEVA_PORT"
	EnvLogLevel        = "JANSEVA_LOG_LEVEL"
	EnvShutdownTimeout = "JANSEVA_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir        = "JANSEVA_DATA_DIR"
	EnvRedisAddr      = "JANSEVA_REDIS_ADDR"
	EnvRedisPassword  = "JANSEVA_REDIS_PASSWORD"
	EnvLiveCacheTTL   = "JANSEVA_LIVE_CACHE_TTL"
	EnvSessionIdleTTL = "JANSEVA_SESSION_IDLE_TTL"

	// Search thresholds (domain-tunable, see pipeline cascade)
	EnvSearchHighThreshold = "JANSEVA_SEARCH_HIGH_THRESHOLD"
	EnvSearchBroadThreshold = "JANSEVA_SEARCH_BROAD_THRESHOLD"
	EnvSearchTopK           = "JANSEVA_SEARCH_TOP_K"

	// Stage timeouts
	EnvSemanticTimeout  = "JANSEVA_SEMANTIC_TIMEOUT"
	EnvDiscoveryTimeout = "JANSEVA_DISCOVERY_TIMEOUT"
	EnvFallbackTimeout  = "JANSEVA_FALLBACK_TIMEOUT"

	// Live discovery
	EnvPlacesBaseURL        = "JANSEVA_PLACES_BASE_URL"
	EnvDirectoryBaseURL     = "JANSEVA_DIRECTORY_BASE_URL"
	EnvDiscoveryMaxRetries  = "JANSEVA_DISCOVERY_MAX_RETRIES"
	EnvDiscoveryHTTPTimeout = "JANSEVA_DISCOVERY_HTTP_TIMEOUT"

	// Generic AI providers
	EnvLLMProviders       = "JANSEVA_LLM_PROVIDERS"
	EnvGeminiAPIKey       = "JANSEVA_GEMINI_API_KEY"
	EnvGroqAPIKey         = "JANSEVA_GROQ_API_KEY"
	EnvCerebrasAPIKey     = "JANSEVA_CEREBRAS_API_KEY"
	EnvGeminiModel        = "JANSEVA_GEMINI_MODEL"
	EnvGroqModel          = "JANSEVA_GROQ_MODEL"
	EnvCerebrasModel      = "JANSEVA_CEREBRAS_MODEL"
	EnvFallbackMaxAnswer  = "JANSEVA_FALLBACK_MAX_ANSWER_LEN"

	// Rate limits
	EnvUserRateBurst  = "JANSEVA_USER_RATE_BURST"
	EnvUserRateRefill = "JANSEVA_USER_RATE_REFILL"

	// Webhook
	EnvWebhookTimeout = "JANSEVA_WEBHOOK_TIMEOUT"

	// Backup feature (S3-compatible object storage)
	EnvBackupEnabled         = "JANSEVA_BACKUP_ENABLED"
	EnvBackupEndpoint        = "JANSEVA_BACKUP_ENDPOINT"
	EnvBackupAccessKeyID     = "JANSEVA_BACKUP_ACCESS_KEY_ID"
	EnvBackupSecretAccessKey = "JANSEVA_BACKUP_SECRET_ACCESS_KEY"
	EnvBackupBucket          = "JANSEVA_BACKUP_BUCKET"
	EnvBackupInterval        = "JANSEVA_BACKUP_INTERVAL"

	// Sentry feature
	EnvSentryDSN         = "JANSEVA_SENTRY_DSN"
	EnvSentryEnvironment = "JANSEVA_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "JANSEVA_SENTRY_SAMPLE_RATE"

	// Metrics auth feature
	EnvMetricsUsername = "JANSEVA_METRICS_USERNAME"
	EnvMetricsPassword = "JANSEVA_METRICS_PASSWORD"
)
