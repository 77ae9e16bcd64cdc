package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvLineChannelAccessToken, "token")
	t.Setenv(EnvLineChannelSecret, "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.InDelta(t, DefaultHighThreshold, cfg.HighThreshold, 1e-9)
	assert.InDelta(t, DefaultBroadThreshold, cfg.BroadThreshold, 1e-9)
	assert.Equal(t, DefaultSemanticTimeout, cfg.SemanticTimeout)
	assert.Equal(t, DefaultFallbackTimeout, cfg.FallbackTimeout)
	assert.Equal(t, []string{"gemini", "groq"}, cfg.LLMProviders)
	assert.Equal(t, 24*time.Hour, cfg.LiveCacheTTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLineChannelAccessToken, "token")
	t.Setenv(EnvLineChannelSecret, "secret")
	t.Setenv(EnvSearchHighThreshold, "0.9")
	t.Setenv(EnvSearchBroadThreshold, "0.4")
	t.Setenv(EnvFallbackTimeout, "12s")
	t.Setenv(EnvLLMProviders, "groq, cerebras")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.9, cfg.HighThreshold, 1e-9)
	assert.InDelta(t, 0.4, cfg.BroadThreshold, 1e-9)
	assert.Equal(t, 12*time.Second, cfg.FallbackTimeout)
	assert.Equal(t, []string{"groq", "cerebras"}, cfg.LLMProviders)
}

func TestLoad_MissingChannelToken(t *testing.T) {
	t.Setenv(EnvLineChannelAccessToken, "")
	t.Setenv(EnvLineChannelSecret, "secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	cfg := &Config{
		LineChannelToken:  "t",
		LineChannelSecret: "s",
		HighThreshold:     0.5,
		BroadThreshold:    0.8,
		SearchTopK:        5,
	}
	assert.Error(t, cfg.Validate(), "broad threshold above high threshold must be rejected")

	cfg.HighThreshold, cfg.BroadThreshold = 0.8, 0.5
	assert.NoError(t, cfg.Validate())
}

func TestValidate_BackupRequiresEndpoint(t *testing.T) {
	cfg := &Config{
		LineChannelToken:  "t",
		LineChannelSecret: "s",
		HighThreshold:     0.8,
		BroadThreshold:    0.5,
		SearchTopK:        5,
		BackupEnabled:     true,
	}
	assert.Error(t, cfg.Validate())
}
