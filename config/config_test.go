package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "TESSDATA_PREFIX", "PADDLEOCR_API_URL", "REFERENCE_PRICE_OVERRIDE",
		"INVESTMENT_AMOUNT", "SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD",
		"EMAIL_FROM", "EMAIL_TO",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, 1.0, cfg.Analysis.NearThreshold)
	assert.Equal(t, 5.0, cfg.Analysis.FarThreshold)
	assert.Equal(t, 150.0, cfg.Analysis.RateFloor)
	assert.Equal(t, 50.0, cfg.Analysis.InvestmentAmount)
	assert.Nil(t, cfg.Analysis.ReferencePriceOverride)
	assert.Equal(t, 3, cfg.Analysis.WindowWidth)
	assert.False(t, cfg.Email.Enabled)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, `
server_port: "9090"
cache_ttl: 10m
analysis:
  near_threshold: 0.3
  reference_keywords: [index]
  coins: [BTC, ETH]
`))
	t.Setenv("REFERENCE_PRICE_OVERRIDE", "97.5")
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.ServerPort)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 0.3, cfg.Analysis.NearThreshold)
	assert.Equal(t, 5.0, cfg.Analysis.FarThreshold)
	assert.Equal(t, []string{"index"}, cfg.Analysis.ReferenceKeywords)
	assert.Equal(t, []string{"BTC", "ETH"}, cfg.Analysis.Coins)
	require.NotNil(t, cfg.Analysis.ReferencePriceOverride)
	assert.Equal(t, 97.5, *cfg.Analysis.ReferencePriceOverride)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"far below near", "analysis:\n  near_threshold: 3\n  far_threshold: 2\n"},
		{"window too wide", "analysis:\n  window_width: 4\n"},
		{"negative investment", "analysis:\n  investment_amount: -1\n"},
		{"malformed yaml", "analysis: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CONFIG_PATH", writeConfig(t, tt.body))

			cfg, err := LoadConfig()

			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadConfigBadOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("REFERENCE_PRICE_OVERRIDE", "abc")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "REFERENCE_PRICE_OVERRIDE")
}

func TestEmailRequiresRecipientsWhenEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SMTP_HOST", "smtp.example.com")

	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("EMAIL_FROM", "bot@example.com")
	t.Setenv("EMAIL_TO", "me@example.com, you@example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Email.Enabled)
	assert.Equal(t, []string{"me@example.com", "you@example.com"}, cfg.Email.To)
}
