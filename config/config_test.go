package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:test-token")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "123456:test-token", cfg.TelegramToken)
	assert.Equal(t, int64(-1001234567890), cfg.TelegramChatID)
	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, 60*time.Second, cfg.ScanInterval)
	assert.Equal(t, 10*time.Second, cfg.ScanInitialDelay)
	assert.Equal(t, "4h", cfg.KlineInterval)
	assert.Equal(t, 100, cfg.KlineLimit)
	assert.Equal(t, 0.01, cfg.SignalMargin)
	assert.Equal(t, 50, cfg.MinDataPoints)
	assert.Equal(t, 80, cfg.ConfidenceBase)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 24*time.Hour, cfg.TimeLimit)
	assert.Equal(t, 0.98, cfg.StopLossFactor)
	assert.Equal(t, []float64{1.02, 1.05, 1.10}, cfg.TakeProfitFactors)
	assert.Equal(t, 1200, cfg.RateLimitCalls)
	assert.Equal(t, 60*time.Second, cfg.RateLimitPeriod)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadConfig_MissingTelegramSettings(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	assert.Contains(t, err.Error(), "TELEGRAM_CHAT_ID")
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SCAN_INTERVAL_SECONDS", "120")
	t.Setenv("TAKE_PROFIT_FACTORS", "1.01, 1.03")
	t.Setenv("STOP_LOSS_FACTOR", "0.95")
	t.Setenv("PORT", "9090")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com/")
	t.Setenv("METRICS_ADDR", ":2112")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.ScanInterval)
	assert.Equal(t, []float64{1.01, 1.03}, cfg.TakeProfitFactors)
	assert.Equal(t, 0.95, cfg.StopLossFactor)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "https://bot.example.com", cfg.WebhookURL, "trailing slash must be trimmed")
	assert.Equal(t, ":2112", cfg.MetricsAddr)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric chat ID", key: "TELEGRAM_CHAT_ID", value: "not-a-number"},
		{name: "zero scan interval", key: "SCAN_INTERVAL_SECONDS", value: "0"},
		{name: "stop loss above 1", key: "STOP_LOSS_FACTOR", value: "1.5"},
		{name: "zero time limit", key: "TRADE_TIME_LIMIT_HOURS", value: "0"},
		{name: "negative margin", key: "SIGNAL_MARGIN", value: "-0.01"},
		{name: "zero rate limit calls", key: "RATE_LIMIT_CALLS", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestParseFactors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []float64
		wantErr bool
	}{
		{name: "default list", raw: "1.02,1.05,1.10", want: []float64{1.02, 1.05, 1.10}},
		{name: "spaces tolerated", raw: " 1.02 , 1.05 ", want: []float64{1.02, 1.05}},
		{name: "single factor", raw: "1.03", want: []float64{1.03}},
		{name: "empty", raw: "", wantErr: true},
		{name: "not a number", raw: "1.02,abc", wantErr: true},
		{name: "factor at 1.0", raw: "1.0,1.05", wantErr: true},
		{name: "non-increasing", raw: "1.05,1.02", wantErr: true},
		{name: "duplicate", raw: "1.05,1.05", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFactors(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
