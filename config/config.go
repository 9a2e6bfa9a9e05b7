package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mrok911/ALKHALDI-trading-bot/internal/adapters/logger"
)

// Config holds all application configuration.
type Config struct {
	// Binance API
	BinanceAPIKey    string
	BinanceSecretKey string
	IsTestnet        bool

	// Telegram
	TelegramToken  string
	TelegramChatID int64
	WebhookURL     string // public base URL for webhook delivery; empty enables long polling
	ListenAddr     string // local address for the webhook listener, built from PORT

	// Scanning
	ScanInterval     time.Duration
	ScanInitialDelay time.Duration
	KlineInterval    string
	KlineLimit       int
	SignalMargin     float64 // fraction above the average close that qualifies as momentum
	MinDataPoints    int     // minimum kline samples required before evaluating a symbol
	ConfidenceBase   int

	// Trade lifecycle
	PollInterval      time.Duration
	TimeLimit         time.Duration
	StopLossFactor    float64
	TakeProfitFactors []float64

	// Rate limiting (shared across scanner and trackers)
	RateLimitCalls  int
	RateLimitPeriod time.Duration

	// Observability
	MetricsAddr string // empty disables the metrics endpoint
	LogLevel    logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Binance API
	cfg.BinanceAPIKey = getEnv("BINANCE_API_KEY", "")
	cfg.BinanceSecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Telegram
	cfg.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	if cfg.TelegramToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN must be set")
	}

	chatIDStr := getEnv("TELEGRAM_CHAT_ID", "")
	if chatIDStr == "" {
		errs = append(errs, "TELEGRAM_CHAT_ID must be set")
	} else {
		cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid TELEGRAM_CHAT_ID: %v", err))
		}
	}

	cfg.WebhookURL = strings.TrimRight(getEnv("WEBHOOK_URL", ""), "/")
	cfg.ListenAddr = ":" + getEnv("PORT", "8000")

	// Scanning
	scanIntervalSeconds, err := getEnvAsIntRequired("SCAN_INTERVAL_SECONDS", 60)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SCAN_INTERVAL_SECONDS: %v", err))
	} else if scanIntervalSeconds <= 0 {
		errs = append(errs, "SCAN_INTERVAL_SECONDS must be positive")
	}
	cfg.ScanInterval = time.Duration(scanIntervalSeconds) * time.Second

	scanInitialDelaySeconds, err := getEnvAsIntRequired("SCAN_INITIAL_DELAY_SECONDS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SCAN_INITIAL_DELAY_SECONDS: %v", err))
	} else if scanInitialDelaySeconds < 0 {
		errs = append(errs, "SCAN_INITIAL_DELAY_SECONDS cannot be negative")
	}
	cfg.ScanInitialDelay = time.Duration(scanInitialDelaySeconds) * time.Second

	cfg.KlineInterval = getEnv("KLINE_INTERVAL", "4h")
	if cfg.KlineInterval == "" {
		errs = append(errs, "KLINE_INTERVAL must be set")
	}

	cfg.KlineLimit, err = getEnvAsIntRequired("KLINE_LIMIT", 100)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid KLINE_LIMIT: %v", err))
	} else if cfg.KlineLimit <= 0 {
		errs = append(errs, "KLINE_LIMIT must be positive")
	}

	cfg.SignalMargin, err = getEnvAsFloatRequired("SIGNAL_MARGIN", 0.01)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SIGNAL_MARGIN: %v", err))
	} else if cfg.SignalMargin < 0 {
		errs = append(errs, "SIGNAL_MARGIN cannot be negative")
	}

	cfg.MinDataPoints, err = getEnvAsIntRequired("MIN_DATA_POINTS", 50)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MIN_DATA_POINTS: %v", err))
	} else if cfg.MinDataPoints <= 0 {
		errs = append(errs, "MIN_DATA_POINTS must be positive")
	}

	cfg.ConfidenceBase = getEnvAsInt("CONFIDENCE_BASE", 80)
	if cfg.ConfidenceBase < 0 || cfg.ConfidenceBase > 100 {
		errs = append(errs, "CONFIDENCE_BASE must be between 0 and 100")
	}

	// Trade lifecycle
	pollIntervalSeconds, err := getEnvAsIntRequired("POLL_INTERVAL_SECONDS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid POLL_INTERVAL_SECONDS: %v", err))
	} else if pollIntervalSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollIntervalSeconds) * time.Second

	timeLimitHours, err := getEnvAsIntRequired("TRADE_TIME_LIMIT_HOURS", 24)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TRADE_TIME_LIMIT_HOURS: %v", err))
	} else if timeLimitHours <= 0 {
		errs = append(errs, "TRADE_TIME_LIMIT_HOURS must be positive")
	}
	cfg.TimeLimit = time.Duration(timeLimitHours) * time.Hour

	cfg.StopLossFactor, err = getEnvAsFloatRequired("STOP_LOSS_FACTOR", 0.98)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STOP_LOSS_FACTOR: %v", err))
	} else if cfg.StopLossFactor <= 0 || cfg.StopLossFactor >= 1.0 {
		errs = append(errs, "STOP_LOSS_FACTOR must be between 0.0 and 1.0 (exclusive)")
	}

	cfg.TakeProfitFactors, err = parseFactors(getEnv("TAKE_PROFIT_FACTORS", "1.02,1.05,1.10"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TAKE_PROFIT_FACTORS: %v", err))
	}

	// Rate limiting
	cfg.RateLimitCalls, err = getEnvAsIntRequired("RATE_LIMIT_CALLS", 1200)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RATE_LIMIT_CALLS: %v", err))
	} else if cfg.RateLimitCalls <= 0 {
		errs = append(errs, "RATE_LIMIT_CALLS must be positive")
	}

	rateLimitPeriodSeconds, err := getEnvAsIntRequired("RATE_LIMIT_PERIOD_SECONDS", 60)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RATE_LIMIT_PERIOD_SECONDS: %v", err))
	} else if rateLimitPeriodSeconds <= 0 {
		errs = append(errs, "RATE_LIMIT_PERIOD_SECONDS must be positive")
	}
	cfg.RateLimitPeriod = time.Duration(rateLimitPeriodSeconds) * time.Second

	// Observability
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")

	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// parseFactors parses a comma-separated list of take-profit factors. The list
// must be non-empty, strictly increasing and every factor above 1.0.
func parseFactors(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	factors := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid factor '%s': %w", part, err)
		}
		factors = append(factors, f)
	}
	if len(factors) == 0 {
		return nil, fmt.Errorf("at least one factor is required")
	}
	for i, f := range factors {
		if f <= 1.0 {
			return nil, fmt.Errorf("factor %v must be above 1.0", f)
		}
		if i > 0 && f <= factors[i-1] {
			return nil, fmt.Errorf("factors must be strictly increasing")
		}
	}
	return factors, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
