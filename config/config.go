package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"pairWatch/internal/adapters/logger" // Import the logger package for level parsing
	"pairWatch/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Binance API (optional: public market-data endpoints work without keys)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Dashboard Scope
	Mode       domain.TradingMode // paper or live
	MarketType domain.MarketType  // spot or futures

	// Engine Parameters
	OrderFetchLimit int           // Bounded order window per refresh (e.g., last 200)
	RefreshInterval time.Duration // How often the snapshot is recomputed

	// Risk Thresholds (0 disables the corresponding check)
	MaxOpenPairs int
	MaxExposure  float64
	MaxDailyLoss float64
	MaxDrawdown  float64 // Fraction, e.g. 0.2 for 20%

	// Database
	DBPath string

	// HTTP Server
	HTTPAddr string

	// Logging
	LogLevel zapcore.Level
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Dashboard Scope
	mode := strings.ToLower(getEnv("MODE", string(domain.ModeLive)))
	switch domain.TradingMode(mode) {
	case domain.ModePaper, domain.ModeLive:
		cfg.Mode = domain.TradingMode(mode)
	default:
		errs = append(errs, fmt.Sprintf("MODE must be 'paper' or 'live', got '%s'", mode))
	}

	marketType := strings.ToLower(getEnv("MARKET_TYPE", string(domain.MarketSpot)))
	switch domain.MarketType(marketType) {
	case domain.MarketSpot, domain.MarketFutures:
		cfg.MarketType = domain.MarketType(marketType)
	default:
		errs = append(errs, fmt.Sprintf("MARKET_TYPE must be 'spot' or 'futures', got '%s'", marketType))
	}

	// Engine Parameters
	cfg.OrderFetchLimit, err = getEnvAsIntRequired("ORDER_FETCH_LIMIT", 200)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ORDER_FETCH_LIMIT: %v", err))
	} else if cfg.OrderFetchLimit <= 0 {
		errs = append(errs, "ORDER_FETCH_LIMIT must be positive")
	}

	refreshSeconds := getEnvAsInt("REFRESH_INTERVAL_SECONDS", 5)
	if refreshSeconds <= 0 {
		errs = append(errs, "REFRESH_INTERVAL_SECONDS must be positive")
	}
	cfg.RefreshInterval = time.Duration(refreshSeconds) * time.Second

	// Risk Thresholds
	cfg.MaxOpenPairs = getEnvAsInt("MAX_OPEN_PAIRS", 0)
	if cfg.MaxOpenPairs < 0 {
		errs = append(errs, "MAX_OPEN_PAIRS cannot be negative")
	}
	cfg.MaxExposure = getEnvAsFloat("MAX_EXPOSURE", 0)
	if cfg.MaxExposure < 0 {
		errs = append(errs, "MAX_EXPOSURE cannot be negative")
	}
	cfg.MaxDailyLoss = getEnvAsFloat("MAX_DAILY_LOSS", 0)
	if cfg.MaxDailyLoss < 0 {
		errs = append(errs, "MAX_DAILY_LOSS cannot be negative")
	}
	cfg.MaxDrawdown = getEnvAsFloat("MAX_DRAWDOWN", 0)
	if cfg.MaxDrawdown < 0 || cfg.MaxDrawdown >= 1.0 {
		errs = append(errs, "MAX_DRAWDOWN must be between 0.0 and 1.0 (exclusive)")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/trading_bot.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// HTTP Server
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
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
