package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Data providers
	MarketData MarketDataConfig

	// Scan
	Scan ScanConfig

	// Strategy thresholds (YAML, optional)
	StrategyFile string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// MarketDataConfig holds external data source configuration
type MarketDataConfig struct {
	YahooBaseURL       string
	YahooSummaryURL    string
	FinvizBaseURL      string
	FundamentalsSource string // yahoo, finviz, composite
	BenchmarkTicker    string
	LookbackDays       int
	RequestsPerSecond  float64
	MaxRetries         int
	Timeout            time.Duration

	// Cache TTLs (only used when Redis is enabled)
	PriceCacheTTL       time.Duration
	FundamentalCacheTTL time.Duration
}

// ScanConfig holds batch scan configuration
type ScanConfig struct {
	Workers   int
	Watchlist []string
	Schedule  string // cron expression with seconds
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		MarketData: MarketDataConfig{
			YahooBaseURL:        getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			YahooSummaryURL:     getEnv("YAHOO_SUMMARY_URL", "https://query2.finance.yahoo.com"),
			FinvizBaseURL:       getEnv("FINVIZ_BASE_URL", "https://finviz.com"),
			FundamentalsSource:  strings.ToLower(getEnv("FUNDAMENTALS_SOURCE", "composite")),
			BenchmarkTicker:     getEnv("BENCHMARK_TICKER", "SPY"),
			LookbackDays:        getEnvAsInt("LOOKBACK_DAYS", 400),
			RequestsPerSecond:   getEnvAsFloat("REQUESTS_PER_SECOND", 4),
			MaxRetries:          getEnvAsInt("HTTP_MAX_RETRIES", 3),
			Timeout:             getEnvAsDuration("HTTP_TIMEOUT", "30s"),
			PriceCacheTTL:       getEnvAsDuration("CACHE_TTL_PRICES", "6h"),
			FundamentalCacheTTL: getEnvAsDuration("CACHE_TTL_FUNDAMENTALS", "24h"),
		},

		Scan: ScanConfig{
			Workers:   getEnvAsInt("SCAN_WORKERS", 8),
			Watchlist: getEnvAsList("WATCHLIST"),
			Schedule:  getEnv("SCAN_SCHEDULE", "0 30 16 * * 1-5"),
		},

		StrategyFile: getEnv("STRATEGY_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.MarketData.FundamentalsSource {
	case "yahoo", "finviz", "composite":
	default:
		return fmt.Errorf("FUNDAMENTALS_SOURCE must be one of: yahoo, finviz, composite")
	}

	if c.MarketData.LookbackDays < 60 {
		return fmt.Errorf("LOOKBACK_DAYS must be >= 60, got %d", c.MarketData.LookbackDays)
	}

	if c.Scan.Workers <= 0 {
		return fmt.Errorf("SCAN_WORKERS must be > 0")
	}

	return nil
}

// HasDatabase reports whether a database URL is configured
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, e.g. WATCHLIST=AAPL,MSFT,NVDA
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
