package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Result cache
	Cache CacheConfig

	// External APIs
	Yahoo     YahooConfig
	Anthropic AnthropicConfig

	// Domain
	Symbols   SymbolConfig
	Scoring   ScoringConfig
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
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

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// CacheConfig selects the result cache backend and its namespace TTLs
type CacheConfig struct {
	Backend     string // memory, redis
	Prefix      string
	MetricsTTL  time.Duration // computed profiles and scores
	AnalysisTTL time.Duration // narrative text
}

// YahooConfig holds the Yahoo Finance endpoints
type YahooConfig struct {
	QuoteURL      string
	SummaryURL    string
	TimeseriesURL string
	RateLimit     int // requests per second
	HistoryStart  time.Time
}

// AnthropicConfig holds narrative generation settings
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
}

// SymbolConfig holds the exchange suffixes tried for bare tickers
type SymbolConfig struct {
	PrimarySuffix   string
	SecondarySuffix string
}

// ScoringConfig holds quality score parameters
type ScoringConfig struct {
	RiskFreeRate float64
}

// SchedulerConfig holds cron expressions for background jobs
type SchedulerConfig struct {
	RefreshSchedule string
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Cache: CacheConfig{
			Backend:     getEnv("CACHE_BACKEND", "memory"),
			Prefix:      getEnv("CACHE_PREFIX", "greenblatt"),
			MetricsTTL:  getEnvAsDuration("CACHE_METRICS_TTL", "6h"),
			AnalysisTTL: getEnvAsDuration("CACHE_ANALYSIS_TTL", "24h"),
		},

		// External APIs
		Yahoo: YahooConfig{
			QuoteURL:      getEnv("YAHOO_QUOTE_URL", "https://query1.finance.yahoo.com/v7/finance/quote"),
			SummaryURL:    getEnv("YAHOO_SUMMARY_URL", "https://query2.finance.yahoo.com/v10/finance/quoteSummary"),
			TimeseriesURL: getEnv("YAHOO_TIMESERIES_URL", "https://query2.finance.yahoo.com/ws/fundamentals-timeseries/v1/finance/timeseries"),
			RateLimit:     getEnvAsInt("YAHOO_RATE_LIMIT", 5),
			HistoryStart:  getEnvAsDate("YAHOO_HISTORY_START", "2022-01-01"),
		},

		Anthropic: AnthropicConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			Model:     getEnv("ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
			MaxTokens: getEnvAsInt("ANTHROPIC_MAX_TOKENS", 500),
			BaseURL:   getEnv("ANTHROPIC_BASE_URL", ""),
		},

		Symbols: SymbolConfig{
			PrimarySuffix:   getEnv("SYMBOL_SUFFIX_PRIMARY", ".NS"),
			SecondarySuffix: getEnv("SYMBOL_SUFFIX_SECONDARY", ".BO"),
		},

		Scoring: ScoringConfig{
			RiskFreeRate: getEnvAsFloat("SCORING_RISK_FREE_RATE", 0.045),
		},

		Scheduler: SchedulerConfig{
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 0 6 * * *"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
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

	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, redis")
	}

	if c.Cache.MetricsTTL <= 0 || c.Cache.AnalysisTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}

	if c.Scoring.RiskFreeRate < 0 || c.Scoring.RiskFreeRate >= 1 {
		return fmt.Errorf("SCORING_RISK_FREE_RATE must be in [0, 1)")
	}

	if c.Yahoo.RateLimit <= 0 {
		return fmt.Errorf("YAHOO_RATE_LIMIT must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsDate(key string, defaultValue string) time.Time {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	date, err := time.Parse("2006-01-02", valueStr)
	if err != nil {
		date, _ = time.Parse("2006-01-02", defaultValue)
	}

	return date
}
