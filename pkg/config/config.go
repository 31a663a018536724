package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	AlphaVantage AlphaVantageConfig
	Stooq        StooqConfig
	OpenAI       OpenAIConfig

	// Scan configuration file (sectors, windows, thresholds)
	ScanConfigPath string

	// Output folders
	Output OutputConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

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

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey         string
	BaseURL        string
	OutputSize     string // compact (100 obs) or full
	RequestsPerMin int    // vendor rate limit budget
	RequestTimeout time.Duration
}

// StooqConfig holds the fallback history provider configuration
type StooqConfig struct {
	BaseURL string
	Enabled bool
}

// OpenAIConfig holds OpenAI API configuration for the market commentary step
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// OutputConfig holds artifact folder configuration
type OutputConfig struct {
	HistoricalDir string // JSON/CSV scan records
	ReportDir     string // AI analysis reports
	DocsDir       string // static-site publish folder
	RetentionDays int    // artifact cleanup horizon
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8091"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "sector_rotation"),
			User:            getEnv("DB_USER", "sector_rotation"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// External APIs
		AlphaVantage: AlphaVantageConfig{
			APIKey:         getEnv("ALPHAVANTAGE_API_KEY", ""),
			BaseURL:        getEnv("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
			OutputSize:     getEnv("ALPHAVANTAGE_OUTPUT_SIZE", "compact"),
			RequestsPerMin: getEnvAsInt("ALPHAVANTAGE_REQUESTS_PER_MIN", 75),
			RequestTimeout: getEnvAsDuration("ALPHAVANTAGE_REQUEST_TIMEOUT", "30s"),
		},

		Stooq: StooqConfig{
			BaseURL: getEnv("STOOQ_BASE_URL", "https://stooq.com"),
			Enabled: getEnvAsBool("STOOQ_FALLBACK_ENABLED", true),
		},

		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o"),
			MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 2000),
			Temperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
		},

		// Scan configuration
		ScanConfigPath: getEnv("SCAN_CONFIG_PATH", "config/scanner.yaml"),

		// Output
		Output: OutputConfig{
			HistoricalDir: getEnv("OUTPUT_HISTORICAL_DIR", "data/historical"),
			ReportDir:     getEnv("OUTPUT_REPORT_DIR", "output/reports"),
			DocsDir:       getEnv("OUTPUT_DOCS_DIR", "docs"),
			RetentionDays: getEnvAsInt("OUTPUT_RETENTION_DAYS", 7),
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

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.AlphaVantage.OutputSize != "compact" && c.AlphaVantage.OutputSize != "full" {
		return fmt.Errorf("ALPHAVANTAGE_OUTPUT_SIZE must be compact or full")
	}

	if c.AlphaVantage.RequestsPerMin <= 0 {
		return fmt.Errorf("ALPHAVANTAGE_REQUESTS_PER_MIN must be positive")
	}

	if c.Output.RetentionDays <= 0 {
		return fmt.Errorf("OUTPUT_RETENTION_DAYS must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
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
