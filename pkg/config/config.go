package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Scoring
	Scoring ScoringConfig

	// Backtest defaults
	Backtest BacktestConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration for the score cache.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ScoringConfig holds paths and knobs for the scoring pipeline.
type ScoringConfig struct {
	// TablesPath points at the YAML file holding the sector universe,
	// phase affinity table and macro sensitivity matrix.
	TablesPath string

	// ModelArtifactPath points at the forecast model artifact. An empty or
	// missing artifact leaves the model untrained (neutral forecasts).
	ModelArtifactPath string

	// ScoreCacheTTL bounds how long a day's rankings live in Redis.
	ScoreCacheTTL time.Duration
}

// BacktestConfig holds default backtest parameters, overridable per run.
type BacktestConfig struct {
	StartDate      string
	InitialCapital float64
	Rebalance      string
	TopN           int
	Benchmark      string
}

// Load reads configuration from environment variables.
// This function is the only caller of os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Scoring: ScoringConfig{
			TablesPath:        getEnv("TABLES_PATH", "config/tables.yaml"),
			ModelArtifactPath: getEnv("MODEL_ARTIFACT_PATH", "data/models/ensemble.json"),
			ScoreCacheTTL:     getEnvAsDuration("SCORE_CACHE_TTL", "24h"),
		},

		Backtest: BacktestConfig{
			StartDate:      getEnv("BACKTEST_START_DATE", "2005-01-01"),
			InitialCapital: getEnvAsFloat("BACKTEST_INITIAL_CAPITAL", 100000),
			Rebalance:      getEnv("BACKTEST_REBALANCE", "monthly"),
			TopN:           getEnvAsInt("BACKTEST_TOP_N", 3),
			Benchmark:      getEnv("BACKTEST_BENCHMARK", "SPY"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks required configuration values.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Backtest.Rebalance {
	case "daily", "weekly", "monthly":
	default:
		return fmt.Errorf("BACKTEST_REBALANCE must be one of: daily, weekly, monthly")
	}

	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("BACKTEST_INITIAL_CAPITAL must be positive")
	}

	if c.Backtest.TopN < 1 {
		return fmt.Errorf("BACKTEST_TOP_N must be at least 1")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

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
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
