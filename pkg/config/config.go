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

	// Database (optional: empty URL → in-memory idea repository, audit off)
	Database DatabaseConfig

	// Redis (optional: result cache + API rate limit)
	Redis RedisConfig

	// Remote stage agents
	Agents AgentsConfig

	// Pipeline behaviour
	Pipeline PipelineConfig

	// API
	API APIConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
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

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// AgentsConfig holds the remote stage agent endpoints
type AgentsConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RateLimit  int // requests per second across all stages, 0 = unlimited
}

// PipelineConfig holds orchestrator options
type PipelineConfig struct {
	StopOnCancel         bool
	DefaultJurisdictions []string
}

// APIConfig holds REST API options
type APIConfig struct {
	GenerateRateLimit int // generate calls per user per minute
	ResultCacheTTL    time.Duration
}

// SchedulerConfig holds scheduled generation options
type SchedulerConfig struct {
	Enabled  bool
	Profiles []string // YAML profile paths
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
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

		// Agents
		Agents: AgentsConfig{
			BaseURL:    strings.TrimRight(getEnv("AGENTS_BASE_URL", "http://localhost:8090/agents"), "/"),
			Timeout:    getEnvAsDuration("AGENTS_TIMEOUT", "120s"),
			MaxRetries: getEnvAsInt("AGENTS_MAX_RETRIES", 2),
			RateLimit:  getEnvAsInt("AGENTS_RATE_LIMIT", 0),
		},

		// Pipeline
		Pipeline: PipelineConfig{
			StopOnCancel:         getEnvAsBool("PIPELINE_STOP_ON_CANCEL", false),
			DefaultJurisdictions: getEnvAsList("PIPELINE_DEFAULT_JURISDICTIONS", "US"),
		},

		// API
		API: APIConfig{
			GenerateRateLimit: getEnvAsInt("API_RATE_LIMIT", 10),
			ResultCacheTTL:    getEnvAsDuration("RESULT_CACHE_TTL", "24h"),
		},

		// Scheduler
		Scheduler: SchedulerConfig{
			Enabled:  getEnvAsBool("SCHEDULER_ENABLED", false),
			Profiles: getEnvAsList("SCHEDULER_PROFILES", ""),
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
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Agents.BaseURL == "" {
		return fmt.Errorf("AGENTS_BASE_URL is required")
	}

	if c.Agents.Timeout <= 0 {
		return fmt.Errorf("AGENTS_TIMEOUT must be positive")
	}

	if c.API.ResultCacheTTL <= 0 {
		return fmt.Errorf("RESULT_CACHE_TTL must be positive")
	}

	if len(c.Pipeline.DefaultJurisdictions) == 0 {
		return fmt.Errorf("PIPELINE_DEFAULT_JURISDICTIONS must not be empty")
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

// getEnvAsList splits a comma-separated value, dropping blanks
func getEnvAsList(key string, defaultValue string) []string {
	raw := getEnv(key, defaultValue)

	values := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
