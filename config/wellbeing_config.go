package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Database
	DBDriver    string
	DatabaseURL string
	DBMaxConns  int
	RedisURL    string
	MongoDBURL  string
	MongoDBName string

	// OpenAI
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	LLMModel        string
	LLMMaxTokens    int
	LLMTemperature  float64
	LLMTimeoutSec   int
	LLMStrictSchema bool

	// Theme registry cache
	ThemeCacheTTL time.Duration

	// Scheduler
	ResetCron string

	// CORS
	AllowedOrigins []string

	// Requests per minute per client IP on the chat endpoint, 0 disables
	ChatRateLimit int

	// Language pack
	LanguagePackFile string
	SeedDemoEmployee bool

	Pack *LanguagePack
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Database
		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),
		RedisURL:    getEnv("REDIS_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "wellbeing"),

		// OpenAI
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		LLMModel:        getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:    getEnvInt("LLM_MAX_TOKENS", 1024),
		LLMTemperature:  getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeoutSec:   getEnvInt("LLM_TIMEOUT_SEC", 30),
		LLMStrictSchema: getEnvBool("LLM_STRICT_SCHEMA", true),

		ThemeCacheTTL: time.Duration(getEnvInt("THEME_CACHE_TTL_SEC", 300)) * time.Second,

		ResetCron: getEnv("RESET_CRON", ""),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		ChatRateLimit: getEnvInt("CHAT_RATE_LIMIT", 30),

		LanguagePackFile: getEnv("LANGUAGE_PACK_FILE", ""),
		SeedDemoEmployee: getEnvBool("SEED_DEMO_EMPLOYEE", false),
	}

	pack, err := LoadLanguagePack(cfg.LanguagePackFile)
	if err != nil {
		return nil, err
	}
	cfg.Pack = pack

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late at first use.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}
	if c.LLMTimeoutSec <= 0 {
		return fmt.Errorf("config: LLM_TIMEOUT_SEC must be positive, got %d", c.LLMTimeoutSec)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("config: LLM_TEMPERATURE out of range: %v", c.LLMTemperature)
	}
	return nil
}

// LLMTimeout returns the per-call gateway timeout.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
