package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Text       TextConfig
	LLM        LLMConfig
	Extraction ExtractionConfig
	Cache      CacheConfig
	Watch      WatchConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // sqlite | postgres
	DSN              string
	KeyMode          string // item_index | residue_code
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr    string
	GRPCAddr    string
	CORSOrigins []string
}

// TextConfig selects the PDF text backend
type TextConfig struct {
	Backend   string // mupdf | pdftotext
	Pdftotext string
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Enabled       bool
	First         bool
	Provider      string // openrouter | openai | gemini
	Model         string
	APIKey        string
	BaseURL       string
	Temperature   float32
	Timeout       time.Duration
	MaxTextLength int
	MaxConcurrent int
	MinDelay      time.Duration
	SiteURL       string
	SiteName      string
}

// ExtractionConfig holds batch and worker settings
type ExtractionConfig struct {
	BatchSize      int
	Force          bool
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// CacheConfig holds the optional shared processed-set location
type CacheConfig struct {
	RedisURL string
	RedisKey string
}

// WatchConfig holds daemon watch settings
type WatchConfig struct {
	Dirs     []string
	Debounce time.Duration
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "sqlite"),
			DSN:              getEnv("DB_URL", "file:cadri.db?_pragma=foreign_keys(1)"),
			KeyMode:          getEnv("DB_KEY_MODE", "item_index"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
			GRPCAddr:    getEnv("GRPC_ADDR", ":9090"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS"),
		},
		Text: TextConfig{
			Backend:   getEnv("TEXT_BACKEND", "mupdf"),
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
		},
		LLM: LLMConfig{
			Enabled:       getEnvAsBool("LLM_ENABLED", false),
			First:         getEnvAsBool("LLM_FIRST", false),
			Provider:      getEnv("LLM_PROVIDER", "openrouter"),
			Model:         getEnv("LLM_MODEL", "openai/gpt-5-mini"),
			APIKey:        firstEnv("LLM_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"),
			BaseURL:       getEnv("LLM_BASE_URL", ""),
			Temperature:   getEnvAsFloat32("LLM_TEMPERATURE", 0.1),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			MaxTextLength: getEnvAsInt("LLM_MAX_TEXT_LENGTH", 50000),
			MaxConcurrent: getEnvAsInt("LLM_MAX_CONCURRENT", 5),
			MinDelay:      getEnvAsDuration("LLM_MIN_DELAY", 100*time.Millisecond),
			SiteURL:       getEnv("LLM_SITE_URL", "https://github.com/joseph-ayodele/cadri-extractor"),
			SiteName:      getEnv("LLM_SITE_NAME", "CADRI Extractor"),
		},
		Extraction: ExtractionConfig{
			BatchSize:      getEnvAsInt("BATCH_SIZE", getEnvAsInt("LLM_BATCH_SIZE", 10)),
			Force:          getEnvAsBool("FORCE_REPROCESS", false),
			Workers:        getEnvAsInt("WORKERS", 4),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 3*time.Minute),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			RedisKey: getEnv("REDIS_CACHE_KEY", "cadri:processed"),
		},
		Watch: WatchConfig{
			Dirs:     getEnvAsList("WATCH_DIRS"),
			Debounce: getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("DB_DRIVER", c.Database.Driver, Required, OneOf("sqlite", "postgres")).
		Field("DB_URL", c.Database.DSN, Required).
		Field("DB_KEY_MODE", c.Database.KeyMode, OneOf("item_index", "residue_code")).
		Field("TEXT_BACKEND", c.Text.Backend, OneOf("pdftotext", "mupdf")).
		Field("BATCH_SIZE", c.Extraction.BatchSize, Positive)
	if c.LLM.Enabled {
		v.Field("LLM_PROVIDER", c.LLM.Provider, OneOf("openrouter", "openai", "gemini")).
			Field("LLM_API_KEY", c.LLM.APIKey, Required).
			Field("LLM_MODEL", c.LLM.Model, Required).
			Field("LLM_MAX_TEXT_LENGTH", c.LLM.MaxTextLength, Positive)
	}
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
