package common

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/listing-docs/constants"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Extract ExtractConfig `yaml:"extract"`
	Retry   RetryConfig   `yaml:"retry"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	Model         string        `yaml:"model"`
	SearchModel   string        `yaml:"search_model"`
	MaxTokens     int           `yaml:"max_tokens"`
	Temperature   float32       `yaml:"temperature"`
	Timeout       time.Duration `yaml:"timeout"`
	UploadPurpose string        `yaml:"upload_purpose"`
	SearchCountry string        `yaml:"search_country"`
	SearchRegion  string        `yaml:"search_region"`
}

// ExtractConfig holds pipeline behavior flags
type ExtractConfig struct {
	EnhanceEnabled bool `yaml:"enhance_enabled"`
	MaxUploadMB    int  `yaml:"max_upload_mb"`
	BatchWorkers   int  `yaml:"batch_workers"`
}

// RetryConfig controls retries of the upload and primary completion calls
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		LLM: LLMConfig{
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			BaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:         getEnv("OPENAI_MODEL", "gpt-4.1"),
			SearchModel:   getEnv("OPENAI_SEARCH_MODEL", "gpt-4o-search-preview"),
			MaxTokens:     getEnvAsInt("OPENAI_MAX_TOKENS", 2000),
			Temperature:   getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:       getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			UploadPurpose: getEnv("OPENAI_UPLOAD_PURPOSE", constants.UploadPurpose),
			SearchCountry: getEnv("SEARCH_COUNTRY", "CA"),
			SearchRegion:  getEnv("SEARCH_REGION", "Ontario"),
		},
		Extract: ExtractConfig{
			EnhanceEnabled: getEnvAsBool("ENHANCE_ENABLED", true),
			MaxUploadMB:    getEnvAsInt("MAX_UPLOAD_MB", 20),
			BatchWorkers:   getEnvAsInt("BATCH_WORKERS", 4),
		},
		Retry: RetryConfig{
			MaxAttempts:     getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			InitialInterval: getEnvAsDuration("RETRY_INITIAL_INTERVAL", 500*time.Millisecond),
			MaxInterval:     getEnvAsDuration("RETRY_MAX_INTERVAL", 5*time.Second),
		},
		Log: LogConfig{
			File:  getEnv("LOG_FILE", ""),
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}
}

// LoadConfigFile loads environment configuration and overlays any values set
// in the YAML file at path. An empty path returns the environment config.
func LoadConfigFile(path string) (*Config, error) {
	cfg := LoadConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "invalid config file "+path, err)
	}
	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

// ParseLogLevel maps a level name to a slog level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("OPENAI_API_KEY", c.LLM.APIKey, Required).
		Field("OPENAI_BASE_URL", c.LLM.BaseURL, Required).
		Field("OPENAI_MODEL", c.LLM.Model, Required).
		Field("OPENAI_MAX_TOKENS", c.LLM.MaxTokens, Positive).
		Field("MAX_UPLOAD_MB", c.Extract.MaxUploadMB, Positive)
	if c.Extract.EnhanceEnabled {
		v.Field("OPENAI_SEARCH_MODEL", c.LLM.SearchModel, Required)
	}
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
