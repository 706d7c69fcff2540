package common

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("OPENAI_TIMEOUT", "")

	cfg := LoadConfig()
	assert.Equal(t, "gpt-4.1", cfg.LLM.Model)
	assert.Equal(t, "gpt-4o-search-preview", cfg.LLM.SearchModel)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "user_data", cfg.LLM.UploadPurpose)
	assert.Equal(t, "CA", cfg.LLM.SearchCountry)
	assert.Equal(t, "Ontario", cfg.LLM.SearchRegion)
	assert.True(t, cfg.Extract.EnhanceEnabled)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "gpt-test")
	t.Setenv("OPENAI_TIMEOUT", "3s")
	t.Setenv("ENHANCE_ENABLED", "false")
	t.Setenv("RETRY_MAX_ATTEMPTS", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, "gpt-test", cfg.LLM.Model)
	assert.Equal(t, 3*time.Second, cfg.LLM.Timeout)
	assert.False(t, cfg.Extract.EnhanceEnabled)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestLoadConfigFile_Overlay(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("llm:\n  model: gpt-yaml\n  timeout: 10s\nextract:\n  batch_workers: 9\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-yaml", cfg.LLM.Model)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 9, cfg.Extract.BatchWorkers)
	assert.Equal(t, "env-key", cfg.LLM.APIKey)
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unterminated"), 0o600))

	_, err := LoadConfigFile(path)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.LLM.APIKey = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	cfg.LLM.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())

	cfg.LLM.SearchModel = ""
	assert.Error(t, cfg.Validate())
	cfg.Extract.EnhanceEnabled = false
	assert.NoError(t, cfg.Validate())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("nonsense"))
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var text, js bytes.Buffer
	logger := SetupLoggerWithWriters(&text, &js, slog.LevelInfo)
	logger.Info("pipeline.test", "field", "value")
	logger.Debug("hidden")

	assert.Contains(t, text.String(), "pipeline.test")
	assert.Contains(t, js.String(), `"msg":"pipeline.test"`)
	assert.NotContains(t, js.String(), "hidden")
}
