package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9000
  read_timeout: 5s
logger:
  level: debug
llm:
  provider: ollama
  base_url: http://localhost:11434
  timeout: 15s
  models:
    - name: llama3
      max_attempts: 4
      temperature: 0.2
      max_tokens: 2048
generation:
  cache_ttl: 10m
cache:
  backend: redis
redis:
  address: localhost:6379
  db: 2
`)
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.WriteTimeout, "default should apply")
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	require.Len(t, cfg.LLM.Models, 1)
	assert.Equal(t, ModelConfig{Name: "llama3", MaxAttempts: 4, Temperature: 0.2, MaxTokens: 2048}, cfg.LLM.Models[0])
	assert.Equal(t, 10*time.Minute, cfg.Generation.CacheTTL)
	assert.Equal(t, time.Second, cfg.Generation.BackoffBase)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.False(t, cfg.DB.Enabled)
	assert.Equal(t, 2, cfg.Batch.Concurrency)
	assert.Equal(t, "batch.yaml", cfg.Batch.File)
}

func TestLoadConfig_DefaultsWithEnvironment(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfigFile(t, "logger:\n  env: development\n"))
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SERVER_PORT", "8181")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Generation.CacheTTL)
	require.Len(t, cfg.LLM.Models, 2)
	assert.Equal(t, "gpt-4o", cfg.LLM.Models[0].Name)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Models[1].Name)
	assert.Equal(t, "memory", cfg.Cache.Backend)
}

func TestLoadConfig_MissingAPIKey(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfigFile(t, "llm:\n  provider: openai\n"))
	t.Setenv("OPENAI_API_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LLM: LLMConfig{
				Provider: "openai",
				APIKey:   "key",
				Models:   []ModelConfig{{Name: "gpt-4o", MaxAttempts: 1}},
			},
			Cache: CacheConfig{Backend: "memory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "bard" }, wantErr: "unsupported llm.provider"},
		{name: "ollama without url", mutate: func(c *Config) { c.LLM.Provider = "ollama" }, wantErr: "base_url"},
		{name: "no models", mutate: func(c *Config) { c.LLM.Models = nil }, wantErr: "at least one model"},
		{name: "zero attempts", mutate: func(c *Config) { c.LLM.Models[0].MaxAttempts = 0 }, wantErr: "max_attempts"},
		{name: "redis without address", mutate: func(c *Config) { c.Cache.Backend = "redis" }, wantErr: "redis.address"},
		{name: "unknown cache backend", mutate: func(c *Config) { c.Cache.Backend = "memcached" }, wantErr: "cache.backend"},
		{name: "db enabled without host", mutate: func(c *Config) { c.DB.Enabled = true }, wantErr: "db.host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_GetDSN(t *testing.T) {
	cfg := &Config{DB: DBConfig{Host: "db", Port: 1521, User: "quiz", Password: "secret", DBName: "FREEPDB1"}}
	assert.Equal(t, "oracle://quiz:secret@db:1521/FREEPDB1", cfg.GetDSN())
}
