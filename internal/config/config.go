package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	LLM        LLMConfig
	Generation GenerationConfig
	Cache      CacheConfig
	Redis      RedisConfig
	DB         DBConfig
	Batch      BatchConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Level string
	Env   string
}

// LLMConfig configures the completion provider and the ordered model fallback list.
type LLMConfig struct {
	Provider string // "openai" or "ollama"
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	Models   []ModelConfig
}

type ModelConfig struct {
	Name        string  `mapstructure:"name"`
	MaxAttempts int     `mapstructure:"max_attempts"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type GenerationConfig struct {
	CacheTTL    time.Duration
	BackoffBase time.Duration
}

// BatchConfig configures the cache-warming command.
type BatchConfig struct {
	Concurrency int
	File        string // YAML/JSON file listing the requests to pre-generate
}

type CacheConfig struct {
	Backend string // "memory" or "redis"
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DBConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "20s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.body_limit", 2*1024*1024)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.models", []map[string]interface{}{
		{"name": "gpt-4o", "max_attempts": 2, "temperature": 0.7, "max_tokens": 4000},
		{"name": "gpt-3.5-turbo", "max_attempts": 3, "temperature": 0.5, "max_tokens": 4000},
	})

	v.SetDefault("generation.cache_ttl", "3600s")
	v.SetDefault("generation.backoff_base", "1s")

	v.SetDefault("cache.backend", "memory")

	v.SetDefault("batch.concurrency", 2)
	v.SetDefault("batch.file", "batch.yaml")

	v.SetDefault("db.enabled", false)
	v.SetDefault("db.port", 1521)
}

// LoadConfig reads config.yaml (or the file named by CONFIG_FILE) and applies environment overrides.
// A missing config file is not an error; defaults and the environment are used instead.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Add config paths based on environment
		if os.Getenv("ENV") == "test" {
			v.AddConfigPath("../../config")
			v.AddConfigPath("../../")
		} else {
			v.AddConfigPath(".")
			v.AddConfigPath("./config")
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	var models []ModelConfig
	if err := v.UnmarshalKey("llm.models", &models); err != nil {
		return nil, fmt.Errorf("failed to decode llm.models: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			BodyLimit:    v.GetInt("server.body_limit"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		LLM: LLMConfig{
			Provider: v.GetString("llm.provider"),
			APIKey:   v.GetString("llm.api_key"),
			BaseURL:  v.GetString("llm.base_url"),
			Timeout:  v.GetDuration("llm.timeout"),
			Models:   models,
		},
		Generation: GenerationConfig{
			CacheTTL:    v.GetDuration("generation.cache_ttl"),
			BackoffBase: v.GetDuration("generation.backoff_base"),
		},
		Cache: CacheConfig{
			Backend: v.GetString("cache.backend"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		DB: DBConfig{
			Enabled:  v.GetBool("db.enabled"),
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
		},
		Batch: BatchConfig{
			Concurrency: v.GetInt("batch.concurrency"),
			File:        v.GetString("batch.file"),
		},
	}

	if openAIKey := os.Getenv("OPENAI_API_KEY"); openAIKey != "" && config.LLM.APIKey == "" {
		config.LLM.APIKey = openAIKey
	}
	if env := os.Getenv("ENV"); env == "production" {
		config.Logger.Env = env
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the settings the generation pipeline cannot run without.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key (or OPENAI_API_KEY) is required for the openai provider")
		}
	case "ollama":
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("llm.base_url is required for the ollama provider")
		}
	default:
		return fmt.Errorf("unsupported llm.provider %q", c.LLM.Provider)
	}

	if len(c.LLM.Models) == 0 {
		return fmt.Errorf("llm.models must list at least one model")
	}
	for i, m := range c.LLM.Models {
		if m.Name == "" {
			return fmt.Errorf("llm.models[%d].name is required", i)
		}
		if m.MaxAttempts < 1 {
			return fmt.Errorf("llm.models[%d].max_attempts must be at least 1", i)
		}
	}

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address is required when cache.backend is redis")
		}
	default:
		return fmt.Errorf("unsupported cache.backend %q", c.Cache.Backend)
	}

	if c.DB.Enabled && (c.DB.Host == "" || c.DB.User == "" || c.DB.DBName == "") {
		return fmt.Errorf("db.host, db.user and db.name are required when db.enabled is true")
	}
	return nil
}

// GetDSN returns the go-ora connection URL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
	)
}
