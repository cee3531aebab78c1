// Package config loads coursegen settings from defaults, an optional YAML
// file, a .env file and COURSEGEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/coursegen/internal/generate"
	"github.com/abhisek/coursegen/internal/llm"
	"github.com/abhisek/coursegen/internal/store"
)

const envPrefix = "COURSEGEN"

type Config struct {
	Server     ServerConfig    `mapstructure:"server"`
	Storage    StorageConfig   `mapstructure:"storage"`
	Auth       AuthConfig      `mapstructure:"auth"`
	LLM        llm.Config      `mapstructure:"llm"`
	Generation generate.Config `mapstructure:"generation"`
	RateLimit  RateLimitConfig `mapstructure:"ratelimit"`
	Log        LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// Mode is the gin mode: debug, release or test.
	Mode           string        `mapstructure:"mode"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type StorageConfig struct {
	// DataDir defaults to $XDG_DATA_HOME/coursegen.
	DataDir string `mapstructure:"data_dir"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

type RateLimitConfig struct {
	// RedisURL selects the shared limiter; empty keeps counters in memory.
	RedisURL string `mapstructure:"redis_url"`
	// GenerationsPerHour caps LLM generations per user. Zero disables the limit.
	GenerationsPerHour int `mapstructure:"generations_per_hour"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.request_timeout", "5m")

	v.SetDefault("storage.data_dir", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.issuer", "coursegen")

	llmDefaults := llm.DefaultConfig()
	v.SetDefault("llm.perplexity.api_key", "")
	v.SetDefault("llm.perplexity.model", llmDefaults.Perplexity.Model)
	v.SetDefault("llm.perplexity.base_url", llmDefaults.Perplexity.BaseURL)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", llmDefaults.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", llmDefaults.Anthropic.Model)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", llmDefaults.Gemini.Model)
	v.SetDefault("llm.retry.max_attempts", llmDefaults.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", llmDefaults.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", llmDefaults.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", llmDefaults.Retry.Multiplier)
	// llm.provider has no default so an unset provider can fall back to
	// discovery from the standard API key variables.
	_ = v.BindEnv("llm.provider")

	genDefaults := generate.DefaultConfig()
	v.SetDefault("generation.attempts", genDefaults.Attempts)
	v.SetDefault("generation.temperature", genDefaults.Temperature)
	v.SetDefault("generation.max_tokens", genDefaults.MaxTokens)
	v.SetDefault("generation.structured_output", genDefaults.StructuredOutput)

	v.SetDefault("ratelimit.redis_url", "")
	v.SetDefault("ratelimit.generations_per_hour", 0)

	v.SetDefault("log.mode", "production")
}

// Load reads configuration. path names an explicit config file; when empty,
// coursegen.yaml is looked up in the working directory and the user config
// directory, and a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("coursegen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "coursegen"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM = discoverLLM(cfg.LLM)
	}
	if cfg.Storage.DataDir == "" {
		dir, err := store.DefaultDataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.Storage.DataDir = dir
	}
	return &cfg, nil
}

// discoverLLM picks a provider from the standard API key variables, keeping
// any models or retry settings already configured.
func discoverLLM(cfg llm.Config) llm.Config {
	found, ok := llm.DiscoverConfig()
	if !ok {
		cfg.Provider = llm.DefaultConfig().Provider
		return cfg
	}
	cfg.Provider = found.Provider
	switch found.Provider {
	case "perplexity":
		cfg.Perplexity.APIKey = found.Perplexity.APIKey
	case "gemini":
		cfg.Gemini.APIKey = found.Gemini.APIKey
	case "openai":
		cfg.OpenAI.APIKey = found.OpenAI.APIKey
		if found.OpenAI.BaseURL != "" {
			cfg.OpenAI.BaseURL = found.OpenAI.BaseURL
		}
	case "anthropic":
		cfg.Anthropic.APIKey = found.Anthropic.APIKey
	}
	return cfg
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("COURSEGEN_AUTH_JWT_SECRET is required"))
	}
	if c.Generation.Attempts < 1 {
		errs = append(errs, fmt.Errorf("generation.attempts must be at least 1, got %d", c.Generation.Attempts))
	}
	if c.RateLimit.GenerationsPerHour < 0 {
		errs = append(errs, errors.New("ratelimit.generations_per_hour must not be negative"))
	}
	return errors.Join(errs...)
}
