package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "perplexity", "openai", "anthropic", "gemini", "mock"
	Provider string `mapstructure:"provider"`

	Perplexity PerplexityConfig `mapstructure:"perplexity"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Retry      RetryConfig      `mapstructure:"retry"`
}

// PerplexityConfig holds Perplexity-specific configuration.
type PerplexityConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`    // Default: "sonar"
	BaseURL string `mapstructure:"base_url"` // Default: "https://api.perplexity.ai"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `mapstructure:"base_url"` // Optional. Override for compatible APIs.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"` // Default: "claude-haiku"
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"` // Default: "gemini-flash"
}

// RetryConfig configures transport-level retries for transient failures.
// Generation already retries whole attempts, so the default is a single try.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "perplexity",
		Perplexity: PerplexityConfig{
			Model:   "sonar",
			BaseURL: defaultPerplexityBaseURL,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// DiscoverConfig probes standard API key env vars in priority order
// (Perplexity → Gemini → OpenAI → Anthropic) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
//
// OPENAI_BASE_URL is honoured with OPENAI_API_KEY, so an OpenAI key pointed
// at another compatible endpoint keeps working.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("PERPLEXITY_API_KEY"); k != "" {
		cfg.Provider = "perplexity"
		cfg.Perplexity.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		cfg.OpenAI.BaseURL = os.Getenv("OPENAI_BASE_URL")
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "perplexity":
		if c.Perplexity.APIKey == "" {
			return fmt.Errorf("COURSEGEN_LLM_PERPLEXITY_API_KEY is required for the perplexity provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("COURSEGEN_LLM_OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("COURSEGEN_LLM_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("COURSEGEN_LLM_GEMINI_API_KEY is required for the gemini provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

// Summary describes the selected provider without exposing secrets.
type Summary struct {
	Provider         string
	Model            string
	BaseURL          string
	APIKeyConfigured bool
}

// Summary reports the active provider, model and endpoint.
func (c Config) Summary() Summary {
	s := Summary{Provider: c.Provider}
	switch c.Provider {
	case "perplexity":
		s.Model, s.BaseURL, s.APIKeyConfigured = c.Perplexity.Model, c.Perplexity.BaseURL, c.Perplexity.APIKey != ""
		if s.BaseURL == "" {
			s.BaseURL = defaultPerplexityBaseURL
		}
	case "openai":
		s.Model, s.BaseURL, s.APIKeyConfigured = c.OpenAI.Model, c.OpenAI.BaseURL, c.OpenAI.APIKey != ""
		if s.BaseURL == "" {
			s.BaseURL = "https://api.openai.com/v1"
		}
	case "anthropic":
		s.Model, s.BaseURL, s.APIKeyConfigured = c.Anthropic.Model, "https://api.anthropic.com", c.Anthropic.APIKey != ""
	case "gemini":
		s.Model, s.BaseURL, s.APIKeyConfigured = c.Gemini.Model, "https://generativelanguage.googleapis.com", c.Gemini.APIKey != ""
	case "mock":
		s.Model = "mock"
	}
	return s
}
