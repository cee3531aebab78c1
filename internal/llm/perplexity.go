package llm

import "fmt"

const defaultPerplexityBaseURL = "https://api.perplexity.ai"

// perplexityModels maps friendly names to Perplexity model IDs.
var perplexityModels = map[string]string{
	"sonar":     "sonar",
	"sonar-pro": "sonar-pro",
}

// PerplexityProvider wraps OpenAIProvider with Perplexity-specific defaults.
// Perplexity exposes an OpenAI-compatible chat API, so the underlying SDK is
// reused.
type PerplexityProvider struct {
	*OpenAIProvider
}

// NewPerplexityProvider creates a provider targeting the Perplexity API.
func NewPerplexityProvider(cfg PerplexityConfig) (*PerplexityProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("perplexity API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultPerplexityBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "sonar"
	}

	inner := newOpenAICompatible(cfg.APIKey, baseURL, resolveModel(model, perplexityModels))
	return &PerplexityProvider{OpenAIProvider: inner}, nil
}
