package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/coursegen/internal/logging"
	"github.com/abhisek/coursegen/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with logging
// and, when more than one transport attempt is configured, retry middleware.
// eventRepo may be nil.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logging.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "perplexity":
		base, err = NewPerplexityProvider(cfg.Perplexity)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		// An empty mock fails every call, so generation reports failure
		// instead of inventing content.
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → retry → logging → base
	p := WithLogging(base, cfg.Provider, eventRepo, log)
	if cfg.Retry.MaxAttempts > 1 {
		p = WithRetry(p, cfg.Retry, log)
	}
	return p, nil
}
