package generate

// Config holds generation parameters.
type Config struct {
	// Attempts is the total number of model calls per generation, including
	// the first. Attempts after the first use the strict system prompt.
	Attempts int `mapstructure:"attempts"`

	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	// StructuredOutput sends the JSON schema with each request so providers
	// with native structured output constrain the reply. Repair and
	// validation still run on whatever comes back.
	StructuredOutput bool `mapstructure:"structured_output"`
}

// DefaultConfig returns the generation defaults.
func DefaultConfig() Config {
	return Config{
		Attempts:    3,
		Temperature: 0.7,
		MaxTokens:   8000,
	}
}
