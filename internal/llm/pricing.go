package llm

// ModelCost holds per-million-token pricing for a model in USD.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns the pricing for a model ID, or nil if unknown.
func LookupCost(modelID string) *ModelCost {
	if c, ok := modelCosts[modelID]; ok {
		return &c
	}
	return nil
}

// EstimateCost returns the USD cost of a call, or 0 for unpriced models.
// Perplexity also bills per request; only token cost is counted here.
func EstimateCost(modelID string, inputTokens, outputTokens int) float64 {
	c := LookupCost(modelID)
	if c == nil {
		return 0
	}
	return c.Cost(inputTokens, outputTokens)
}

// modelCosts covers the models the providers resolve to by default plus the
// common alternatives. Last updated: 2026-09-30.
var modelCosts = map[string]ModelCost{
	// Perplexity
	"sonar":               {1, 1},
	"sonar-pro":           {3, 15},
	"sonar-reasoning":     {1, 5},
	"sonar-reasoning-pro": {2, 8},
	"sonar-deep-research": {2, 8},

	// OpenAI
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},

	// Anthropic
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-sonnet-4-20250514":   {3, 15},
	"claude-sonnet-4-5-20250929": {3, 15},

	// Google (Gemini)
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
	"gemini-flash-latest":   {0.3, 2.5},
}
