// Package prompts builds the system and user prompts sent to the LLM for
// course generation, quiz generation and feedback-driven regeneration.
//
// The pedagogical text (Bloom level guidance, difficulty guidance, feedback
// instructions) lives in an embedded YAML catalog so it can be reviewed
// without reading Go code.
package prompts

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// BloomGuide describes how to teach and assess one Bloom level.
type BloomGuide struct {
	Level            string   `yaml:"level"`
	Description      string   `yaml:"description"`
	TeachingApproach string   `yaml:"teaching_approach"`
	ContentStyle     string   `yaml:"content_style"`
	Verbs            []string `yaml:"verbs"`
	QuestionTypes    []string `yaml:"question_types"`
}

// DifficultyGuide holds the writing instructions for a course difficulty.
type DifficultyGuide struct {
	Tone         string `yaml:"tone"`
	Explanations string `yaml:"explanations"`
	Examples     string `yaml:"examples"`
	Depth        string `yaml:"depth"`
	Complexity   string `yaml:"complexity"`
}

// Catalog is the parsed prompt catalog.
type Catalog struct {
	Bloom      []BloomGuide               `yaml:"bloom"`
	Difficulty map[string]DifficultyGuide `yaml:"difficulty"`
	Feedback   map[string]string          `yaml:"feedback"`
	Adaptation map[string]string          `yaml:"adaptation"`
}

// Load parses a catalog document and checks that the entries the builders
// fall back to are present.
func Load(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}
	if len(c.Bloom) == 0 {
		return nil, fmt.Errorf("prompt catalog: no bloom levels")
	}
	if _, ok := c.Difficulty["Intermediate"]; !ok {
		return nil, fmt.Errorf("prompt catalog: missing Intermediate difficulty")
	}
	return &c, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Load(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns the embedded catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// BloomGuide returns the guide for level, falling back to the first level
// (Remember) when the level is unknown.
func (c *Catalog) BloomGuide(level string) BloomGuide {
	for _, g := range c.Bloom {
		if g.Level == level {
			return g
		}
	}
	return c.Bloom[0]
}

// DifficultyGuide returns the guide for a course difficulty, falling back to
// Intermediate.
func (c *Catalog) DifficultyGuide(difficulty string) DifficultyGuide {
	if g, ok := c.Difficulty[difficulty]; ok {
		return g
	}
	return c.Difficulty["Intermediate"]
}

// FeedbackInstruction returns the rewrite instruction for a feedback type.
func (c *Catalog) FeedbackInstruction(feedbackType string) string {
	if s, ok := c.Feedback[feedbackType]; ok {
		return s
	}
	return "Improve this content."
}

// AdaptationInstruction returns the quiz adaptation text for a strategy, or
// "" when the strategy is unknown or empty.
func (c *Catalog) AdaptationInstruction(strategy string) string {
	return c.Adaptation[strategy]
}
