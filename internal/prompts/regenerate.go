package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Regeneration renders the feedback-driven rewrite prompt for a lesson or
// module. The original content keeps its Bloom level.
func (c *Catalog) Regeneration(original map[string]any, feedbackType, comments string) string {
	bloom := "Remember"
	if s, ok := original["bloom_level"].(string); ok && s != "" {
		bloom = s
	}

	var b strings.Builder
	b.WriteString("Regenerate this educational content based on feedback.\n\n")
	b.WriteString("ORIGINAL:\n")
	b.WriteString(indentJSON(original))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("FEEDBACK: %s\n", feedbackType))
	b.WriteString(fmt.Sprintf("INSTRUCTION: %s\n", c.FeedbackInstruction(feedbackType)))
	if comments != "" {
		b.WriteString(fmt.Sprintf("ADDITIONAL CONTEXT: %s", comments))
	}
	b.WriteString("\n\nREQUIREMENTS:\n")
	b.WriteString(fmt.Sprintf("1. Keep Bloom level: %s\n", bloom))
	b.WriteString("2. Keep the structured format with ## headers\n")
	b.WriteString("3. Apply the feedback to improve content\n")
	b.WriteString("4. Return complete improved content in same JSON structure\n\n")
	b.WriteString("Return ONLY the JSON object.")
	return b.String()
}

// Regeneration renders the rewrite prompt from the default catalog.
func Regeneration(original map[string]any, feedbackType, comments string) string {
	return Default().Regeneration(original, feedbackType, comments)
}

func indentJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
