package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const minTopicMentions = 3

// TopicWords splits a topic into the words the relevance check looks for:
// lowercased, split on whitespace, '&' and '-', keeping words longer than
// three characters. A topic with no such word is used whole.
func TopicWords(topic string) []string {
	lower := strings.ToLower(topic)
	r := strings.NewReplacer("&", " ", "-", " ")

	var words []string
	for _, w := range strings.Fields(r.Replace(lower)) {
		if utf8.RuneCountInString(w) > 3 {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return []string{lower}
	}
	return words
}

// CheckTopicRelevance is a lexical gate against generic filler. At least
// half of the topic words must occur somewhere in the serialized content,
// and the distinct words must occur at least three times in total.
// Matching is case-insensitive substring counting.
func CheckTopicRelevance(v any, topic string) *ValidationError {
	body, err := serialize(v)
	if err != nil {
		return fail(TopicValidator, "Content could not be serialized: %v", err)
	}
	content := strings.ToLower(body)

	words := TopicWords(topic)
	counts := make(map[string]int, len(words))
	found := 0
	for _, w := range words {
		n := strings.Count(content, w)
		counts[w] = n
		if n >= 1 {
			found++
		}
	}

	required := max(1, len(words)/2)
	if found < required {
		return fail(TopicValidator, "Content doesn't reference topic '%s' enough. Words found: %s", topic, formatCounts(words, counts))
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total < minTopicMentions {
		return fail(TopicValidator, "Content has too few topic references (found %d total mentions)", total)
	}
	return nil
}

func serialize(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatCounts renders counts in topic order, once per distinct word.
func formatCounts(words []string, counts map[string]int) string {
	seen := make(map[string]bool, len(words))
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		parts = append(parts, fmt.Sprintf("'%s': %d", w, counts[w]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
