package prompts

import (
	"fmt"
	"strings"
)

// QuizInput describes the quiz to request for one lesson.
type QuizInput struct {
	// LessonContent is the lesson text the questions are drawn from.
	LessonContent string
	Bloom         string
	Difficulty    string
	Count         int
	// AdditionalInstructions is appended as an adaptation section when set.
	AdditionalInstructions string
}

// Quiz renders the quiz generation prompt.
func (c *Catalog) Quiz(in QuizInput) string {
	guide := c.BloomGuide(in.Bloom)

	var adaptation string
	if in.AdditionalInstructions != "" {
		adaptation = "\nADAPTATION INSTRUCTIONS (IMPORTANT - follow these to improve learning experience):\n" +
			in.AdditionalInstructions + "\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Generate exactly %d quiz questions based on this lesson content.\n\n", in.Count))
	b.WriteString("LESSON CONTENT:\n")
	b.WriteString(in.LessonContent)
	b.WriteString("\n\nREQUIREMENTS:\n")
	b.WriteString(fmt.Sprintf("1. Questions must test %s level: %s\n", in.Bloom, guide.Description))
	b.WriteString(fmt.Sprintf("2. Difficulty: %s\n", in.Difficulty))
	b.WriteString(fmt.Sprintf("3. Question types to use: %s\n", strings.Join(guide.QuestionTypes, ", ")))
	b.WriteString("4. Each question: exactly 4 options, 1 correct answer\n")
	b.WriteString("5. Include explanation for correct answer\n")
	b.WriteString(adaptation)
	b.WriteString(`
CRITICAL: Output ONLY a valid JSON array. No markdown, no code blocks, no explanatory text.
Start with [ and end with ]

EXACT FORMAT - copy this structure precisely:
[
`)
	b.WriteString(fmt.Sprintf(`  {"question": "What is X?", "options": ["A", "B", "C", "D"], "correct_answer": "A", "difficulty": "%s", "explanation": "A is correct because..."}`, in.Difficulty))
	b.WriteString("\n]\n\n")
	b.WriteString(fmt.Sprintf("Generate %d questions in this exact JSON array format. The correct_answer MUST exactly match one of the options.", in.Count))
	return b.String()
}

// Quiz renders the quiz generation prompt from the default catalog.
func Quiz(in QuizInput) string {
	return Default().Quiz(in)
}

// LessonText renders structured lesson content for embedding in a quiz
// prompt. Strings pass through unchanged; anything else is indented JSON.
func LessonText(content any) string {
	if s, ok := content.(string); ok {
		return s
	}
	return indentJSON(content)
}
