package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func q(question string, options []any, answer any) map[string]any {
	return map[string]any{"question": question, "options": options, "correct_answer": answer}
}

func TestValidateQuiz_RewritesNearMatch(t *testing.T) {
	item := q("Capital of France?", []any{"Paris", "Rome"}, "  paris ")
	qs, verr := ValidateQuiz([]any{item})
	require.Nil(t, verr)
	require.Len(t, qs, 1)
	assert.Equal(t, "Paris", qs[0].CorrectAnswer)
	assert.Equal(t, "Paris", item["correct_answer"], "input is rewritten in place")
}

func TestValidateQuiz_Shapes(t *testing.T) {
	one := []any{q("Q", []any{"a", "b"}, "a")}

	qs, verr := ValidateQuiz(map[string]any{"questions": one})
	require.Nil(t, verr)
	assert.Len(t, qs, 1)

	qs, verr = ValidateQuiz(map[string]any{"empty": []any{}, "quiz": one})
	require.Nil(t, verr)
	assert.Len(t, qs, 1)

	_, verr = ValidateQuiz(map[string]any{"questions": "nope"})
	require.NotNil(t, verr)
	assert.Equal(t, "Quiz must be a list of questions", verr.Message)

	_, verr = ValidateQuiz("text")
	require.NotNil(t, verr)
	assert.Equal(t, "Quiz must be a list of questions", verr.Message)

	_, verr = ValidateQuiz([]any{})
	require.NotNil(t, verr)
	assert.Equal(t, "Quiz must have at least one question", verr.Message)
}

func TestValidateQuiz_Violations(t *testing.T) {
	good := q("Q", []any{"a", "b"}, "a")
	tests := []struct {
		name string
		item any
		want string
	}{
		{"not object", "x", "Question 1 must be an object"},
		{"missing options", map[string]any{"question": "Q", "correct_answer": "a"}, "Question 1 missing options"},
		{"missing answer", map[string]any{"question": "Q", "options": []any{"a", "b"}}, "Question 1 missing correct_answer"},
		{"empty options", q("Q", []any{}, "a"), "Question 1 must have at least 2 options"},
		{"one option", q("Q", []any{"a"}, "a"), "Question 1 must have at least 2 options"},
		{"no match", q("Q", []any{"a", "b"}, "c"), "Question 1 correct_answer must be in options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, verr := ValidateQuiz([]any{good, tt.item})
			require.NotNil(t, verr)
			assert.Equal(t, tt.want, verr.Message)
		})
	}
}

func TestValidateQuiz_NumericOptions(t *testing.T) {
	qs, verr := ValidateQuiz([]any{q("2+2?", []any{3.0, 4.0}, 4.0)})
	require.Nil(t, verr)
	assert.Equal(t, []string{"3", "4"}, qs[0].Options)
	assert.Equal(t, "4", qs[0].CorrectAnswer)
}

func TestMatchOption(t *testing.T) {
	got, ok := MatchOption("B", []string{"a", "b", "B"})
	assert.True(t, ok)
	assert.Equal(t, "B", got, "exact match wins over case-insensitive")

	_, ok = MatchOption("z", []string{"a"})
	assert.False(t, ok)
}
