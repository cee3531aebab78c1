package jsonrepair

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `  {"a":1}  `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"bom", "\ufeff{\"a\":1}", `{"a":1}`},
		{"bom inside fence", "\ufeff```json\n{}\n```", `{}`},
		{"no closing fence", "```json\n{}", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestParse_ValidJSONIsDirect(t *testing.T) {
	for _, in := range []string{`{"a":1}`, `[1,2,3]`, `"text"`, `{"nested":{"x":[true,null]}}`} {
		res, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, StageDirect, res.Stage, in)
		assert.False(t, res.Stage.Repaired())
	}
}

func TestParse_FencedJSON(t *testing.T) {
	res, err := Parse("```json\n{\"a\":1}\n```")
	require.NoError(t, err)
	assert.Equal(t, StageDirect, res.Stage)
	assert.Equal(t, map[string]any{"a": float64(1)}, res.Value)
}

func TestParse_RawNewlineInsideString(t *testing.T) {
	in := "{\"intro\": \"first line\nsecond line\", \"n\": 1}"
	res, err := Parse(in)
	require.NoError(t, err)
	assert.Equal(t, StageFixed, res.Stage)
	m := res.Value.(map[string]any)
	assert.Equal(t, "first line\nsecond line", m["intro"])
	assert.Equal(t, float64(1), m["n"])
}

func TestParse_ControlCharactersStripped(t *testing.T) {
	res, err := Parse("{\"a\": \"b\x01c\"}")
	require.NoError(t, err)
	assert.Equal(t, StageFixed, res.Stage)
	assert.Equal(t, "bc", res.Value.(map[string]any)["a"])
}

func TestParse_ArrayInProse(t *testing.T) {
	res, err := Parse(`Here are your questions: [{"q":1},{"q":2}] Hope that helps!`)
	require.NoError(t, err)
	assert.Equal(t, StageArraySpan, res.Stage)
	assert.Len(t, res.Value, 2)
}

func TestParse_ObjectInProse(t *testing.T) {
	res, err := Parse(`Sure! {"title": "Go"} Enjoy.`)
	require.NoError(t, err)
	assert.Equal(t, StageObjectSpan, res.Stage)
	assert.Equal(t, "Go", res.Value.(map[string]any)["title"])
}

func TestParse_TruncatedArray(t *testing.T) {
	// Cut off inside the third element; the last ']' closes the second
	// element, leaving the outer list open.
	in := `[[1,2],[3,4],[5`
	res, err := Parse(in)
	require.NoError(t, err)
	assert.Equal(t, StageTruncatedArray, res.Stage)
	assert.Equal(t, []any{[]any{float64(1), float64(2)}, []any{float64(3), float64(4)}}, res.Value)
}

func TestParse_TruncatedObject(t *testing.T) {
	in := `{"title": "Go", "meta": {"a": 1}, "modules": {"x": "unterminated`
	res, err := Parse(in)
	require.NoError(t, err)
	assert.Equal(t, StageTruncatedObject, res.Stage)
	m := res.Value.(map[string]any)
	assert.Equal(t, "Go", m["title"])
	assert.Equal(t, map[string]any{"a": float64(1)}, m["meta"])
}

func TestParse_QuizExtraction(t *testing.T) {
	in := `[{"question": "What is Go?", "options": ["A language", "A game"], "correct_answer": "a language", "explanation": "It is.\nReally."},
{"question": "Broken", "options": ["only one"], "correct_answer": "only one"},
{"question": "Pick two", "options": ["1", "2"], "correct_answer": "2", "difficulty": "hard" oops`

	res, err := Parse(in)
	require.NoError(t, err)
	assert.Equal(t, StageQuizExtraction, res.Stage)

	qs := res.Value.([]any)
	require.Len(t, qs, 2)

	first := qs[0].(map[string]any)
	assert.Equal(t, "What is Go?", first["question"])
	assert.Equal(t, "A language", first["correct_answer"])
	assert.Equal(t, "medium", first["difficulty"])
	assert.Equal(t, "It is.\nReally.", first["explanation"])

	second := qs[1].(map[string]any)
	assert.Equal(t, "hard", second["difficulty"])
	assert.Equal(t, defaultExplanation, second["explanation"])
}

func TestParse_TotalFailure(t *testing.T) {
	_, err := Parse("this is not json at all")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "JSON parse error: "), err.Error())

	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestFixString_JoinsContinuationLines(t *testing.T) {
	in := "{\"a\": \"x\ny\nz\",\n\"b\": 1}"
	assert.Equal(t, "{\"a\": \"x\\ny\\nz\",\n\"b\": 1}", FixString(in))
}

func TestFixString_EscapedQuotesDoNotToggle(t *testing.T) {
	in := "{\"a\": \"say \\\"hi\\\"\",\n\"b\": 2}"
	assert.Equal(t, in, FixString(in))
}

func TestRepairQuiz_DropsUnmatchedAnswer(t *testing.T) {
	in := `{"question": "Q", "options": ["x", "y"], "correct_answer": "z"}`
	assert.Nil(t, RepairQuiz(in))
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "quiz-extraction", StageQuizExtraction.String())
	assert.Equal(t, "stage(42)", Stage(42).String())
}
