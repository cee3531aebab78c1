package schema

import (
	"sort"
	"strings"
)

// QuestionDraft is a validated quiz question. CorrectAnswer is always one
// of Options.
type QuestionDraft struct {
	QuestionID    string
	Question      string
	Options       []string
	CorrectAnswer string
	Difficulty    string
	BloomLevel    string
	Explanation   string
}

// ValidateQuiz checks a parsed quiz payload. The payload may be a bare list,
// an object with a "questions" list, or an object holding some other
// non-empty list (the first one by key order is used). A correct answer
// that differs from an option only in case or surrounding whitespace is
// rewritten to that option, both in the returned drafts and in the input.
func ValidateQuiz(v any) ([]QuestionDraft, *ValidationError) {
	items, ok := quizItems(v)
	if !ok {
		return nil, fail(QuizValidator, "Quiz must be a list of questions")
	}
	if len(items) == 0 {
		return nil, fail(QuizValidator, "Quiz must have at least one question")
	}

	out := make([]QuestionDraft, 0, len(items))
	for i, item := range items {
		q, ok := asObject(item)
		if !ok {
			return nil, fail(QuizValidator, "Question %d must be an object", i)
		}
		for _, f := range []string{"question", "options", "correct_answer"} {
			if _, ok := q[f]; !ok {
				return nil, fail(QuizValidator, "Question %d missing %s", i, f)
			}
		}

		rawOpts, ok := asList(q["options"])
		if !ok || len(rawOpts) < 2 {
			return nil, fail(QuizValidator, "Question %d must have at least 2 options", i)
		}
		options := make([]string, len(rawOpts))
		for k, o := range rawOpts {
			options[k] = text(o)
		}

		answer, ok := MatchOption(text(q["correct_answer"]), options)
		if !ok {
			return nil, fail(QuizValidator, "Question %d correct_answer must be in options", i)
		}
		q["correct_answer"] = answer

		out = append(out, QuestionDraft{
			QuestionID:    Text(q, "question_id", ""),
			Question:      text(q["question"]),
			Options:       options,
			CorrectAnswer: answer,
			Difficulty:    Text(q, "difficulty", ""),
			BloomLevel:    Text(q, "bloom_level", ""),
			Explanation:   Text(q, "explanation", ""),
		})
	}
	return out, nil
}

// MatchOption returns the option equal to answer, falling back to a
// case-insensitive comparison of trimmed values.
func MatchOption(answer string, options []string) (string, bool) {
	for _, o := range options {
		if o == answer {
			return o, true
		}
	}
	want := strings.ToLower(strings.TrimSpace(answer))
	for _, o := range options {
		if strings.ToLower(strings.TrimSpace(o)) == want {
			return o, true
		}
	}
	return "", false
}

func quizItems(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case map[string]any:
		if qs, ok := t["questions"]; ok {
			l, ok := asList(qs)
			return l, ok
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if l, ok := asList(t[k]); ok && len(l) > 0 {
				return l, true
			}
		}
	}
	return nil, false
}
