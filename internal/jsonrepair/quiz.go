package jsonrepair

import (
	"regexp"
	"strings"
)

const defaultExplanation = "No explanation provided."

var (
	fenceRe       = regexp.MustCompile("```\\w*\\n?")
	blockSplitRe  = regexp.MustCompile(`\}\s*,?\s*\{`)
	questionRe    = regexp.MustCompile(`"question"\s*:\s*"([^"]*(?:\\.[^"]*)*)"`)
	optionsRe     = regexp.MustCompile(`(?s)"options"\s*:\s*\[(.*?)\]`)
	optionItemRe  = regexp.MustCompile(`"([^"]*(?:\\.[^"]*)*)"`)
	answerRe      = regexp.MustCompile(`"correct_answer"\s*:\s*"([^"]*(?:\\.[^"]*)*)"`)
	explanationRe = regexp.MustCompile(`"explanation"\s*:\s*"([^"]*(?:\\.[^"]*)*)"`)
	difficultyRe  = regexp.MustCompile(`"difficulty"\s*:\s*"([^"]*)"`)
)

// RepairQuiz scans text that failed to parse for quiz-question fields and
// rebuilds question objects block by block. Blocks are delimited by "},{"
// boundaries. A question is kept only when it has a question, at least two
// options and a correct answer matching one option exactly or after
// case-insensitive, whitespace-trimmed comparison. Returns nil when nothing
// could be recovered.
func RepairQuiz(text string) []any {
	text = fenceRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "```", "")

	var questions []any
	for _, block := range blockSplitRe.Split(text, -1) {
		q := questionRe.FindStringSubmatch(block)
		opts := optionsRe.FindStringSubmatch(block)
		ans := answerRe.FindStringSubmatch(block)
		if q == nil || opts == nil || ans == nil {
			continue
		}

		items := optionItemRe.FindAllStringSubmatch(opts[1], -1)
		if len(items) < 2 {
			continue
		}
		options := make([]any, len(items))
		for i, it := range items {
			options[i] = unquote(it[1])
		}

		difficulty := "medium"
		if m := difficultyRe.FindStringSubmatch(block); m != nil {
			difficulty = m[1]
		}
		explanation := defaultExplanation
		if m := explanationRe.FindStringSubmatch(block); m != nil {
			explanation = unquoteMultiline(m[1])
		}

		answer, ok := matchOption(unquote(ans[1]), options)
		if !ok {
			continue
		}

		questions = append(questions, map[string]any{
			"question":       unquoteMultiline(q[1]),
			"options":        options,
			"correct_answer": answer,
			"difficulty":     difficulty,
			"explanation":    explanation,
		})
	}
	if len(questions) == 0 {
		return nil
	}
	return questions
}

func matchOption(answer string, options []any) (string, bool) {
	for _, o := range options {
		if o.(string) == answer {
			return answer, true
		}
	}
	want := strings.ToLower(strings.TrimSpace(answer))
	for _, o := range options {
		if strings.ToLower(strings.TrimSpace(o.(string))) == want {
			return o.(string), true
		}
	}
	return "", false
}

func unquote(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}

func unquoteMultiline(s string) string {
	return strings.ReplaceAll(unquote(s), `\n`, "\n")
}
