package jsonrepair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Stage identifies which repair step produced a parsed value.
type Stage int

const (
	StageDirect Stage = iota
	StageFixed
	StageArraySpan
	StageObjectSpan
	StageTruncatedArray
	StageTruncatedObject
	StageQuizExtraction
)

var stageNames = [...]string{
	"direct",
	"fixed",
	"array-span",
	"object-span",
	"truncated-array",
	"truncated-object",
	"quiz-extraction",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Repaired reports whether any repair beyond fence stripping was needed.
func (s Stage) Repaired() bool { return s != StageDirect }

var (
	arraySpanRe  = regexp.MustCompile(`(?s)\[.*\]`)
	objectSpanRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// Result is a successfully parsed value and the stage that produced it.
// Value holds map[string]any, []any or a JSON scalar.
type Result struct {
	Value any
	Stage Stage
}

// ParseError is returned when every stage fails. It carries the error from
// the direct parse, which is usually the most informative.
type ParseError struct {
	First error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("JSON parse error: %v", e.First)
}

func (e *ParseError) Unwrap() error { return e.First }

// Parse cleans raw and tries each stage in order, returning the first value
// that parses. Later stages are never consulted once one succeeds.
func Parse(raw string) (*Result, error) {
	cleaned := Clean(raw)

	v, firstErr := decode(cleaned)
	if firstErr == nil {
		return &Result{Value: v, Stage: StageDirect}, nil
	}

	attempts := []struct {
		stage Stage
		text  func() (string, bool)
	}{
		{StageFixed, func() (string, bool) { return FixString(cleaned), true }},
		{StageArraySpan, func() (string, bool) { return span(arraySpanRe, cleaned) }},
		{StageObjectSpan, func() (string, bool) { return span(objectSpanRe, cleaned) }},
		{StageTruncatedArray, func() (string, bool) { return truncateBalanced(cleaned, '[', ']') }},
		{StageTruncatedObject, func() (string, bool) { return truncateBalanced(cleaned, '{', '}') }},
	}
	for _, a := range attempts {
		text, ok := a.text()
		if !ok {
			continue
		}
		if v, err := decode(text); err == nil {
			return &Result{Value: v, Stage: a.stage}, nil
		}
	}

	if qs := RepairQuiz(cleaned); len(qs) > 0 {
		return &Result{Value: qs, Stage: StageQuizExtraction}, nil
	}

	return nil, &ParseError{First: firstErr}
}

func decode(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func span(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindString(s)
	return m, m != ""
}

// truncateBalanced cuts s after the last closer and appends closers until
// the opener and closer counts match. A closer at index 0 does not qualify.
func truncateBalanced(s string, open, close byte) (string, bool) {
	last := strings.LastIndexByte(s, close)
	if last <= 0 {
		return "", false
	}
	t := s[:last+1]
	opens := strings.Count(t, string(open))
	closes := strings.Count(t, string(close))
	if opens > closes {
		t += strings.Repeat(string(close), opens-closes)
	}
	return t, true
}
