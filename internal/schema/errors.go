// Package schema validates parsed model output against the structures the
// service stores: courses, lesson content and quizzes. Validators fail
// closed on the first violated rule and return typed drafts on success.
package schema

import "fmt"

// Validator names used in ValidationError.
const (
	CourseValidator = "course"
	LessonValidator = "lesson-content"
	QuizValidator   = "quiz"
	TopicValidator  = "topic-relevance"
	ObjectValidator = "object"
)

// ValidationError describes the first rule a payload violated.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

func fail(validator, format string, args ...any) *ValidationError {
	return &ValidationError{
		Validator: validator,
		Message:   fmt.Sprintf(format, args...),
		Retryable: true,
	}
}
