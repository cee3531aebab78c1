package generate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/coursegen/internal/schema"
)

// Category classifies why an attempt failed.
type Category string

const (
	CategoryTransport Category = "transport"
	CategoryMalformed Category = "malformed"
	CategorySchema    Category = "schema"
	CategoryTopic     Category = "topic"
)

// AttemptError is the failure of a single attempt.
type AttemptError struct {
	Attempt  int // 1-based
	Category Category
	Err      error
}

func (e *AttemptError) Error() string {
	if e.Category == CategorySchema {
		return fmt.Sprintf("Attempt %d: Schema - %s", e.Attempt, message(e.Err))
	}
	return fmt.Sprintf("Attempt %d: %s", e.Attempt, message(e.Err))
}

func (e *AttemptError) Unwrap() error { return e.Err }

// message renders validation errors by their message alone; the
// validator name is already implied by the category.
func message(err error) string {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

// ExhaustedError is returned when every attempt failed. It lists each
// attempt in order.
type ExhaustedError struct {
	Attempts []*AttemptError
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return fmt.Sprintf("generation failed after %d attempts: %s", len(e.Attempts), strings.Join(parts, "; "))
}

// Unwrap exposes every attempt so errors.As can find provider errors.
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return errs
}

// Last returns the final attempt's error.
func (e *ExhaustedError) Last() *AttemptError {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}
