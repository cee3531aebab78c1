package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the LLM returned content that does not
// conform to the requested schema. Only structured-output requests produce
// it; plain text responses are repaired and validated by the caller.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// IsTransient reports whether err is a transport-level failure (rate limit,
// unreachable provider, cancelled or timed out call) rather than a problem
// with the content the model produced.
func IsTransient(err error) bool {
	var rl *ErrRateLimit
	var unavail *ErrProviderUnavailable
	switch {
	case errors.As(err, &rl), errors.As(err, &unavail):
		return true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}

// rejectTruncated fails structured-output responses that stopped at the
// token limit, since they cannot satisfy the schema. Plain text passes
// through so JSON repair can salvage a cut-off course document.
func rejectTruncated(req Request, stop string, content json.RawMessage) error {
	if req.Schema != nil && stop == "max_tokens" {
		return &ErrMaxTokensExceeded{Content: content}
	}
	return nil
}
