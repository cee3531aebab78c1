// Package generate turns prompts into validated course, quiz and lesson
// payloads. Each generation makes up to Config.Attempts model calls; an
// attempt is accepted only when its output parses (after repair), passes
// the payload validator, and, when a topic is given, mentions that topic
// often enough.
package generate

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/abhisek/coursegen/internal/jsonrepair"
	"github.com/abhisek/coursegen/internal/llm"
	"github.com/abhisek/coursegen/internal/logging"
	"github.com/abhisek/coursegen/internal/prompts"
	"github.com/abhisek/coursegen/internal/schema"
)

const previewLen = 500

// Orchestrator runs generation jobs against a provider.
type Orchestrator struct {
	provider llm.Provider
	catalog  *prompts.Catalog
	cfg      Config
	log      *logging.Logger
}

// New creates an Orchestrator. A nil logger discards output.
func New(provider llm.Provider, cfg Config, log *logging.Logger) *Orchestrator {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Orchestrator{
		provider: provider,
		catalog:  prompts.Default(),
		cfg:      cfg,
		log:      log,
	}
}

// ModelID returns the underlying provider's model.
func (o *Orchestrator) ModelID() string { return o.provider.ModelID() }

// Job describes one generation.
type Job[T any] struct {
	Purpose string
	Prompt  string

	// Schema is sent to the provider only when structured output is enabled.
	Schema *llm.Schema

	// Validate converts the parsed value into T or reports why it is
	// unacceptable. It must not be nil.
	Validate func(any) (T, *schema.ValidationError)

	// Topic, when non-empty, enables the relevance check on the parsed value.
	Topic string
}

// Run executes job, returning the first attempt that survives parsing,
// validation and the topic check. When all attempts fail the error is an
// *ExhaustedError listing each one. Context cancellation stops the loop
// immediately.
func Run[T any](ctx context.Context, o *Orchestrator, job Job[T]) (T, error) {
	var zero T
	ctx = llm.WithPurpose(ctx, job.Purpose)
	log := o.log.With("purpose", job.Purpose, "model", o.provider.ModelID())

	var failures []*AttemptError
	for attempt := 1; attempt <= o.cfg.Attempts; attempt++ {
		value, aerr := runAttempt(ctx, o, job, attempt, log)
		if aerr == nil {
			log.Info("generation succeeded", "attempt", attempt, "content_hash", contentHash(value))
			return value, nil
		}

		failures = append(failures, aerr)
		log.Warn("generation attempt failed",
			"attempt", attempt,
			"category", string(aerr.Category),
			"error", message(aerr.Err),
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
	}

	err := &ExhaustedError{Attempts: failures}
	log.Error("generation failed", "attempts", len(failures), "error", err.Error())
	return zero, err
}

func runAttempt[T any](ctx context.Context, o *Orchestrator, job Job[T], attempt int, log *logging.Logger) (T, *AttemptError) {
	var zero T
	fail := func(c Category, err error) (T, *AttemptError) {
		return zero, &AttemptError{Attempt: attempt, Category: c, Err: err}
	}

	req := llm.Request{
		System:      prompts.System(attempt > 1),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: job.Prompt}},
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	}
	if o.cfg.StructuredOutput {
		req.Schema = job.Schema
	}

	resp, err := o.provider.Generate(ctx, req)
	if err != nil {
		return fail(CategoryTransport, err)
	}

	raw := resp.Text()
	log.Debug("raw response preview", "attempt", attempt, "preview", preview(raw))

	parsed, err := jsonrepair.Parse(raw)
	if err != nil {
		return fail(CategoryMalformed, err)
	}
	switch {
	case parsed.Stage == jsonrepair.StageQuizExtraction:
		log.Warn("quiz recovered by pattern extraction", "attempt", attempt)
	case parsed.Stage.Repaired():
		log.Info("repaired model output", "attempt", attempt, "stage", parsed.Stage.String())
	}

	value, verr := job.Validate(parsed.Value)
	if verr != nil {
		return fail(CategorySchema, verr)
	}

	if job.Topic != "" {
		if terr := schema.CheckTopicRelevance(parsed.Value, job.Topic); terr != nil {
			return fail(CategoryTopic, terr)
		}
	}
	return value, nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen])
}

// contentHash fingerprints an accepted payload for log correlation.
// encoding/json sorts map keys, so equal documents hash equally.
func contentHash(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])[:12]
}

// IsExhausted reports whether err came from running out of attempts.
func IsExhausted(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex)
}
