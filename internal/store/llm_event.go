package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

var _ EventRepo = (*Store)(nil)

func (s *Store) eventLogPath() string { return filepath.Join(s.dir, eventLogName) }

// AppendLLMRequest appends one event to the JSON-lines log.
func (s *Store) AppendLLMRequest(_ context.Context, data LLMRequestEventData) error {
	ev := LLMEvent{
		Sequence:            s.seq.Next(),
		Timestamp:           time.Now().UTC(),
		LLMRequestEventData: data,
	}
	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode LLM request event: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.eventLogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return f.Close()
}

// LLMEvents returns events matching opts, newest first.
func (s *Store) LLMEvents(_ context.Context, opts QueryOpts) ([]LLMEvent, error) {
	var out []LLMEvent
	err := scanEvents(s.eventLogPath(), func(ev LLMEvent) bool {
		if opts.Purpose != "" && ev.Purpose != opts.Purpose {
			return true
		}
		if !opts.From.IsZero() && ev.Timestamp.Before(opts.From) {
			return true
		}
		out = append(out, ev)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// LLMEvent returns the event with the given sequence number.
func (s *Store) LLMEvent(_ context.Context, seq int64) (*LLMEvent, error) {
	var found *LLMEvent
	err := scanEvents(s.eventLogPath(), func(ev LLMEvent) bool {
		if ev.Sequence == seq {
			found = &ev
			return false
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM event: %w", err)
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// LLMUsageByPurpose aggregates events per purpose, sorted by key.
func (s *Store) LLMUsageByPurpose(ctx context.Context, opts QueryOpts) ([]UsageStat, error) {
	return s.usage(ctx, opts, func(ev LLMEvent) string { return ev.Purpose })
}

// LLMUsageByModel aggregates events per model, sorted by key.
func (s *Store) LLMUsageByModel(ctx context.Context, opts QueryOpts) ([]UsageStat, error) {
	return s.usage(ctx, opts, func(ev LLMEvent) string { return ev.Model })
}

func (s *Store) usage(ctx context.Context, opts QueryOpts, key func(LLMEvent) string) ([]UsageStat, error) {
	opts.Limit = 0
	events, err := s.LLMEvents(ctx, opts)
	if err != nil {
		return nil, err
	}

	byKey := map[string]*UsageStat{}
	latency := map[string]int64{}
	for _, ev := range events {
		k := key(ev)
		st, ok := byKey[k]
		if !ok {
			st = &UsageStat{Key: k}
			byKey[k] = st
		}
		st.Requests++
		if !ev.Success {
			st.Failures++
		}
		st.InputTokens += ev.InputTokens
		st.OutputTokens += ev.OutputTokens
		latency[k] += ev.LatencyMs
	}

	out := make([]UsageStat, 0, len(byKey))
	for k, st := range byKey {
		st.AvgLatencyMs = latency[k] / int64(st.Requests)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
