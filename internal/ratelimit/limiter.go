// Package ratelimit bounds how often a user may trigger LLM generation.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether another event for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Unlimited allows everything.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

type window struct {
	start time.Time
	count int
}

// MemoryLimiter is a fixed-window limiter held in process memory.
type MemoryLimiter struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// NewMemoryLimiter allows limit events per key per period.
func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || now.Sub(w.start) >= m.period {
		w = &window{start: now}
		m.windows[key] = w
	}
	if w.count >= m.limit {
		return false, nil
	}
	w.count++
	return true, nil
}
