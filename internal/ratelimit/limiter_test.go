package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Hour)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "u1")
	assert.False(t, ok, "third call in the window is refused")

	ok, _ = l.Allow(ctx, "u2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Hour)
	ok, _ = l.Allow(ctx, "u1")
	assert.True(t, ok, "a new window resets the count")
}

func TestUnlimited(t *testing.T) {
	ok, err := Unlimited{}.Allow(context.Background(), "anyone")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseURL(t *testing.T) {
	_, err := ParseURL("")
	assert.Error(t, err)
	_, err = ParseURL("http://nope")
	assert.Error(t, err)

	opts, err := ParseURL("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
}

func TestWindowKey(t *testing.T) {
	a := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	b := time.Date(2026, 3, 1, 10, 55, 0, 0, time.UTC)
	c := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	assert.Equal(t, windowKey("u1", a, time.Hour), windowKey("u1", b, time.Hour))
	assert.NotEqual(t, windowKey("u1", a, time.Hour), windowKey("u1", c, time.Hour))
	assert.Contains(t, windowKey("u1", a, time.Hour), "coursegen:ratelimit:u1:")
}
