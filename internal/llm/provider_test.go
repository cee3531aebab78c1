package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/coursegen/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"title":"Go"}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage("```json\n[]\n```")},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text() != `{"title":"Go"}` {
		t.Fatalf("unexpected text %q", resp1.Text())
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text() != "```json\n[]\n```" {
		t.Fatalf("raw text must pass through untouched, got %q", resp2.Text())
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})

	_, _ = mock.Generate(context.Background(), Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestResponseText_Nil(t *testing.T) {
	var r *Response
	if r.Text() != "" {
		t.Fatal("nil response should have empty text")
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "course-generation")
	if p := PurposeFrom(ctx); p != "course-generation" {
		t.Fatalf("expected 'course-generation', got %q", p)
	}
}

type recordingRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`[1]`), Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		down(),
	)
	p := WithLogging(mock, "perplexity", repo, nil)
	ctx := WithPurpose(context.Background(), "quiz-generation")
	req := Request{System: "be strict", Messages: []Message{{Role: RoleUser, Content: "quiz please"}}}

	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected second call to fail")
	}

	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.events))
	}
	ok, failed := repo.events[0], repo.events[1]
	if !ok.Success || ok.Purpose != "quiz-generation" || ok.Provider != "perplexity" || ok.Model != "mock" {
		t.Fatalf("unexpected success event: %+v", ok)
	}
	if ok.InputTokens != 7 || ok.ResponseBody != "[1]" {
		t.Fatalf("usage or body not recorded: %+v", ok)
	}
	if !strings.Contains(ok.RequestBody, "[system]\nbe strict") || !strings.Contains(ok.RequestBody, "[user]\nquiz please") {
		t.Fatalf("unexpected request body: %q", ok.RequestBody)
	}
	if failed.Success || !strings.Contains(failed.ErrorMessage, "connection refused") {
		t.Fatalf("unexpected failure event: %+v", failed)
	}
}

func TestLoggingProvider_EventWriteFailureDoesNotFailRequest(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), "mock", repo, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "perplexity", Perplexity: PerplexityConfig{APIKey: "k"}}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "sonar" {
		t.Fatalf("expected sonar, got %q", p.ModelID())
	}
	if _, ok := p.(*LoggingProvider); !ok {
		t.Fatalf("expected logging wrapper without retries, got %T", p)
	}

	cfg := DefaultConfig()
	cfg.Provider = "mock"
	cfg.Retry.MaxAttempts = 2
	p, err = NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*RetryProvider); !ok {
		t.Fatalf("expected retry wrapper, got %T", p)
	}

	if _, err := NewProvider(context.Background(), Config{Provider: "openrouter"}, nil, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"perplexity without key", Config{Provider: "perplexity"}, true},
		{"perplexity with key", Config{Provider: "perplexity", Perplexity: PerplexityConfig{APIKey: "pplx"}}, false},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"PERPLEXITY_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_BASE_URL"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no config without keys")
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "https://api.perplexity.ai")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "openai" || cfg.OpenAI.BaseURL != "https://api.perplexity.ai" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	t.Setenv("PERPLEXITY_API_KEY", "pplx")
	cfg, _ = DiscoverConfig()
	if cfg.Provider != "perplexity" || cfg.Perplexity.APIKey != "pplx" {
		t.Fatalf("perplexity key should win, got %+v", cfg)
	}
}

func TestConfig_Summary(t *testing.T) {
	s := DefaultConfig().Summary()
	want := Summary{Provider: "perplexity", Model: "sonar", BaseURL: "https://api.perplexity.ai"}
	if s != want {
		t.Fatalf("Summary() = %+v, want %+v", s, want)
	}

	cfg := DefaultConfig()
	cfg.Provider = "openai"
	cfg.OpenAI.APIKey = "sk"
	s = cfg.Summary()
	if !s.APIKeyConfigured || s.BaseURL != "https://api.openai.com/v1" || s.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestEstimateCost(t *testing.T) {
	if got := EstimateCost("sonar", 1_000_000, 1_000_000); got != 2 {
		t.Fatalf("expected $2, got %v", got)
	}
	if got := EstimateCost("unknown-model", 100, 100); got != 0 {
		t.Fatalf("expected 0 for unknown model, got %v", got)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&ErrRateLimit{Err: errors.New("429")}, true},
		{&ErrProviderUnavailable{}, true},
		{context.DeadlineExceeded, true},
		{&ErrInvalidResponse{Err: errors.New("bad")}, false},
		{errors.New("JSON parse error"), false},
	}
	for _, tt := range tests {
		if got := IsTransient(tt.err); got != tt.want {
			t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestNewMockText(t *testing.T) {
	m := NewMockText("not json", "[]")
	r, _ := m.Generate(context.Background(), Request{})
	if r.Text() != "not json" {
		t.Fatalf("unexpected text %q", r.Text())
	}
	r, _ = m.Generate(context.Background(), Request{})
	if r.Text() != "[]" {
		t.Fatalf("unexpected text %q", r.Text())
	}
}
