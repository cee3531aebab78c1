package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type doc struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestOpenCreatesLayout(t *testing.T) {
	s := openTestStore(t)
	for _, dir := range []string{"courses", "progress", "feedback", "versions", "quiz_memory"} {
		info, err := os.Stat(filepath.Join(s.Dir(), dir))
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s: %v", dir, err)
		}
	}
}

func TestOpenRejectsEmptyDir(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty data dir")
	}
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put(Courses, "c1", doc{ID: "c1", Title: "Go Concurrency"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	var got doc
	if err := s.Get(Courses, "c1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Go Concurrency" {
		t.Errorf("title = %q", got.Title)
	}

	if _, err := os.Stat(filepath.Join(s.Dir(), "courses", "c1.json")); err != nil {
		t.Errorf("expected courses/c1.json: %v", err)
	}
}

func TestFileNaming(t *testing.T) {
	s := openTestStore(t)
	tests := []struct {
		kind Kind
		key  string
		file string
	}{
		{Progress, "c1_u1", "progress/c1_u1.json"},
		{Feedback, "c1", "feedback/c1_feedback.json"},
		{Versions, "c1", "versions/c1_versions.json"},
		{QuizMemory, "c1_l1_u1", "quiz_memory/c1_l1_u1.json"},
		{Users, "users", "users.json"},
	}
	for _, tt := range tests {
		if err := s.Put(tt.kind, tt.key, []string{}); err != nil {
			t.Fatalf("put %s: %v", tt.file, err)
		}
		if _, err := os.Stat(filepath.Join(s.Dir(), tt.file)); err != nil {
			t.Errorf("expected %s: %v", tt.file, err)
		}
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	var d doc
	if err := s.Get(Courses, "nope", &d); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInvalidKeys(t *testing.T) {
	s := openTestStore(t)
	for _, key := range []string{"", "..", "../escape", `a\b`} {
		if err := s.Put(Courses, key, doc{}); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestUpdate(t *testing.T) {
	s := openTestStore(t)

	var list []string
	err := s.Update(Feedback, "c1", &list, func() error {
		list = append(list, "first")
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	var again []string
	err = s.Update(Feedback, "c1", &again, func() error {
		again = append(again, "second")
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	var got []string
	if err := s.Get(Feedback, "c1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("got %v", got)
	}

	boom := errors.New("boom")
	if err := s.Update(Feedback, "c1", &got, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestKeysAndDeletePrefix(t *testing.T) {
	s := openTestStore(t)
	for _, k := range []string{"c1_u1", "c1_u2", "c2_u1"} {
		if err := s.Put(Progress, k, doc{ID: k}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	keys, err := s.Keys(Progress, "c1_")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "c1_u1" {
		t.Errorf("keys = %v", keys)
	}

	n, err := s.DeletePrefix(Progress, "c1_")
	if err != nil || n != 2 {
		t.Fatalf("delete prefix: n=%d err=%v", n, err)
	}
	keys, _ = s.Keys(Progress, "")
	if len(keys) != 1 || keys[0] != "c2_u1" {
		t.Errorf("remaining keys = %v", keys)
	}

	if err := s.Delete(Progress, "missing"); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestNoTempFilesLeft(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put(Courses, "c1", doc{}); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(filepath.Join(s.Dir(), "courses"))
	if len(entries) != 1 {
		t.Fatalf("expected only c1.json, got %d entries", len(entries))
	}
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("COURSEGEN_DATA_DIR", "/tmp/cg")
	if p, _ := DefaultDataDir(); p != "/tmp/cg" {
		t.Errorf("got %q", p)
	}

	t.Setenv("COURSEGEN_DATA_DIR", "")
	t.Setenv("XDG_DATA_HOME", "/xdg")
	if p, _ := DefaultDataDir(); p != filepath.Join("/xdg", "coursegen") {
		t.Errorf("got %q", p)
	}
}

func TestLLMEventLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "perplexity", Model: "sonar", Purpose: "course-generation", InputTokens: 100, OutputTokens: 900, LatencyMs: 3000, Success: true},
		{Provider: "perplexity", Model: "sonar", Purpose: "quiz-generation", InputTokens: 50, OutputTokens: 200, LatencyMs: 1000, Success: true},
		{Provider: "perplexity", Model: "sonar-pro", Purpose: "course-generation", LatencyMs: 1000, ErrorMessage: "429"},
	}
	for _, e := range events {
		if err := s.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := s.LLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(all) != 3 || all[0].Sequence != 3 {
		t.Fatalf("expected 3 events newest first, got %+v", all)
	}

	courses, _ := s.LLMEvents(ctx, QueryOpts{Purpose: "course-generation", Limit: 1})
	if len(courses) != 1 || courses[0].Model != "sonar-pro" {
		t.Errorf("filtered = %+v", courses)
	}

	future, _ := s.LLMEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	if len(future) != 0 {
		t.Errorf("expected no events after From, got %d", len(future))
	}

	ev, err := s.LLMEvent(ctx, 2)
	if err != nil || ev.Purpose != "quiz-generation" {
		t.Fatalf("event 2 = %+v, %v", ev, err)
	}
	if _, err := s.LLMEvent(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	byPurpose, _ := s.LLMUsageByPurpose(ctx, QueryOpts{})
	if len(byPurpose) != 2 || byPurpose[0].Key != "course-generation" {
		t.Fatalf("by purpose = %+v", byPurpose)
	}
	if byPurpose[0].Requests != 2 || byPurpose[0].Failures != 1 || byPurpose[0].AvgLatencyMs != 2000 {
		t.Errorf("course-generation stats = %+v", byPurpose[0])
	}

	byModel, _ := s.LLMUsageByModel(ctx, QueryOpts{})
	if len(byModel) != 2 || byModel[0].Key != "sonar" || byModel[0].OutputTokens != 1100 {
		t.Errorf("by model = %+v", byModel)
	}
}

func TestSequenceSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "a"})
	_ = s.AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "b"})

	// A torn trailing line is skipped.
	f, _ := os.OpenFile(filepath.Join(dir, "llm_events.jsonl"), os.O_APPEND|os.O_WRONLY, 0o644)
	f.WriteString(`{"sequence": 9, "purp`)
	f.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s2.AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "c"}); err != nil {
		t.Fatal(err)
	}
	ev, err := s2.LLMEvent(ctx, 3)
	if err != nil || ev.Purpose != "c" {
		t.Fatalf("expected sequence 3 for the new event, got %+v, %v", ev, err)
	}
}
