// Package store persists courses, progress, feedback, version history,
// quiz-attempt memory, users and the LLM event log as JSON files under one
// data directory.
//
// Writes go to a temporary file that is renamed over the target, so readers
// never see a partial document. A mutex serializes writers within the
// process; across processes the last write wins.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrInvalidKey is returned for keys that are empty or would escape the
// collection directory.
var ErrInvalidKey = errors.New("invalid document key")

// Kind is a document collection.
type Kind int

const (
	Courses Kind = iota
	Progress
	Feedback
	Versions
	QuizMemory
	Users
)

type layout struct {
	dir    string
	suffix string
}

var layouts = map[Kind]layout{
	Courses:    {"courses", ".json"},
	Progress:   {"progress", ".json"},
	Feedback:   {"feedback", "_feedback.json"},
	Versions:   {"versions", "_versions.json"},
	QuizMemory: {"quiz_memory", ".json"},
	Users:      {"", ".json"},
}

const eventLogName = "llm_events.jsonl"

// Store is a directory of JSON documents.
type Store struct {
	dir string
	mu  sync.Mutex
	seq *sequenceCounter
}

// Open prepares dataDir and its collection subdirectories.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, errors.New("open store: empty data directory")
	}
	for _, l := range layouts {
		if err := os.MkdirAll(filepath.Join(dataDir, l.dir), 0o755); err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}

	s := &Store{dir: dataDir}
	seq, err := newSequenceCounter(s.eventLogPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s.seq = seq
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Close releases the store. Files are not held open between calls, so this
// only exists to mirror other backends.
func (s *Store) Close() error { return nil }

// DefaultDataDir resolves the data directory in priority order:
// 1. COURSEGEN_DATA_DIR environment variable
// 2. $XDG_DATA_HOME/coursegen
// 3. ~/.local/share/coursegen
func DefaultDataDir() (string, error) {
	if p := os.Getenv("COURSEGEN_DATA_DIR"); p != "" {
		return p, nil
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "coursegen"), nil
}

func (s *Store) path(kind Kind, key string) (string, error) {
	l, ok := layouts[kind]
	if !ok {
		return "", fmt.Errorf("unknown document kind %d", kind)
	}
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, l.dir, key+l.suffix), nil
}

// Get decodes the document into v. It returns ErrNotFound when the file
// does not exist.
func (s *Store) Get(kind Kind, key string, v any) error {
	p, err := s.path(kind, key)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", p, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", p, err)
	}
	return nil
}

// Put writes v as indented JSON, replacing any existing document.
func (s *Store) Put(kind Kind, key string, v any) error {
	p, err := s.path(kind, key)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFile(p, data)
}

// Update loads the document into v (leaving v untouched when it does not
// exist), applies fn, and writes v back, all under the writer lock.
func (s *Store) Update(kind Kind, key string, v any, fn func() error) error {
	p, err := s.path(kind, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read %s: %w", p, err)
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode %s: %w", p, err)
		}
	}

	if err := fn(); err != nil {
		return err
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}
	return writeFile(p, out)
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *Store) Delete(kind Kind, key string) error {
	p, err := s.path(kind, key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

// Keys lists document keys of a kind with the given prefix, sorted.
func (s *Store) Keys(kind Kind, prefix string) ([]string, error) {
	l, ok := layouts[kind]
	if !ok {
		return nil, fmt.Errorf("unknown document kind %d", kind)
	}
	if l.dir == "" {
		return nil, fmt.Errorf("document kind %d is not a collection", kind)
	}

	entries, err := os.ReadDir(filepath.Join(s.dir, l.dir))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", l.dir, err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, l.suffix) {
			continue
		}
		key := strings.TrimSuffix(name, l.suffix)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// DeletePrefix removes every document of kind whose key starts with prefix
// and returns how many were removed.
func (s *Store) DeletePrefix(kind Kind, prefix string) (int, error) {
	keys, err := s.Keys(kind, prefix)
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := s.Delete(kind, k); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
