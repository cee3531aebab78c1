package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/coursegen/internal/store"
)

// Store persists progress documents and quiz-attempt memories.
type Store interface {
	// LoadProgress returns ErrNotFound when the user has no progress yet.
	LoadProgress(ctx context.Context, courseID, userID string) (*CourseProgress, error)
	SaveProgress(ctx context.Context, p *CourseProgress) error
	// SaveMemory inserts the memory or replaces the one with the same
	// AttemptID.
	SaveMemory(ctx context.Context, m *QuizAttemptMemory) error
	Memories(ctx context.Context, courseID, lessonID, userID string) ([]QuizAttemptMemory, error)
}

// FileStore is a Store over the flat-file document store.
type FileStore struct {
	docs *store.Store
}

var _ Store = (*FileStore)(nil)

func NewFileStore(docs *store.Store) *FileStore {
	return &FileStore{docs: docs}
}

func progressKey(courseID, userID string) string { return courseID + "_" + userID }

func memoryKey(courseID, lessonID, userID string) string {
	return courseID + "_" + lessonID + "_" + userID
}

func (f *FileStore) LoadProgress(_ context.Context, courseID, userID string) (*CourseProgress, error) {
	var p CourseProgress
	err := f.docs.Get(store.Progress, progressKey(courseID, userID), &p)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if p.Modules == nil {
		p.Modules = map[string]*ModuleProgress{}
	}
	if p.CompletedLessons == nil {
		p.CompletedLessons = []string{}
	}
	return &p, nil
}

func (f *FileStore) SaveProgress(_ context.Context, p *CourseProgress) error {
	if err := f.docs.Put(store.Progress, progressKey(p.CourseID, p.UserID), p); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (f *FileStore) SaveMemory(_ context.Context, m *QuizAttemptMemory) error {
	var all []QuizAttemptMemory
	err := f.docs.Update(store.QuizMemory, memoryKey(m.CourseID, m.LessonID, m.UserID), &all, func() error {
		for i := range all {
			if all[i].AttemptID == m.AttemptID {
				all[i] = *m
				return nil
			}
		}
		all = append(all, *m)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save quiz memory: %w", err)
	}
	return nil
}

func (f *FileStore) Memories(_ context.Context, courseID, lessonID, userID string) ([]QuizAttemptMemory, error) {
	var all []QuizAttemptMemory
	err := f.docs.Get(store.QuizMemory, memoryKey(courseID, lessonID, userID), &all)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load quiz memory: %w", err)
	}
	return all, nil
}

// latestCompleted returns the completed memory with the newest CreatedAt.
func latestCompleted(all []QuizAttemptMemory) *QuizAttemptMemory {
	var (
		latest *QuizAttemptMemory
		at     time.Time
	)
	for i := range all {
		m := &all[i]
		if !m.Completed {
			continue
		}
		if latest == nil || m.CreatedAt.After(at) {
			latest, at = m, m.CreatedAt
		}
	}
	return latest
}
