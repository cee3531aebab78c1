package course

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/abhisek/coursegen/internal/store"
)

// Repository persists courses and their feedback history.
type Repository interface {
	SaveCourse(ctx context.Context, c *Course) error
	// LoadCourse returns ErrCourseNotFound for unknown IDs.
	LoadCourse(ctx context.Context, id string) (*Course, error)
	// ListCourses returns summaries newest first. An empty userID lists
	// every course.
	ListCourses(ctx context.Context, userID string) ([]Summary, error)
	// DeleteCourse removes the course with its progress and history.
	DeleteCourse(ctx context.Context, id string) error
	DeleteProgress(ctx context.Context, courseID, userID string) error
	AppendFeedback(ctx context.Context, courseID string, fb FeedbackEntry, v VersionEntry) error
	FeedbackHistory(ctx context.Context, courseID string) ([]FeedbackEntry, error)
	VersionHistory(ctx context.Context, courseID string) ([]VersionEntry, error)
}

// FileRepository is a Repository over the flat-file store.
type FileRepository struct {
	docs *store.Store
}

var _ Repository = (*FileRepository)(nil)

func NewFileRepository(docs *store.Store) *FileRepository {
	return &FileRepository{docs: docs}
}

func (r *FileRepository) SaveCourse(_ context.Context, c *Course) error {
	if err := r.docs.Put(store.Courses, c.ID, c); err != nil {
		return fmt.Errorf("save course: %w", err)
	}
	return nil
}

func (r *FileRepository) LoadCourse(_ context.Context, id string) (*Course, error) {
	var c Course
	err := r.docs.Get(store.Courses, id, &c)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidKey) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if c.UserID == "" {
		c.UserID = DefaultUserID
	}
	return &c, nil
}

func (r *FileRepository) ListCourses(ctx context.Context, userID string) ([]Summary, error) {
	keys, err := r.docs.Keys(store.Courses, "")
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	out := make([]Summary, 0, len(keys))
	for _, k := range keys {
		c, err := r.LoadCourse(ctx, k)
		if err != nil {
			// Unreadable course files are skipped, not fatal to the listing.
			continue
		}
		if userID != "" && c.UserID != userID {
			continue
		}
		out = append(out, c.Summary())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *FileRepository) DeleteCourse(_ context.Context, id string) error {
	var probe Course
	if err := r.docs.Get(store.Courses, id, &probe); errors.Is(err, store.ErrNotFound) {
		return ErrCourseNotFound
	}
	if err := r.docs.Delete(store.Courses, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if _, err := r.docs.DeletePrefix(store.Progress, id+"_"); err != nil {
		return fmt.Errorf("delete course progress: %w", err)
	}
	if _, err := r.docs.DeletePrefix(store.QuizMemory, id+"_"); err != nil {
		return fmt.Errorf("delete quiz memory: %w", err)
	}
	for _, kind := range []store.Kind{store.Feedback, store.Versions} {
		if err := r.docs.Delete(kind, id); err != nil {
			return fmt.Errorf("delete course history: %w", err)
		}
	}
	return nil
}

func (r *FileRepository) DeleteProgress(_ context.Context, courseID, userID string) error {
	if err := r.docs.Delete(store.Progress, courseID+"_"+userID); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

func (r *FileRepository) AppendFeedback(_ context.Context, courseID string, fb FeedbackEntry, v VersionEntry) error {
	var log []FeedbackEntry
	err := r.docs.Update(store.Feedback, courseID, &log, func() error {
		log = append(log, fb)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}

	var versions []VersionEntry
	err = r.docs.Update(store.Versions, courseID, &versions, func() error {
		versions = append(versions, v)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save version history: %w", err)
	}
	return nil
}

func (r *FileRepository) FeedbackHistory(_ context.Context, courseID string) ([]FeedbackEntry, error) {
	var log []FeedbackEntry
	err := r.docs.Get(store.Feedback, courseID, &log)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load feedback: %w", err)
	}
	if log == nil {
		log = []FeedbackEntry{}
	}
	return log, nil
}

func (r *FileRepository) VersionHistory(_ context.Context, courseID string) ([]VersionEntry, error) {
	var versions []VersionEntry
	err := r.docs.Get(store.Versions, courseID, &versions)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load version history: %w", err)
	}
	return versions, nil
}
