package progress

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/abhisek/coursegen/internal/course"
	"github.com/abhisek/coursegen/internal/logging"
	"github.com/abhisek/coursegen/internal/mastery"
)

// CourseSource loads courses for lesson totals. course.Repository
// satisfies it.
type CourseSource interface {
	LoadCourse(ctx context.Context, id string) (*course.Course, error)
}

// Tracker applies progress events to stored progress documents.
type Tracker struct {
	store   Store
	courses CourseSource
	log     *logging.Logger
	now     func() time.Time

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewTracker creates a tracker. A nil logger discards output.
func NewTracker(st Store, courses CourseSource, log *logging.Logger) *Tracker {
	if log == nil {
		log = logging.Nop()
	}
	return &Tracker{
		store:   st,
		courses: courses,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Load returns stored progress without touching it. It returns ErrNotFound
// when there is none.
func (t *Tracker) Load(ctx context.Context, courseID, userID string) (*CourseProgress, error) {
	return t.store.LoadProgress(ctx, courseID, userID)
}

// GetOrCreate returns the user's progress on a course, creating it on first
// access. Existing progress has its last-access time refreshed.
func (t *Tracker) GetOrCreate(ctx context.Context, courseID, userID string) (*CourseProgress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.loadOrNew(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	return p, t.save(ctx, p)
}

func (t *Tracker) loadOrNew(ctx context.Context, courseID, userID string) (*CourseProgress, error) {
	p, err := t.store.LoadProgress(ctx, courseID, userID)
	if errors.Is(err, ErrNotFound) {
		return newCourseProgress(courseID, userID, t.now()), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (t *Tracker) save(ctx context.Context, p *CourseProgress) error {
	p.LastAccessedAt = t.now()
	return t.store.SaveProgress(ctx, p)
}

// LessonState returns the difficulty and Bloom level the next quiz for a
// lesson should use: the stored adaptive state if any, otherwise medium and
// the lesson's own level.
func (t *Tracker) LessonState(ctx context.Context, courseID, userID, moduleID string, lesson *course.Lesson) (mastery.Difficulty, mastery.BloomLevel, error) {
	difficulty, bloom := mastery.Medium, lesson.BloomLevel
	p, err := t.store.LoadProgress(ctx, courseID, userID)
	if errors.Is(err, ErrNotFound) {
		return difficulty, bloom, nil
	}
	if err != nil {
		return "", "", err
	}
	if lp, ok := p.Lesson(moduleID, lesson.ID); ok {
		if lp.CurrentDifficulty.Valid() {
			difficulty = lp.CurrentDifficulty
		}
		if lp.CurrentBloomLevel.Valid() {
			bloom = lp.CurrentBloomLevel
		}
	}
	return difficulty, bloom, nil
}

// LessonUpdate is the single progress write made for a graded submission.
type LessonUpdate struct {
	CourseID   string
	UserID     string
	ModuleID   string
	LessonID   string
	Score      float64
	Difficulty mastery.Difficulty
	// SmoothedScore is the score on a 0-1 scale.
	SmoothedScore float64
	// Bloom replaces the lesson's level when set.
	Bloom mastery.BloomLevel
}

// UpdateLesson records a quiz attempt: the attempt count and running best
// score advance, the adaptive state is replaced, the attempt is appended to
// the history and the lesson completes at a passing score.
func (t *Tracker) UpdateLesson(ctx context.Context, u LessonUpdate) (*CourseProgress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.loadOrNew(ctx, u.CourseID, u.UserID)
	if err != nil {
		return nil, err
	}

	lp := p.ensureLesson(u.ModuleID, u.LessonID)
	lp.QuizAttempts++
	lp.BestScore = max(lp.BestScore, u.Score)
	lp.CurrentDifficulty = u.Difficulty
	lp.SmoothedScore = u.SmoothedScore
	if u.Bloom != "" {
		lp.CurrentBloomLevel = u.Bloom
	}
	passed := mastery.Passed(u.Score)
	lp.AttemptHistory = append(lp.AttemptHistory, QuizAttempt{
		AttemptNumber: lp.QuizAttempts,
		Score:         u.Score,
		Passed:        passed,
		Timestamp:     t.now(),
	})
	if passed {
		lp.Completed = true
	}

	total, err := t.lessonTotal(ctx, u.CourseID)
	if err != nil {
		return nil, err
	}
	if total >= 0 {
		p.OverallProgress = percent(p.completedCount(), total)
	}

	if err := t.save(ctx, p); err != nil {
		return nil, err
	}
	t.log.Info("lesson progress updated",
		"course_id", u.CourseID, "lesson_id", u.LessonID, "score", u.Score,
		"attempts", lp.QuizAttempts, "difficulty", string(lp.CurrentDifficulty),
		"bloom_level", string(lp.CurrentBloomLevel), "overall_progress", p.OverallProgress)
	return p, nil
}

// lessonTotal counts the course's lessons, or returns -1 when the course is
// gone.
func (t *Tracker) lessonTotal(ctx context.Context, courseID string) (int, error) {
	c, err := t.courses.LoadCourse(ctx, courseID)
	if errors.Is(err, course.ErrCourseNotFound) {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count lessons: %w", err)
	}
	return c.LessonCount(), nil
}

func percent(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// RecordAttemptFeedback stores feedback on the lesson's latest attempt and
// sets its Bloom level. Lessons without progress are left alone.
func (t *Tracker) RecordAttemptFeedback(ctx context.Context, courseID, userID, moduleID, lessonID string, fb AttemptFeedback, bloom mastery.BloomLevel) (*CourseProgress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.loadOrNew(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	if lp, ok := p.Lesson(moduleID, lessonID); ok {
		if n := len(lp.AttemptHistory); n > 0 {
			lp.AttemptHistory[n-1].Feedback = &fb
		}
		lp.CurrentBloomLevel = bloom
	}
	return p, t.save(ctx, p)
}

// UpdateLessonAccess records the resume position.
func (t *Tracker) UpdateLessonAccess(ctx context.Context, courseID, userID string, moduleIndex, lessonIndex int) (*CourseProgress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.loadOrNew(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	p.CurrentModuleIndex = moduleIndex
	p.CurrentLessonIndex = lessonIndex
	return p, t.save(ctx, p)
}

// MarkLessonCompleted adds a lesson to the explicit completion list and
// recomputes overall progress from that list.
func (t *Tracker) MarkLessonCompleted(ctx context.Context, courseID, userID, lessonID string) (*CourseProgress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.loadOrNew(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(p.CompletedLessons, lessonID) {
		p.CompletedLessons = append(p.CompletedLessons, lessonID)
	}
	total, err := t.lessonTotal(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if total >= 0 {
		p.OverallProgress = percent(len(p.CompletedLessons), total)
	}
	return p, t.save(ctx, p)
}

// SaveMemory stores a quiz-attempt memory, replacing one with the same ID.
func (t *Tracker) SaveMemory(ctx context.Context, m *QuizAttemptMemory) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = t.now()
	}
	return t.store.SaveMemory(ctx, m)
}

// LatestMemory returns the newest completed memory for a lesson, or nil.
func (t *Tracker) LatestMemory(ctx context.Context, courseID, lessonID, userID string) (*QuizAttemptMemory, error) {
	all, err := t.store.Memories(ctx, courseID, lessonID, userID)
	if err != nil {
		return nil, err
	}
	return latestCompleted(all), nil
}

// Memories returns every memory stored for a lesson.
func (t *Tracker) Memories(ctx context.Context, courseID, lessonID, userID string) ([]QuizAttemptMemory, error) {
	return t.store.Memories(ctx, courseID, lessonID, userID)
}
