// Package progress tracks a learner's state per course: lesson attempts,
// adaptive difficulty and Bloom level, completion and resume position, plus
// the quiz-attempt memories that steer retakes.
package progress

import (
	"errors"
	"time"

	"github.com/abhisek/coursegen/internal/mastery"
)

// ErrNotFound is returned when a user has no progress on a course yet.
var ErrNotFound = errors.New("progress not found")

// AttemptFeedback is what a learner says about a quiz attempt they did not ace.
type AttemptFeedback string

const (
	TooDifficult     AttemptFeedback = "Too difficult"
	ConceptUnclear   AttemptFeedback = "Concept unclear"
	NeedMoreExamples AttemptFeedback = "Need more examples"
	OkayContinue     AttemptFeedback = "Okay, can continue"
)

func (f AttemptFeedback) Valid() bool {
	switch f {
	case TooDifficult, ConceptUnclear, NeedMoreExamples, OkayContinue:
		return true
	}
	return false
}

// Adaptation strategies applied to the next quiz for a lesson.
const (
	StrategyLowerLevel  = "lower_level"
	StrategySimplify    = "simplify"
	StrategyAddExamples = "add_examples"
)

// Strategy maps feedback to the adaptation the next quiz should use, or ""
// when none is needed.
func (f AttemptFeedback) Strategy() string {
	switch f {
	case TooDifficult:
		return StrategyLowerLevel
	case ConceptUnclear:
		return StrategySimplify
	case NeedMoreExamples:
		return StrategyAddExamples
	}
	return ""
}

// Regresses reports whether the feedback should drop the lesson's Bloom level.
func (f AttemptFeedback) Regresses() bool {
	return f == TooDifficult || f == ConceptUnclear
}

// QuizAttempt is one graded submission in a lesson's history.
type QuizAttempt struct {
	AttemptNumber int              `json:"attempt_number"`
	Score         float64          `json:"score"`
	Passed        bool             `json:"passed"`
	Feedback      *AttemptFeedback `json:"feedback"`
	Timestamp     time.Time        `json:"timestamp"`
}

// LessonProgress is the adaptive state of one lesson.
type LessonProgress struct {
	LessonID          string             `json:"lesson_id"`
	Completed         bool               `json:"completed"`
	QuizAttempts      int                `json:"quiz_attempts"`
	BestScore         float64            `json:"best_score"`
	CurrentDifficulty mastery.Difficulty `json:"current_difficulty"`
	CurrentBloomLevel mastery.BloomLevel `json:"current_bloom_level"`
	// SmoothedScore is the latest score on a 0-1 scale.
	SmoothedScore  float64       `json:"smoothed_score"`
	AttemptHistory []QuizAttempt `json:"attempt_history"`
}

func newLessonProgress(lessonID string) *LessonProgress {
	return &LessonProgress{
		LessonID:          lessonID,
		CurrentDifficulty: mastery.Medium,
		CurrentBloomLevel: mastery.Remember,
		SmoothedScore:     0.5,
		AttemptHistory:    []QuizAttempt{},
	}
}

// ModuleProgress groups lesson state by lesson ID.
type ModuleProgress struct {
	ModuleID string                     `json:"module_id"`
	Lessons  map[string]*LessonProgress `json:"lessons"`
}

// CourseProgress is everything tracked for one user on one course.
type CourseProgress struct {
	CourseID           string                     `json:"course_id"`
	UserID             string                     `json:"user_id"`
	CurrentModuleIndex int                        `json:"current_module_index"`
	CurrentLessonIndex int                        `json:"current_lesson_index"`
	CompletedLessons   []string                   `json:"completed_lessons"`
	Modules            map[string]*ModuleProgress `json:"modules"`
	OverallProgress    float64                    `json:"overall_progress"`
	StartedAt          time.Time                  `json:"started_at"`
	LastAccessedAt     time.Time                  `json:"last_accessed_at"`
}

func newCourseProgress(courseID, userID string, now time.Time) *CourseProgress {
	return &CourseProgress{
		CourseID:         courseID,
		UserID:           userID,
		CompletedLessons: []string{},
		Modules:          map[string]*ModuleProgress{},
		StartedAt:        now,
		LastAccessedAt:   now,
	}
}

// Lesson returns the stored state of a lesson, if any.
func (p *CourseProgress) Lesson(moduleID, lessonID string) (*LessonProgress, bool) {
	m, ok := p.Modules[moduleID]
	if !ok || m == nil {
		return nil, false
	}
	l, ok := m.Lessons[lessonID]
	return l, ok && l != nil
}

// ensureLesson returns the lesson's state, creating it with defaults.
func (p *CourseProgress) ensureLesson(moduleID, lessonID string) *LessonProgress {
	if p.Modules == nil {
		p.Modules = map[string]*ModuleProgress{}
	}
	m, ok := p.Modules[moduleID]
	if !ok || m == nil {
		m = &ModuleProgress{ModuleID: moduleID}
		p.Modules[moduleID] = m
	}
	if m.Lessons == nil {
		m.Lessons = map[string]*LessonProgress{}
	}
	l, ok := m.Lessons[lessonID]
	if !ok || l == nil {
		l = newLessonProgress(lessonID)
		m.Lessons[lessonID] = l
	}
	return l
}

// completedCount counts lessons marked completed by quiz results.
func (p *CourseProgress) completedCount() int {
	n := 0
	for _, m := range p.Modules {
		if m == nil {
			continue
		}
		for _, l := range m.Lessons {
			if l != nil && l.Completed {
				n++
			}
		}
	}
	return n
}

// MemoryFeedback is one feedback signal stored in an attempt memory.
type MemoryFeedback struct {
	QuestionID   string             `json:"question_id,omitempty"`
	FeedbackType AttemptFeedback    `json:"feedback_type"`
	BloomLevel   mastery.BloomLevel `json:"bloom_level"`
}

// WrongQuestion is a question the learner missed on the remembered attempt.
type WrongQuestion struct {
	QuestionID    string `json:"question_id"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
}

// QuizAttemptMemory captures the feedback around a quiz attempt so the next
// quiz for the lesson can be adapted.
type QuizAttemptMemory struct {
	AttemptID             string             `json:"attempt_id"`
	UserID                string             `json:"user_id"`
	CourseID              string             `json:"course_id"`
	LessonID              string             `json:"lesson_id"`
	InitialBloomLevel     mastery.BloomLevel `json:"initial_bloom_level"`
	FinalBloomLevel       mastery.BloomLevel `json:"final_bloom_level"`
	FeedbackEntries       []MemoryFeedback   `json:"feedback_entries"`
	TooDifficultCount     int                `json:"too_difficult_count"`
	ConceptUnclearCount   int                `json:"concept_unclear_count"`
	NeedMoreExamplesCount int                `json:"need_more_examples_count"`
	WrongQuestions        []WrongQuestion    `json:"wrong_questions"`
	RecommendedBloomLevel mastery.BloomLevel `json:"recommended_bloom_level,omitempty"`
	AdaptationStrategy    string             `json:"adaptation_strategy,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	Completed             bool               `json:"completed"`
}

// Record adds a feedback signal and bumps the matching counter.
func (m *QuizAttemptMemory) Record(f MemoryFeedback) {
	m.FeedbackEntries = append(m.FeedbackEntries, f)
	switch f.FeedbackType {
	case TooDifficult:
		m.TooDifficultCount++
	case ConceptUnclear:
		m.ConceptUnclearCount++
	case NeedMoreExamples:
		m.NeedMoreExamplesCount++
	}
}
