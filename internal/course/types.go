// Package course holds the course domain model, builds courses from
// validated generator output, and implements the course lifecycle:
// generation, regeneration, feedback-driven content rewrites, confirmation
// and deletion.
package course

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/abhisek/coursegen/internal/mastery"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrContentNotFound = errors.New("content not found")
	ErrForbidden       = errors.New("course belongs to another user")
	ErrEmptyCourse     = errors.New("generated course has no content")
	ErrInvalidRequest  = errors.New("invalid request")
)

// DefaultUserID owns courses created without an authenticated user.
const DefaultUserID = "default_user"

// CourseDifficulty is the audience level a course is written for.
type CourseDifficulty string

const (
	Beginner     CourseDifficulty = "Beginner"
	Intermediate CourseDifficulty = "Intermediate"
	Advanced     CourseDifficulty = "Advanced"
)

var titleCase = cases.Title(language.English)

// ParseCourseDifficulty accepts the three labels in any case. An empty
// label means Intermediate.
func ParseCourseDifficulty(s string) (CourseDifficulty, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Intermediate, nil
	}
	d := CourseDifficulty(titleCase.String(strings.ToLower(s)))
	switch d {
	case Beginner, Intermediate, Advanced:
		return d, nil
	}
	return "", fmt.Errorf("invalid difficulty %q: want Beginner, Intermediate or Advanced", s)
}

// FeedbackType is the kind of learner feedback that triggers a rewrite.
type FeedbackType string

const (
	TooEasy           FeedbackType = "too_easy"
	TooHard           FeedbackType = "too_hard"
	Unclear           FeedbackType = "unclear"
	MoreExamples      FeedbackType = "more_examples"
	DifferentApproach FeedbackType = "different_approach"
)

// Valid reports whether f is a known feedback type.
func (f FeedbackType) Valid() bool {
	switch f {
	case TooEasy, TooHard, Unclear, MoreExamples, DifferentApproach:
		return true
	}
	return false
}

type Course struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Title         string           `json:"title"`
	Topic         string           `json:"topic"`
	Overview      string           `json:"overview"`
	DurationHours int              `json:"duration_hours"`
	Difficulty    CourseDifficulty `json:"difficulty"`
	Confirmed     bool             `json:"confirmed"`
	Modules       []Module         `json:"modules"`
	CreatedAt     time.Time        `json:"created_at"`
	Version       int              `json:"version"`
}

type Module struct {
	ID          string   `json:"module_id"`
	Title       string   `json:"module_title"`
	Description string   `json:"module_description"`
	Lessons     []Lesson `json:"lessons"`
}

type Lesson struct {
	ID               string             `json:"lesson_id"`
	Title            string             `json:"lesson_title"`
	BloomLevel       mastery.BloomLevel `json:"bloom_level"`
	LearningOutcomes []string           `json:"learning_outcomes"`
	Content          LessonContent      `json:"content"`
	Quiz             []QuizQuestion     `json:"quiz"`
	EstimatedMinutes int                `json:"estimated_duration_minutes"`
}

// LessonContent is the structured lesson document.
type LessonContent struct {
	Introduction      string             `json:"introduction"`
	LessonOverview    []string           `json:"lesson_overview"`
	CoreConcepts      []CoreConcept      `json:"core_concepts"`
	GuidedWalkthrough []string           `json:"guided_walkthrough"`
	PracticalExamples []PracticalExample `json:"practical_examples"`
	CommonPitfalls    []string           `json:"common_pitfalls"`
	MentalModel       string             `json:"mental_model"`
	Summary           string             `json:"summary"`
	FurtherThinking   []string           `json:"further_thinking"`
}

type CoreConcept struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	CodeExample string `json:"code_example,omitempty"`
}

type PracticalExample struct {
	Description string `json:"description"`
	Code        string `json:"code,omitempty"`
	Explanation string `json:"explanation"`
}

// QuizQuestion is a multiple-choice question. CorrectAnswer is always one
// of Options.
type QuizQuestion struct {
	QuestionID    string             `json:"question_id"`
	Question      string             `json:"question"`
	Options       []string           `json:"options"`
	CorrectAnswer string             `json:"correct_answer"`
	Difficulty    mastery.Difficulty `json:"difficulty"`
	BloomLevel    mastery.BloomLevel `json:"bloom_level"`
	Explanation   string             `json:"explanation,omitempty"`
}

// Summary is the list view of a course.
type Summary struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Title         string           `json:"title"`
	Topic         string           `json:"topic"`
	DurationHours int              `json:"duration_hours"`
	Difficulty    CourseDifficulty `json:"difficulty"`
	Confirmed     bool             `json:"confirmed"`
	CreatedAt     time.Time        `json:"created_at"`
	ModuleCount   int              `json:"module_count"`
}

// FeedbackEntry is one line of a course's feedback log.
type FeedbackEntry struct {
	Timestamp    time.Time    `json:"timestamp"`
	FeedbackType FeedbackType `json:"feedback_type"`
	ModuleID     string       `json:"module_id,omitempty"`
	LessonID     string       `json:"lesson_id,omitempty"`
	Comments     string       `json:"comments,omitempty"`
}

// VersionEntry keeps the before and after of a content rewrite.
type VersionEntry struct {
	Timestamp   time.Time      `json:"timestamp"`
	ModuleID    string         `json:"module_id,omitempty"`
	LessonID    string         `json:"lesson_id,omitempty"`
	Original    map[string]any `json:"original"`
	Regenerated map[string]any `json:"regenerated"`
}

func (c *Course) Summary() Summary {
	return Summary{
		ID:            c.ID,
		UserID:        c.UserID,
		Title:         c.Title,
		Topic:         c.Topic,
		DurationHours: c.DurationHours,
		Difficulty:    c.Difficulty,
		Confirmed:     c.Confirmed,
		CreatedAt:     c.CreatedAt,
		ModuleCount:   len(c.Modules),
	}
}

// LessonCount is the number of lessons across all modules.
func (c *Course) LessonCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lessons)
	}
	return n
}

// FindLesson returns the lesson and its enclosing module.
func (c *Course) FindLesson(lessonID string) (*Module, *Lesson, bool) {
	for i := range c.Modules {
		m := &c.Modules[i]
		for j := range m.Lessons {
			if m.Lessons[j].ID == lessonID {
				return m, &m.Lessons[j], true
			}
		}
	}
	return nil, nil, false
}

// FindModule returns the module with the given ID.
func (c *Course) FindModule(moduleID string) (*Module, bool) {
	for i := range c.Modules {
		if c.Modules[i].ID == moduleID {
			return &c.Modules[i], true
		}
	}
	return nil, false
}

// OwnedBy reports whether userID owns the course.
func (c *Course) OwnedBy(userID string) bool { return c.UserID == userID }
