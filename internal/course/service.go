package course

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/abhisek/coursegen/internal/logging"
	"github.com/abhisek/coursegen/internal/mastery"
	"github.com/abhisek/coursegen/internal/schema"
)

// Generator produces validated course and rewrite payloads.
type Generator interface {
	GenerateCourseContent(ctx context.Context, topic string, durationHours int, difficulty string) (*schema.CourseDraft, error)
	RegenerateLessonContent(ctx context.Context, original map[string]any, feedbackType, comments string) (map[string]any, error)
}

// GenerateRequest asks for a new course.
type GenerateRequest struct {
	Topic         string           `json:"topic"`
	DurationHours int              `json:"duration_hours"`
	Difficulty    CourseDifficulty `json:"difficulty"`
}

// Validate checks the request bounds and normalizes Difficulty.
func (r *GenerateRequest) Validate() error {
	if n := utf8.RuneCountInString(r.Topic); n < 3 || n > 200 {
		return fmt.Errorf("%w: topic must be between 3 and 200 characters", ErrInvalidRequest)
	}
	if r.DurationHours < 1 || r.DurationHours > 100 {
		return fmt.Errorf("%w: duration_hours must be between 1 and 100", ErrInvalidRequest)
	}
	d, err := ParseCourseDifficulty(string(r.Difficulty))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	r.Difficulty = d
	return nil
}

// RegenerateRequest replaces an existing course with fresh content.
type RegenerateRequest struct {
	CourseID string `json:"course_id"`
	GenerateRequest
}

// FeedbackRequest asks for a lesson or module to be rewritten. LessonID
// takes precedence over ModuleID.
type FeedbackRequest struct {
	CourseID           string       `json:"course_id"`
	ModuleID           string       `json:"module_id,omitempty"`
	LessonID           string       `json:"lesson_id,omitempty"`
	FeedbackType       FeedbackType `json:"feedback_type"`
	AdditionalComments string       `json:"additional_comments,omitempty"`
}

func (r FeedbackRequest) Validate() error {
	if r.CourseID == "" {
		return fmt.Errorf("%w: course_id is required", ErrInvalidRequest)
	}
	if !r.FeedbackType.Valid() {
		return fmt.Errorf("%w: invalid feedback_type %q", ErrInvalidRequest, r.FeedbackType)
	}
	return nil
}

// Service implements the course lifecycle.
type Service struct {
	repo Repository
	gen  Generator
	log  *logging.Logger
	now  func() time.Time
}

// NewService creates a course service. A nil logger discards output.
func NewService(repo Repository, gen Generator, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{repo: repo, gen: gen, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func owner(userID string) string {
	if userID == "" {
		return DefaultUserID
	}
	return userID
}

// Generate creates, stores and returns a new course owned by userID.
func (s *Service) Generate(ctx context.Context, userID string, req GenerateRequest) (*Course, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	userID = owner(userID)
	s.log.Info("course generation requested",
		"topic", req.Topic, "duration_hours", req.DurationHours,
		"difficulty", string(req.Difficulty), "user_id", userID)

	c, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	c.UserID = userID

	if err := s.repo.SaveCourse(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("course generated",
		"course_id", c.ID, "title", c.Title,
		"modules", len(c.Modules), "lessons", c.LessonCount())
	return c, nil
}

func (s *Service) build(ctx context.Context, req GenerateRequest) (*Course, error) {
	draft, err := s.gen.GenerateCourseContent(ctx, req.Topic, req.DurationHours, string(req.Difficulty))
	if err != nil {
		return nil, fmt.Errorf("generate course: %w", err)
	}
	c := Build(draft, req.Topic, req.DurationHours, req.Difficulty)
	if len(c.Modules) == 0 || len(c.Modules[0].Lessons) == 0 {
		return nil, ErrEmptyCourse
	}
	return c, nil
}

// Regenerate replaces a course's content, keeping its ID, owner and
// creation time. The version is bumped, confirmation is cleared and the
// owner's progress on the course is discarded.
func (s *Service) Regenerate(ctx context.Context, userID string, req RegenerateRequest) (*Course, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, userID, req.CourseID)
	if err != nil {
		return nil, err
	}
	s.log.Info("course regeneration requested", "course_id", req.CourseID, "topic", req.Topic)

	c, err := s.build(ctx, req.GenerateRequest)
	if err != nil {
		return nil, err
	}
	c.ID = existing.ID
	c.UserID = existing.UserID
	c.CreatedAt = existing.CreatedAt
	c.Version = existing.Version + 1
	c.Confirmed = false

	if err := s.repo.SaveCourse(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteProgress(ctx, c.ID, c.UserID); err != nil {
		return nil, err
	}
	return c, nil
}

// RegenerateContent rewrites one lesson or module in response to feedback,
// stores the result and records the feedback with the before and after
// documents. It returns the regenerated document.
func (s *Service) RegenerateContent(ctx context.Context, userID string, req FeedbackRequest) (map[string]any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, userID, req.CourseID)
	if err != nil {
		return nil, err
	}

	var (
		lesson *Lesson
		module *Module
		target any
	)
	switch {
	case req.LessonID != "":
		_, lesson, _ = c.FindLesson(req.LessonID)
		if lesson != nil {
			target = lesson
		}
	case req.ModuleID != "":
		module, _ = c.FindModule(req.ModuleID)
		if module != nil {
			target = module
		}
	}
	if target == nil {
		return nil, ErrContentNotFound
	}

	original, err := toMap(target)
	if err != nil {
		return nil, err
	}
	s.log.Info("content regeneration requested",
		"course_id", c.ID, "module_id", req.ModuleID, "lesson_id", req.LessonID,
		"feedback_type", string(req.FeedbackType))

	regenerated, err := s.gen.RegenerateLessonContent(ctx, original, string(req.FeedbackType), req.AdditionalComments)
	if err != nil {
		return nil, fmt.Errorf("regenerate content: %w", err)
	}

	if lesson != nil {
		regenerated["lesson_id"] = lesson.ID
		applyLesson(lesson, regenerated, c.Topic)
	} else {
		regenerated["module_id"] = module.ID
		applyModule(module, regenerated, c.Topic)
	}
	c.Version++

	if err := s.repo.SaveCourse(ctx, c); err != nil {
		return nil, err
	}

	now := s.now()
	fb := FeedbackEntry{
		Timestamp:    now,
		FeedbackType: req.FeedbackType,
		ModuleID:     req.ModuleID,
		LessonID:     req.LessonID,
		Comments:     req.AdditionalComments,
	}
	v := VersionEntry{
		Timestamp:   now,
		ModuleID:    req.ModuleID,
		LessonID:    req.LessonID,
		Original:    original,
		Regenerated: regenerated,
	}
	if err := s.repo.AppendFeedback(ctx, c.ID, fb, v); err != nil {
		return nil, err
	}
	return regenerated, nil
}

// applyLesson overwrites the fields present in raw. The lesson keeps its ID
// and, when raw has no usable quiz, its existing questions.
func applyLesson(l *Lesson, raw map[string]any, topic string) {
	bloom := mastery.ParseBloomLevel(schema.Text(raw, "bloom_level", string(l.BloomLevel)))
	questionBloom := mastery.ParseBloomLevel(schema.Text(raw, "bloom_level", "remember"))

	var quiz []QuizQuestion
	for _, q := range objectList(raw["quiz"]) {
		quiz = append(quiz, buildQuestion(q, questionBloom, "Review the content."))
	}

	l.Title = schema.Text(raw, "lesson_title", l.Title)
	l.BloomLevel = bloom
	l.LearningOutcomes = schema.Strings(raw, "learning_outcomes", l.LearningOutcomes)
	if content, ok := raw["content"]; ok {
		l.Content = BuildLessonContent(content, topic)
	}
	if len(quiz) > 0 {
		l.Quiz = quiz
	}
	l.EstimatedMinutes = schema.Int(raw, "estimated_duration_minutes", l.EstimatedMinutes)
}

// applyModule overwrites module fields and rewrites lessons in order.
// Lessons keep their IDs by position; extra regenerated lessons are added
// with new IDs and missing ones are left as they were.
func applyModule(m *Module, raw map[string]any, topic string) {
	m.Title = schema.Text(raw, "module_title", m.Title)
	m.Description = schema.Text(raw, "module_description", m.Description)

	for j, lraw := range objectList(raw["lessons"]) {
		if j < len(m.Lessons) {
			lraw["lesson_id"] = m.Lessons[j].ID
			applyLesson(&m.Lessons[j], lraw, topic)
			continue
		}
		l := Lesson{
			ID:               newID(),
			Title:            topic + " Lesson",
			BloomLevel:       mastery.Remember,
			LearningOutcomes: []string{fmt.Sprintf("Understand %s concepts", topic)},
			Content:          BuildLessonContent(nil, topic),
			EstimatedMinutes: defaultLessonMinutes,
		}
		lraw["lesson_id"] = l.ID
		applyLesson(&l, lraw, topic)
		l.Quiz = padQuiz(l.Quiz, topic, l.BloomLevel)
		m.Lessons = append(m.Lessons, l)
	}
}

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return m, nil
}

// Get loads a course owned by userID.
func (s *Service) Get(ctx context.Context, userID, courseID string) (*Course, error) {
	c, err := s.repo.LoadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !c.OwnedBy(owner(userID)) {
		return nil, ErrForbidden
	}
	return c, nil
}

// List returns the user's courses, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	return s.repo.ListCourses(ctx, owner(userID))
}

// Confirm marks a course as accepted by its owner.
func (s *Service) Confirm(ctx context.Context, userID, courseID string) error {
	c, err := s.Get(ctx, userID, courseID)
	if err != nil {
		return err
	}
	c.Confirmed = true
	return s.repo.SaveCourse(ctx, c)
}

// Delete removes a course owned by userID.
func (s *Service) Delete(ctx context.Context, userID, courseID string) error {
	if _, err := s.Get(ctx, userID, courseID); err != nil {
		return err
	}
	return s.repo.DeleteCourse(ctx, courseID)
}

// FeedbackHistory returns the feedback log of a course owned by userID.
func (s *Service) FeedbackHistory(ctx context.Context, userID, courseID string) ([]FeedbackEntry, error) {
	if _, err := s.Get(ctx, userID, courseID); err != nil {
		return nil, err
	}
	return s.repo.FeedbackHistory(ctx, courseID)
}

// ReplaceQuiz stores freshly generated questions as a lesson's quiz, so the
// next submission is graded against what the learner was shown.
func (s *Service) ReplaceQuiz(ctx context.Context, userID, courseID, lessonID string, quiz []QuizQuestion) error {
	c, _, l, err := s.FindLesson(ctx, userID, courseID, lessonID)
	if err != nil {
		return err
	}
	l.Quiz = quiz
	return s.repo.SaveCourse(ctx, c)
}

// FindLesson loads a course owned by userID and locates one of its lessons.
func (s *Service) FindLesson(ctx context.Context, userID, courseID, lessonID string) (*Course, *Module, *Lesson, error) {
	c, err := s.Get(ctx, userID, courseID)
	if err != nil {
		return nil, nil, nil, err
	}
	m, l, ok := c.FindLesson(lessonID)
	if !ok {
		return nil, nil, nil, ErrLessonNotFound
	}
	return c, m, l, nil
}
