package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/coursegen/internal/course"
	"github.com/abhisek/coursegen/internal/logging"
	"github.com/abhisek/coursegen/internal/mastery"
	"github.com/abhisek/coursegen/internal/progress"
	"github.com/abhisek/coursegen/internal/prompts"
	"github.com/abhisek/coursegen/internal/schema"
)

const defaultQuestionCount = 3

// Generator produces validated quiz questions. generate.Orchestrator
// satisfies it.
type Generator interface {
	GenerateQuizContent(ctx context.Context, in prompts.QuizInput) ([]schema.QuestionDraft, error)
}

// Courses resolves owned lessons and stores replacement quizzes.
// course.Service satisfies it.
type Courses interface {
	FindLesson(ctx context.Context, userID, courseID, lessonID string) (*course.Course, *course.Module, *course.Lesson, error)
	ReplaceQuiz(ctx context.Context, userID, courseID, lessonID string, quiz []course.QuizQuestion) error
}

// Submission is a learner's answers for a lesson quiz, keyed by question ID.
type Submission struct {
	CourseID string            `json:"course_id"`
	LessonID string            `json:"lesson_id"`
	Answers  map[string]string `json:"answers"`
}

// Result is returned for a graded submission.
type Result struct {
	CourseID          string             `json:"course_id"`
	LessonID          string             `json:"lesson_id"`
	Score             float64            `json:"score"`
	CorrectCount      int                `json:"correct_count"`
	TotalQuestions    int                `json:"total_questions"`
	Passed            bool               `json:"passed"`
	NeedsFeedback     bool               `json:"needs_feedback"`
	UpdatedDifficulty mastery.Difficulty `json:"updated_difficulty"`
	CurrentBloomLevel mastery.BloomLevel `json:"current_bloom_level"`
	NextBloomLevel    mastery.BloomLevel `json:"next_bloom_level"`
	Feedback          []QuestionFeedback `json:"feedback"`
	Timestamp         time.Time          `json:"timestamp"`
}

// GenerateRequest asks for a new quiz on a lesson.
type GenerateRequest struct {
	CourseID     string `json:"course_id"`
	LessonID     string `json:"lesson_id"`
	Difficulty   string `json:"difficulty"`
	NumQuestions int    `json:"num_questions"`
}

// GeneratedQuiz is a quiz produced on request.
type GeneratedQuiz struct {
	LessonID    string                `json:"lesson_id"`
	LessonTitle string                `json:"lesson_title"`
	BloomLevel  mastery.BloomLevel    `json:"bloom_level"`
	Difficulty  mastery.Difficulty    `json:"difficulty"`
	Questions   []course.QuizQuestion `json:"questions"`
}

// LessonQuiz is a lesson's quiz together with the adaptive state it is
// pitched at.
type LessonQuiz struct {
	LessonID          string                `json:"lesson_id"`
	LessonTitle       string                `json:"lesson_title"`
	CurrentDifficulty mastery.Difficulty    `json:"current_difficulty"`
	CurrentBloomLevel mastery.BloomLevel    `json:"current_bloom_level"`
	Questions         []course.QuizQuestion `json:"questions"`
	Message           string                `json:"message,omitempty"`
}

// AttemptFeedbackRequest carries the learner's reaction to a quiz attempt.
// Answers, when given, are the attempt's answers and identify the missed
// questions.
type AttemptFeedbackRequest struct {
	CourseID string                   `json:"course_id"`
	LessonID string                   `json:"lesson_id"`
	Feedback progress.AttemptFeedback `json:"feedback"`
	Answers  map[string]string        `json:"answers,omitempty"`
}

type AttemptFeedbackResult struct {
	Success            bool               `json:"success"`
	CurrentBloomLevel  mastery.BloomLevel `json:"current_bloom_level"`
	AdaptationStrategy string             `json:"adaptation_strategy,omitempty"`
	Message            string             `json:"message"`
}

// Service runs quiz submissions and quiz generation.
type Service struct {
	courses Courses
	tracker *progress.Tracker
	gen     Generator
	catalog *prompts.Catalog
	log     *logging.Logger
	now     func() time.Time
}

// NewService creates a quiz service. A nil logger discards output.
func NewService(courses Courses, tracker *progress.Tracker, gen Generator, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		courses: courses,
		tracker: tracker,
		gen:     gen,
		catalog: prompts.Default(),
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit grades a submission, applies the adaptive rules and records the
// attempt with a single progress update.
func (s *Service) Submit(ctx context.Context, userID string, sub Submission) (*Result, error) {
	_, module, lesson, err := s.courses.FindLesson(ctx, userID, sub.CourseID, sub.LessonID)
	if err != nil {
		return nil, err
	}
	difficulty, bloom, err := s.tracker.LessonState(ctx, sub.CourseID, userID, module.ID, lesson)
	if err != nil {
		return nil, err
	}

	report := Grade(lesson.Quiz, sub.Answers)
	out := mastery.Step(difficulty, bloom, report.Score)

	_, err = s.tracker.UpdateLesson(ctx, progress.LessonUpdate{
		CourseID:      sub.CourseID,
		UserID:        userID,
		ModuleID:      module.ID,
		LessonID:      lesson.ID,
		Score:         report.Score,
		Difficulty:    out.Difficulty,
		SmoothedScore: report.Score / 100,
		Bloom:         out.Bloom,
	})
	if err != nil {
		return nil, err
	}

	for _, tr := range out.Transitions(lesson.ID, difficulty, bloom, report.Score) {
		if tr.Changed() {
			s.log.Info("adaptive level changed",
				"lesson_id", tr.LessonID, "kind", tr.Kind, "from", tr.From, "to", tr.To, "score", tr.Score)
		}
	}

	return &Result{
		CourseID:          sub.CourseID,
		LessonID:          sub.LessonID,
		Score:             report.Score,
		CorrectCount:      report.CorrectCount,
		TotalQuestions:    report.Total,
		Passed:            out.Passed,
		NeedsFeedback:     report.CorrectCount < report.Total,
		UpdatedDifficulty: out.Difficulty,
		CurrentBloomLevel: bloom,
		NextBloomLevel:    out.Bloom,
		Feedback:          report.Feedback,
		Timestamp:         s.now(),
	}, nil
}

func parseDifficulty(s string) (mastery.Difficulty, error) {
	if strings.TrimSpace(s) == "" {
		return mastery.Medium, nil
	}
	d := mastery.Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: invalid difficulty %q", course.ErrInvalidRequest, s)
	}
	return d, nil
}

// GenerateForLesson generates a quiz at the requested difficulty and the
// lesson's own Bloom level.
func (s *Service) GenerateForLesson(ctx context.Context, userID string, req GenerateRequest) (*GeneratedQuiz, error) {
	difficulty, err := parseDifficulty(req.Difficulty)
	if err != nil {
		return nil, err
	}
	count := req.NumQuestions
	if count <= 0 {
		count = defaultQuestionCount
	}
	_, _, lesson, err := s.courses.FindLesson(ctx, userID, req.CourseID, req.LessonID)
	if err != nil {
		return nil, err
	}
	questions, err := s.generate(ctx, userID, req.CourseID, lesson, difficulty, lesson.BloomLevel, count, "")
	if err != nil {
		return nil, err
	}
	return &GeneratedQuiz{
		LessonID:    lesson.ID,
		LessonTitle: lesson.Title,
		BloomLevel:  lesson.BloomLevel,
		Difficulty:  difficulty,
		Questions:   questions,
	}, nil
}

// Retake generates a quiz at the lesson's current adaptive state, shaped by
// the adaptation strategy of the latest attempt memory.
func (s *Service) Retake(ctx context.Context, userID, courseID, lessonID string) (*LessonQuiz, error) {
	_, module, lesson, err := s.courses.FindLesson(ctx, userID, courseID, lessonID)
	if err != nil {
		return nil, err
	}
	difficulty, bloom, err := s.tracker.LessonState(ctx, courseID, userID, module.ID, lesson)
	if err != nil {
		return nil, err
	}

	var instructions string
	memory, err := s.tracker.LatestMemory(ctx, courseID, lessonID, userID)
	if err != nil {
		return nil, err
	}
	if memory != nil {
		instructions = s.catalog.AdaptationInstruction(memory.AdaptationStrategy)
		s.log.Debug("retake adapted from attempt memory",
			"lesson_id", lessonID, "attempt_id", memory.AttemptID, "strategy", memory.AdaptationStrategy)
	}

	questions, err := s.generate(ctx, userID, courseID, lesson, difficulty, bloom, defaultQuestionCount, instructions)
	if err != nil {
		return nil, err
	}
	return &LessonQuiz{
		LessonID:          lesson.ID,
		LessonTitle:       lesson.Title,
		CurrentDifficulty: difficulty,
		CurrentBloomLevel: bloom,
		Questions:         questions,
	}, nil
}

// RegenerateEasier generates a quiz one difficulty tier below the lesson's
// current one.
func (s *Service) RegenerateEasier(ctx context.Context, userID, courseID, lessonID string) (*LessonQuiz, error) {
	_, module, lesson, err := s.courses.FindLesson(ctx, userID, courseID, lessonID)
	if err != nil {
		return nil, err
	}
	difficulty, bloom, err := s.tracker.LessonState(ctx, courseID, userID, module.ID, lesson)
	if err != nil {
		return nil, err
	}
	easier := difficulty.Prev()

	questions, err := s.generate(ctx, userID, courseID, lesson, easier, bloom, defaultQuestionCount, "")
	if err != nil {
		return nil, err
	}
	return &LessonQuiz{
		LessonID:          lesson.ID,
		LessonTitle:       lesson.Title,
		CurrentDifficulty: easier,
		CurrentBloomLevel: bloom,
		Questions:         questions,
		Message:           "Quiz regenerated with easier questions",
	}, nil
}

// CurrentQuiz returns the lesson's stored quiz with its adaptive state.
func (s *Service) CurrentQuiz(ctx context.Context, userID, courseID, lessonID string) (*LessonQuiz, error) {
	_, module, lesson, err := s.courses.FindLesson(ctx, userID, courseID, lessonID)
	if err != nil {
		return nil, err
	}
	difficulty, bloom, err := s.tracker.LessonState(ctx, courseID, userID, module.ID, lesson)
	if err != nil {
		return nil, err
	}
	return &LessonQuiz{
		LessonID:          lesson.ID,
		LessonTitle:       lesson.Title,
		CurrentDifficulty: difficulty,
		CurrentBloomLevel: bloom,
		Questions:         lesson.Quiz,
	}, nil
}

// generate requests questions and stores them as the lesson's quiz.
func (s *Service) generate(ctx context.Context, userID, courseID string, lesson *course.Lesson, difficulty mastery.Difficulty, bloom mastery.BloomLevel, count int, instructions string) ([]course.QuizQuestion, error) {
	s.log.Info("quiz generation requested",
		"course_id", courseID, "lesson_id", lesson.ID, "difficulty", string(difficulty),
		"bloom_level", string(bloom), "count", count, "adapted", instructions != "")

	drafts, err := s.gen.GenerateQuizContent(ctx, prompts.QuizInput{
		LessonContent:          prompts.LessonText(lesson.Content),
		Bloom:                  string(bloom),
		Difficulty:             string(difficulty),
		Count:                  count,
		AdditionalInstructions: instructions,
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	questions := course.QuestionsFromDrafts(drafts, difficulty, bloom)
	if len(questions) < count {
		s.log.Warn("quiz generated short", "lesson_id", lesson.ID, "requested", count, "got", len(questions))
	}
	if err := s.courses.ReplaceQuiz(ctx, userID, courseID, lesson.ID, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// SubmitAttemptFeedback records feedback on the latest attempt. Feedback
// that the quiz was too difficult or unclear drops the lesson one Bloom
// level. A completed attempt memory with the matching adaptation strategy
// is saved for the next retake.
func (s *Service) SubmitAttemptFeedback(ctx context.Context, userID string, req AttemptFeedbackRequest) (*AttemptFeedbackResult, error) {
	if !req.Feedback.Valid() {
		return nil, fmt.Errorf("%w: invalid feedback %q", course.ErrInvalidRequest, req.Feedback)
	}
	_, module, lesson, err := s.courses.FindLesson(ctx, userID, req.CourseID, req.LessonID)
	if err != nil {
		return nil, err
	}
	_, bloom, err := s.tracker.LessonState(ctx, req.CourseID, userID, module.ID, lesson)
	if err != nil {
		return nil, err
	}
	next := bloom
	if req.Feedback.Regresses() {
		next = bloom.Prev()
	}

	if _, err := s.tracker.RecordAttemptFeedback(ctx, req.CourseID, userID, module.ID, lesson.ID, req.Feedback, next); err != nil {
		return nil, err
	}

	memory := &progress.QuizAttemptMemory{
		AttemptID:             uuid.NewString(),
		UserID:                userID,
		CourseID:              req.CourseID,
		LessonID:              lesson.ID,
		InitialBloomLevel:     bloom,
		FinalBloomLevel:       next,
		FeedbackEntries:       []progress.MemoryFeedback{},
		WrongQuestions:        []progress.WrongQuestion{},
		RecommendedBloomLevel: next,
		AdaptationStrategy:    req.Feedback.Strategy(),
		CreatedAt:             s.now(),
		Completed:             true,
	}
	memory.Record(progress.MemoryFeedback{FeedbackType: req.Feedback, BloomLevel: bloom})
	if req.Answers != nil {
		for _, f := range Grade(lesson.Quiz, req.Answers).Wrong() {
			memory.WrongQuestions = append(memory.WrongQuestions, progress.WrongQuestion{
				QuestionID:    f.QuestionID,
				Question:      f.Question,
				UserAnswer:    f.UserAnswer,
				CorrectAnswer: f.CorrectAnswer,
			})
		}
	}
	if err := s.tracker.SaveMemory(ctx, memory); err != nil {
		return nil, err
	}

	s.log.Info("attempt feedback recorded",
		"lesson_id", lesson.ID, "feedback", string(req.Feedback),
		"bloom_from", string(bloom), "bloom_to", string(next), "strategy", memory.AdaptationStrategy)
	return &AttemptFeedbackResult{
		Success:            true,
		CurrentBloomLevel:  next,
		AdaptationStrategy: memory.AdaptationStrategy,
		Message:            "Feedback recorded",
	}, nil
}
