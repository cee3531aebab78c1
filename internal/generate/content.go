package generate

import (
	"context"

	"github.com/abhisek/coursegen/internal/llm"
	"github.com/abhisek/coursegen/internal/prompts"
	"github.com/abhisek/coursegen/internal/schema"
)

// GenerateCourseContent generates a course outline with full lesson content
// and checks that it is about topic.
func (o *Orchestrator) GenerateCourseContent(ctx context.Context, topic string, durationHours int, difficulty string) (*schema.CourseDraft, error) {
	return Run(ctx, o, Job[*schema.CourseDraft]{
		Purpose:  llm.PurposeCourse,
		Prompt:   o.catalog.Course(topic, durationHours, difficulty),
		Schema:   schema.CourseSchema,
		Validate: schema.ValidateCourse,
		Topic:    topic,
	})
}

// GenerateQuizContent generates questions for one lesson. No topic check is
// made; the lesson content in the prompt already anchors the questions.
func (o *Orchestrator) GenerateQuizContent(ctx context.Context, in prompts.QuizInput) ([]schema.QuestionDraft, error) {
	return Run(ctx, o, Job[[]schema.QuestionDraft]{
		Purpose:  llm.PurposeQuiz,
		Prompt:   o.catalog.Quiz(in),
		Schema:   schema.QuizSchema,
		Validate: schema.ValidateQuiz,
	})
}

// RegenerateLessonContent rewrites a lesson or module document in response
// to learner feedback. Any JSON object is accepted.
func (o *Orchestrator) RegenerateLessonContent(ctx context.Context, original map[string]any, feedbackType, comments string) (map[string]any, error) {
	return Run(ctx, o, Job[map[string]any]{
		Purpose:  llm.PurposeRegeneration,
		Prompt:   o.catalog.Regeneration(original, feedbackType, comments),
		Validate: schema.ValidateObject,
	})
}
