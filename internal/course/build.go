package course

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/coursegen/internal/mastery"
	"github.com/abhisek/coursegen/internal/schema"
)

const (
	defaultLessonMinutes = 30
	minQuizQuestions     = 2
	maxQuizOptions       = 6
)

var placeholderOptions = []string{"A", "B", "C", "D"}

func newID() string { return uuid.NewString() }

// idSet hands out IDs that are unique within one scope. Generated payloads
// often repeat IDs like "lesson-1" across modules.
type idSet map[string]struct{}

// claim returns id, or a fresh ID when id is empty or already taken.
func (s idSet) claim(id string) string {
	if _, taken := s[id]; id == "" || taken {
		id = newID()
	}
	s[id] = struct{}{}
	return id
}

// Build turns a validated draft into a course with defaults filled in. IDs
// missing from the draft or repeated within it are replaced, every lesson
// gets at least two quiz questions, and every correct answer is one of its
// options.
func Build(draft *schema.CourseDraft, topic string, durationHours int, difficulty CourseDifficulty) *Course {
	c := &Course{
		ID:            newID(),
		UserID:        DefaultUserID,
		Title:         orDefault(draft.Title, "Course on "+topic),
		Topic:         topic,
		Overview:      orDefault(draft.Overview, "A comprehensive course on "+topic),
		DurationHours: durationHours,
		Difficulty:    difficulty,
		CreatedAt:     time.Now().UTC(),
		Version:       1,
		Modules:       make([]Module, 0, len(draft.Modules)),
	}

	moduleIDs, lessonIDs := idSet{}, idSet{}
	for _, md := range draft.Modules {
		m := Module{
			ID:          moduleIDs.claim(md.ID),
			Title:       orDefault(md.Title, topic+" Module"),
			Description: orDefault(md.Description, "Learning about "+topic),
			Lessons:     make([]Lesson, 0, len(md.Lessons)),
		}
		for _, ld := range md.Lessons {
			l := buildLesson(ld, topic)
			l.ID = lessonIDs.claim(ld.ID)
			m.Lessons = append(m.Lessons, l)
		}
		c.Modules = append(c.Modules, m)
	}
	return c
}

func buildLesson(ld schema.LessonDraft, topic string) Lesson {
	bloom := ld.Bloom
	if !bloom.Valid() {
		bloom = mastery.Remember
	}

	questionIDs := idSet{}
	quiz := make([]QuizQuestion, 0, max(len(ld.Quiz), minQuizQuestions))
	for _, q := range ld.Quiz {
		qq := buildQuestion(q, bloom, "Review the lesson for more details.")
		qq.QuestionID = questionIDs.claim(schema.Text(q, "question_id", ""))
		quiz = append(quiz, qq)
	}
	quiz = padQuiz(quiz, topic, bloom)

	outcomes := ld.LearningOutcomes
	if len(outcomes) == 0 {
		outcomes = []string{fmt.Sprintf("Understand %s concepts", topic)}
	}
	minutes := ld.EstimatedMinutes
	if minutes <= 0 {
		minutes = defaultLessonMinutes
	}

	return Lesson{
		ID:               ld.ID,
		Title:            orDefault(ld.Title, topic+" Lesson"),
		BloomLevel:       bloom,
		LearningOutcomes: outcomes,
		Content:          BuildLessonContent(ld.Content, topic),
		Quiz:             quiz,
		EstimatedMinutes: minutes,
	}
}

// buildQuestion coerces a raw question object. The lesson's Bloom level is
// authoritative for its questions. The correct answer is resolved against
// the full option list before it is cut to maxQuizOptions, and a matched
// answer always survives the cut.
func buildQuestion(q map[string]any, bloom mastery.BloomLevel, explanation string) QuizQuestion {
	options := schema.Strings(q, "options", nil)
	if len(options) < 2 {
		options = slices.Clone(placeholderOptions)
	}

	answer, ok := schema.MatchOption(schema.Text(q, "correct_answer", ""), options)
	if len(options) > maxQuizOptions {
		kept := options[:maxQuizOptions]
		if ok && !slices.Contains(kept, answer) {
			kept = append(slices.Clone(options[:maxQuizOptions-1]), answer)
		}
		options = kept
	}
	if !ok {
		answer = options[0]
	}

	return QuizQuestion{
		QuestionID:    schema.Text(q, "question_id", newID()),
		Question:      schema.Text(q, "question", "Question text missing"),
		Options:       options,
		CorrectAnswer: answer,
		Difficulty:    mastery.ParseDifficulty(schema.Text(q, "difficulty", "medium")),
		BloomLevel:    bloom,
		Explanation:   schema.Text(q, "explanation", explanation),
	}
}

// padQuiz appends topic-templated practice questions until the quiz has
// the minimum length.
func padQuiz(quiz []QuizQuestion, topic string, bloom mastery.BloomLevel) []QuizQuestion {
	for len(quiz) < minQuizQuestions {
		correct := "Correct answer about " + topic
		quiz = append(quiz, QuizQuestion{
			QuestionID:    newID(),
			Question:      fmt.Sprintf("Practice question about %s at %s level", topic, bloom),
			Options:       []string{correct, "Wrong option 1", "Wrong option 2", "Wrong option 3"},
			CorrectAnswer: correct,
			Difficulty:    mastery.Medium,
			BloomLevel:    bloom,
			Explanation:   fmt.Sprintf("This reinforces %s concepts.", topic),
		})
	}
	return quiz
}

// QuestionsFromDrafts converts a generated quiz. Question IDs that are
// missing or repeated are replaced so answers map to exactly one question.
func QuestionsFromDrafts(drafts []schema.QuestionDraft, difficulty mastery.Difficulty, bloom mastery.BloomLevel) []QuizQuestion {
	ids := idSet{}
	out := make([]QuizQuestion, 0, len(drafts))
	for _, d := range drafts {
		q := QuestionFromDraft(d, difficulty, bloom)
		q.QuestionID = ids.claim(d.QuestionID)
		out = append(out, q)
	}
	return out
}

// QuestionFromDraft converts a generated question, stamping the difficulty
// and Bloom level the quiz was requested at.
func QuestionFromDraft(d schema.QuestionDraft, difficulty mastery.Difficulty, bloom mastery.BloomLevel) QuizQuestion {
	return QuizQuestion{
		QuestionID:    orDefault(d.QuestionID, newID()),
		Question:      d.Question,
		Options:       d.Options,
		CorrectAnswer: d.CorrectAnswer,
		Difficulty:    difficulty,
		BloomLevel:    bloom,
		Explanation:   d.Explanation,
	}
}

// BuildLessonContent normalizes generated lesson content. Objects are
// completed section by section, plain strings are wrapped into a full
// document, and anything else becomes a topic-templated placeholder.
func BuildLessonContent(raw any, topic string) LessonContent {
	switch v := raw.(type) {
	case map[string]any:
		return contentFromObject(v, topic)
	case string:
		return contentFromText(v, topic)
	default:
		return LessonContent{
			Introduction:      "Introduction to " + topic,
			LessonOverview:    []string{"Learn about " + topic},
			CoreConcepts:      []CoreConcept{{Title: topic, Explanation: "Core concepts of " + topic}},
			GuidedWalkthrough: []string{"Step 1: Begin", "Step 2: Practice", "Step 3: Apply"},
			PracticalExamples: []PracticalExample{{Description: "Example", Explanation: "Apply your learning"}},
			CommonPitfalls:    []string{"Watch out for common mistakes"},
			MentalModel:       fmt.Sprintf("Think of %s systematically", topic),
			Summary:           "Summary of " + topic,
			FurtherThinking:   []string{"How will you apply this?"},
		}
	}
}

func contentFromText(text, topic string) LessonContent {
	intro := text
	if len([]rune(text)) > 200 {
		intro = fmt.Sprintf("Welcome to this lesson on %s. %s...", topic, string([]rune(text)[:200]))
	}
	return LessonContent{
		Introduction:   intro,
		LessonOverview: []string{"Understanding " + topic, fmt.Sprintf("Applying %s concepts", topic)},
		CoreConcepts: []CoreConcept{
			{Title: "Core Concept: " + topic, Explanation: text},
		},
		GuidedWalkthrough: []string{
			"Step 1: Review the content above",
			"Step 2: Practice with examples",
			"Step 3: Apply to your own projects",
		},
		PracticalExamples: []PracticalExample{{
			Description: "Example application of " + topic,
			Explanation: "See the core concepts for detailed explanation",
		}},
		CommonPitfalls:  []string{"Common mistake when learning " + topic},
		MentalModel:     fmt.Sprintf("Think of %s as a building block for more advanced concepts.", topic),
		Summary:         fmt.Sprintf("In this lesson, we covered key aspects of %s.", topic),
		FurtherThinking: []string{fmt.Sprintf("How would you apply %s in a real project?", topic)},
	}
}

func contentFromObject(m map[string]any, topic string) LessonContent {
	var concepts []CoreConcept
	for _, item := range objectList(m["core_concepts"]) {
		concepts = append(concepts, CoreConcept{
			Title:       schema.Text(item, "title", "Concept"),
			Explanation: schema.Text(item, "explanation", "Explanation needed"),
			CodeExample: schema.Text(item, "code_example", ""),
		})
	}
	if len(concepts) < 2 {
		concepts = append(concepts, CoreConcept{
			Title:       fmt.Sprintf("Additional %s Concept", topic),
			Explanation: fmt.Sprintf("This concept builds on the fundamentals of %s.", topic),
		})
	}

	var examples []PracticalExample
	for _, item := range objectList(m["practical_examples"]) {
		examples = append(examples, PracticalExample{
			Description: schema.Text(item, "description", "Example"),
			Code:        schema.Text(item, "code", ""),
			Explanation: schema.Text(item, "explanation", "Explanation"),
		})
	}
	if len(examples) < 2 {
		examples = append(examples, PracticalExample{
			Description: "Practical application of " + topic,
			Explanation: fmt.Sprintf("Apply the concepts learned to a real scenario involving %s.", topic),
		})
	}

	walkthrough := schema.Strings(m, "guided_walkthrough", nil)
	if _, isList := m["guided_walkthrough"].([]any); !isList || len(walkthrough) < 3 {
		walkthrough = []string{
			"Step 1: Understand the fundamentals of " + topic,
			"Step 2: Practice with provided examples",
			"Step 3: Apply to your own use cases",
		}
	}

	return LessonContent{
		Introduction:      schema.Text(m, "introduction", fmt.Sprintf("Welcome to this lesson on %s.", topic)),
		LessonOverview:    listOr(m, "lesson_overview", []string{"Understanding " + topic, "Practical applications"}),
		CoreConcepts:      concepts,
		GuidedWalkthrough: walkthrough,
		PracticalExamples: examples,
		CommonPitfalls:    listOr(m, "common_pitfalls", []string{fmt.Sprintf("Common mistakes when working with %s", topic)}),
		MentalModel:       schema.Text(m, "mental_model", fmt.Sprintf("Think of %s as a foundational concept.", topic)),
		Summary:           schema.Text(m, "summary", fmt.Sprintf("This lesson covered the key aspects of %s.", topic)),
		FurtherThinking:   listOr(m, "further_thinking", []string{fmt.Sprintf("How would you extend your understanding of %s?", topic)}),
	}
}

// listOr reads a non-empty list of strings, or returns def.
func listOr(m map[string]any, key string, def []string) []string {
	if _, isList := m[key].([]any); !isList {
		return def
	}
	return schema.Strings(m, key, def)
}

func objectList(v any) []map[string]any {
	items, _ := v.([]any)
	var out []map[string]any
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
