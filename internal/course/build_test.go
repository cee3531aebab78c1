package course

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/coursegen/internal/mastery"
	"github.com/abhisek/coursegen/internal/schema"
)

func testContent() map[string]any {
	return map[string]any{
		"introduction": strings.Repeat("Channels connect goroutines. ", 5),
		"core_concepts": []any{
			map[string]any{"title": "Unbuffered", "explanation": "Synchronous handoff", "code_example": "ch := make(chan int)"},
			map[string]any{"title": "Buffered", "explanation": "Queue with capacity"},
		},
		"guided_walkthrough": []any{"Make", "Send", "Receive"},
		"practical_examples": []any{
			map[string]any{"description": "Pipeline", "code": "for v := range in {}", "explanation": "Stages"},
			map[string]any{"description": "Fan in", "explanation": "Merge"},
		},
		"mental_model": "A channel is a pipe with a valve that only opens when both ends are ready.",
	}
}

func testDraft() *schema.CourseDraft {
	return &schema.CourseDraft{
		Title:    "Go Channels",
		Overview: "All about channels.",
		Modules: []schema.ModuleDraft{{
			Title: "Basics",
			Lessons: []schema.LessonDraft{{
				ID:               "lesson-1",
				Title:            "Making channels",
				Bloom:            mastery.Understand,
				LearningOutcomes: []string{"Create a channel"},
				Content:          testContent(),
				Quiz: []map[string]any{
					{"question": "Zero value of a chan?", "options": []any{"nil", "0"}, "correct_answer": "nil", "difficulty": "HARD"},
					{"question": "Bad answer", "options": []any{"x", "y"}, "correct_answer": "z"},
					{"question": "No options"},
				},
			}},
		}},
	}
}

func TestBuild_Defaults(t *testing.T) {
	c := Build(testDraft(), "Go Channels", 4, Beginner)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, DefaultUserID, c.UserID)
	assert.Equal(t, 1, c.Version)
	assert.False(t, c.Confirmed)
	assert.Equal(t, Beginner, c.Difficulty)
	assert.Equal(t, 4, c.DurationHours)
	assert.False(t, c.CreatedAt.IsZero())

	m := c.Modules[0]
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Learning about Go Channels", m.Description)

	l := m.Lessons[0]
	assert.Equal(t, "lesson-1", l.ID)
	assert.Equal(t, 30, l.EstimatedMinutes)
	assert.Equal(t, mastery.Understand, l.BloomLevel)

	require.Len(t, l.Quiz, 3)
	assert.Equal(t, mastery.Hard, l.Quiz[0].Difficulty)
	assert.Equal(t, mastery.Understand, l.Quiz[0].BloomLevel, "lesson level wins")
	assert.Equal(t, "Review the lesson for more details.", l.Quiz[0].Explanation)
	assert.Equal(t, "x", l.Quiz[1].CorrectAnswer, "unknown answer falls back to the first option")
	assert.Equal(t, []string{"A", "B", "C", "D"}, l.Quiz[2].Options)
	assert.Equal(t, "A", l.Quiz[2].CorrectAnswer)
	for _, q := range l.Quiz {
		assert.Contains(t, q.Options, q.CorrectAnswer)
		assert.NotEmpty(t, q.QuestionID)
	}
}

func TestBuild_PadsQuiz(t *testing.T) {
	d := testDraft()
	d.Modules[0].Lessons[0].Quiz = nil
	d.Modules[0].Lessons[0].LearningOutcomes = nil

	l := Build(d, "Go Channels", 4, Intermediate).Modules[0].Lessons[0]
	require.Len(t, l.Quiz, 2)
	assert.Equal(t, "Practice question about Go Channels at Understand level", l.Quiz[0].Question)
	assert.Equal(t, "Correct answer about Go Channels", l.Quiz[0].CorrectAnswer)
	assert.NotEqual(t, l.Quiz[0].QuestionID, l.Quiz[1].QuestionID)
	assert.Equal(t, []string{"Understand Go Channels concepts"}, l.LearningOutcomes)
}

func TestBuild_TruncatesOptions(t *testing.T) {
	q := buildQuestion(map[string]any{
		"question":       "Pick",
		"options":        []any{"1", "2", "3", "4", "5", "6", "7"},
		"correct_answer": "7",
	}, mastery.Apply, "")
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "7"}, q.Options, "answer survives the cut")
	assert.Equal(t, "7", q.CorrectAnswer)

	q = buildQuestion(map[string]any{
		"question":       "Pick",
		"options":        []any{"1", "2", "3", "4", "5", "6", "7"},
		"correct_answer": "2",
	}, mastery.Apply, "")
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, q.Options)
	assert.Equal(t, "2", q.CorrectAnswer)
}

func TestBuild_AnswerMatchesOptionLoosely(t *testing.T) {
	q := buildQuestion(map[string]any{
		"question":       "Which keyword closes a channel?",
		"options":        []any{"defer", "close", "done"},
		"correct_answer": "  CLOSE ",
	}, mastery.Remember, "")
	assert.Equal(t, "close", q.CorrectAnswer)
}

func TestBuild_DeduplicatesIDs(t *testing.T) {
	d := testDraft()
	d.Modules[0].ID = "m1"
	d.Modules[0].Lessons[0].Quiz = []map[string]any{
		{"question_id": "q1", "question": "First?", "options": []any{"a", "b"}, "correct_answer": "a"},
		{"question_id": "q1", "question": "Second?", "options": []any{"a", "b"}, "correct_answer": "b"},
	}
	second := d.Modules[0]
	second.Title = "Advanced"
	second.Lessons = []schema.LessonDraft{d.Modules[0].Lessons[0]}
	second.Lessons[0].Title = "Closing channels"
	d.Modules = append(d.Modules, second)

	c := Build(d, "Go Channels", 4, Intermediate)
	require.Len(t, c.Modules, 2)
	assert.Equal(t, "m1", c.Modules[0].ID)
	assert.NotEqual(t, c.Modules[0].ID, c.Modules[1].ID)
	assert.NotEmpty(t, c.Modules[1].ID)

	first, other := c.Modules[0].Lessons[0], c.Modules[1].Lessons[0]
	assert.Equal(t, "lesson-1", first.ID)
	assert.NotEqual(t, first.ID, other.ID)

	m, l, ok := c.FindLesson(other.ID)
	require.True(t, ok)
	assert.Equal(t, "Advanced", m.Title)
	assert.Equal(t, "Closing channels", l.Title)

	require.Len(t, first.Quiz, 2)
	assert.Equal(t, "q1", first.Quiz[0].QuestionID)
	assert.NotEqual(t, "q1", first.Quiz[1].QuestionID)
	assert.NotEmpty(t, first.Quiz[1].QuestionID)
}

func TestBuildLessonContent_Object(t *testing.T) {
	lc := BuildLessonContent(testContent(), "Go Channels")
	require.Len(t, lc.CoreConcepts, 2)
	assert.Equal(t, "ch := make(chan int)", lc.CoreConcepts[0].CodeExample)
	assert.Len(t, lc.PracticalExamples, 2)
	assert.Equal(t, []string{"Make", "Send", "Receive"}, lc.GuidedWalkthrough)
	assert.Equal(t, []string{"Understanding Go Channels", "Practical applications"}, lc.LessonOverview)
	assert.Equal(t, []string{"Common mistakes when working with Go Channels"}, lc.CommonPitfalls)
	assert.Equal(t, "This lesson covered the key aspects of Go Channels.", lc.Summary)
}

func TestBuildLessonContent_SparseObject(t *testing.T) {
	lc := BuildLessonContent(map[string]any{
		"core_concepts":      []any{"not an object"},
		"guided_walkthrough": []any{"only", "two"},
	}, "Rust")
	assert.Equal(t, "Welcome to this lesson on Rust.", lc.Introduction)
	require.Len(t, lc.CoreConcepts, 1)
	assert.Equal(t, "Additional Rust Concept", lc.CoreConcepts[0].Title)
	assert.Len(t, lc.PracticalExamples, 1)
	assert.Equal(t, "Step 1: Understand the fundamentals of Rust", lc.GuidedWalkthrough[0])
	assert.Equal(t, "Think of Rust as a foundational concept.", lc.MentalModel)
}

func TestBuildLessonContent_String(t *testing.T) {
	short := BuildLessonContent("Ownership moves values.", "Rust")
	assert.Equal(t, "Ownership moves values.", short.Introduction)
	assert.Equal(t, "Core Concept: Rust", short.CoreConcepts[0].Title)
	assert.Len(t, short.GuidedWalkthrough, 3)

	long := BuildLessonContent(strings.Repeat("é", 250), "Rust")
	assert.True(t, strings.HasPrefix(long.Introduction, "Welcome to this lesson on Rust. "))
	assert.True(t, strings.HasSuffix(long.Introduction, "..."))
	assert.Equal(t, 200, strings.Count(long.Introduction, "é"))
}

func TestBuildLessonContent_Unexpected(t *testing.T) {
	lc := BuildLessonContent(42.0, "Rust")
	assert.Equal(t, "Introduction to Rust", lc.Introduction)
	assert.Equal(t, "Summary of Rust", lc.Summary)
}

func TestParseCourseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want CourseDifficulty
		err  bool
	}{
		{"", Intermediate, false},
		{"beginner", Beginner, false},
		{"ADVANCED", Advanced, false},
		{" Intermediate ", Intermediate, false},
		{"expert", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCourseDifficulty(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestQuestionsFromDrafts_UniqueIDs(t *testing.T) {
	drafts := []schema.QuestionDraft{
		{QuestionID: "q1", Question: "A", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		{QuestionID: "q1", Question: "B", Options: []string{"a", "b"}, CorrectAnswer: "b"},
		{Question: "C", Options: []string{"a", "b"}, CorrectAnswer: "a"},
	}
	qs := QuestionsFromDrafts(drafts, mastery.Medium, mastery.Understand)
	require.Len(t, qs, 3)
	assert.Equal(t, "q1", qs[0].QuestionID)

	seen := map[string]bool{}
	for _, q := range qs {
		assert.NotEmpty(t, q.QuestionID)
		assert.False(t, seen[q.QuestionID], "duplicate id %q", q.QuestionID)
		seen[q.QuestionID] = true
		assert.Equal(t, mastery.Medium, q.Difficulty)
	}
}

func TestQuestionFromDraft(t *testing.T) {
	q := QuestionFromDraft(schema.QuestionDraft{Question: "Q", Options: []string{"a", "b"}, CorrectAnswer: "b"}, mastery.Easy, mastery.Apply)
	assert.NotEmpty(t, q.QuestionID)
	assert.Equal(t, mastery.Easy, q.Difficulty)
	assert.Equal(t, mastery.Apply, q.BloomLevel)
}
