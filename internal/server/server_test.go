package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/coursegen/internal/auth"
	"github.com/abhisek/coursegen/internal/config"
	"github.com/abhisek/coursegen/internal/course"
	"github.com/abhisek/coursegen/internal/generate"
	"github.com/abhisek/coursegen/internal/llm"
	"github.com/abhisek/coursegen/internal/progress"
	"github.com/abhisek/coursegen/internal/quiz"
	"github.com/abhisek/coursegen/internal/ratelimit"
	"github.com/abhisek/coursegen/internal/store"
)

const concurrencyCourse = `{
  "title": "Go Concurrency",
  "overview": "Concurrency in Go from goroutines to pipelines.",
  "modules": [{
    "module_title": "Concurrency basics",
    "lessons": [{
      "lesson_title": "Goroutines",
      "bloom_level": "Understand",
      "learning_outcomes": ["Explain how concurrency differs from parallelism"],
      "content": {
        "introduction": "Concurrency is about structuring a program as independently executing pieces. Go makes concurrency cheap with goroutines.",
        "core_concepts": [{"title": "Goroutines", "explanation": "Lightweight threads"}, {"title": "Channels", "explanation": "Typed pipes"}],
        "guided_walkthrough": ["Start", "Spawn", "Wait"],
        "practical_examples": [{"description": "Fan out"}, {"description": "Worker pool"}]
      },
      "quiz": []
    }]
  }]
}`

const quizReply = `{"questions": [
  {"question": "What starts a goroutine?", "options": ["go", "defer"], "correct_answer": "go"},
  {"question": "What blocks on an unbuffered send?", "options": ["sender", "nobody"], "correct_answer": "sender"}
]}`

func init() { gin.SetMode(gin.TestMode) }

func newTestServer(t *testing.T, mock *llm.MockProvider, limiter ratelimit.Limiter) http.Handler {
	t.Helper()
	docs, err := store.Open(t.TempDir())
	require.NoError(t, err)

	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour, "coursegen")
	require.NoError(t, err)

	orch := generate.New(mock, generate.DefaultConfig(), nil)
	repo := course.NewFileRepository(docs)
	courses := course.NewService(repo, orch, nil)
	tracker := progress.NewTracker(progress.NewFileStore(docs), repo, nil)

	srv := New(config.ServerConfig{Mode: gin.TestMode, RequestTimeout: time.Minute}, Deps{
		Auth:     auth.NewService(auth.NewFileUserRepository(docs), tokens),
		Courses:  courses,
		Quizzes:  quiz.NewService(courses, tracker, orch, nil),
		Progress: tracker,
		Limiter:  limiter,
		LLM:      llm.Summary{Provider: "mock", Model: "mock"},
	})
	return srv.Handler()
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func register(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rec := call(t, h, http.MethodPost, "/auth/register", "", gin.H{"email": email, "password": "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[map[string]string](t, rec)
	assert.Equal(t, "bearer", resp["token_type"])
	return resp["access_token"]
}

var generateBody = gin.H{"topic": "Go Concurrency", "duration_hours": 4, "difficulty": "intermediate"}

func TestHealth(t *testing.T) {
	h := newTestServer(t, llm.NewMockProvider(), nil)
	rec := call(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "mock", body["llm_mode"])
	assert.Equal(t, false, body["api_key_configured"])
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestAuthFlow(t *testing.T) {
	h := newTestServer(t, llm.NewMockProvider(), nil)

	rec := call(t, h, http.MethodGet, "/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = call(t, h, http.MethodGet, "/courses", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := register(t, h, "ada@example.com")

	rec = call(t, h, http.MethodPost, "/auth/register", "", gin.H{"email": "ADA@example.com", "password": "hunter22"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", decode[map[string]string](t, rec)["detail"])

	rec = call(t, h, http.MethodPost, "/auth/register", "", gin.H{"email": "not-an-email", "password": "hunter22"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodPost, "/auth/login", "", gin.H{"email": "ada@example.com", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Incorrect email or password", decode[map[string]string](t, rec)["detail"])

	rec = call(t, h, http.MethodPost, "/auth/login", "", gin.H{"email": "ada@example.com", "password": "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "ada@example.com", me["email"])
	assert.NotContains(t, me, "password_hash")

	rec = call(t, h, http.MethodGet, "/courses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCourseLifecycle(t *testing.T) {
	mock := llm.NewMockText(concurrencyCourse, quizReply)
	h := newTestServer(t, mock, nil)
	token := register(t, h, "ada@example.com")
	other := register(t, h, "bob@example.com")

	rec := call(t, h, http.MethodPost, "/generate-course", token, generateBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	gen := decode[struct {
		Success bool          `json:"success"`
		Course  course.Course `json:"course"`
	}](t, rec)
	require.True(t, gen.Success)
	c := gen.Course
	assert.Equal(t, course.Intermediate, c.Difficulty)
	require.Len(t, c.Modules, 1)
	lesson := c.Modules[0].Lessons[0]
	require.GreaterOrEqual(t, len(lesson.Quiz), 2)

	rec = call(t, h, http.MethodGet, "/courses/"+c.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = call(t, h, http.MethodGet, "/courses/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Course not found", decode[map[string]string](t, rec)["detail"])

	rec = call(t, h, http.MethodPatch, "/courses/"+c.ID+"/confirm", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, h, http.MethodGet, "/courses", token, nil)
	list := decode[[]course.Summary](t, rec)
	require.Len(t, list, 1)
	assert.True(t, list[0].Confirmed)

	answers := map[string]string{}
	for _, q := range lesson.Quiz {
		answers[q.QuestionID] = q.CorrectAnswer
	}
	rec = call(t, h, http.MethodPost, "/submit-quiz", token, gin.H{"course_id": c.ID, "lesson_id": lesson.ID, "answers": answers})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[quiz.Result](t, rec)
	assert.Equal(t, 100.0, res.Score)
	assert.True(t, res.Passed)
	assert.False(t, res.NeedsFeedback)

	rec = call(t, h, http.MethodGet, "/progress/"+c.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[progress.CourseView](t, rec)
	assert.Equal(t, 100.0, view.OverallProgress)
	assert.True(t, view.Modules[0].Lessons[0].Completed)

	rec = call(t, h, http.MethodGet, "/progress/all", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]progress.Overview](t, rec), 1)
	rec = call(t, h, http.MethodGet, "/progress/all", other, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = call(t, h, http.MethodPost, "/progress/lesson-access", token, gin.H{"course_id": c.ID, "module_index": 0, "lesson_index": 0, "lesson_id": lesson.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lesson access tracked", decode[map[string]any](t, rec)["message"])
	rec = call(t, h, http.MethodPost, "/progress/lesson-access", other, gin.H{"course_id": c.ID, "module_index": 0, "lesson_index": 0})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, h, http.MethodPost, "/progress/lesson-complete/"+c.ID+"/"+lesson.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100.0, decode[map[string]any](t, rec)["overall_progress"])

	rec = call(t, h, http.MethodPost, "/generate-quiz", token, gin.H{"course_id": c.ID, "lesson_id": lesson.ID, "difficulty": "hard", "num_questions": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	gq := decode[struct {
		Success bool               `json:"success"`
		Quiz    quiz.GeneratedQuiz `json:"quiz"`
	}](t, rec)
	assert.True(t, gq.Success)
	assert.Len(t, gq.Quiz.Questions, 2)

	rec = call(t, h, http.MethodGet, "/quiz/"+c.ID+"/"+lesson.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[quiz.LessonQuiz](t, rec)
	assert.Equal(t, gq.Quiz.Questions, current.Questions)

	rec = call(t, h, http.MethodGet, "/courses/"+c.ID+"/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	wb, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, []string{"Course", "Quiz", "Progress"}, wb.GetSheetList())
	require.NoError(t, wb.Close())

	rec = call(t, h, http.MethodDelete, "/courses/"+c.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = call(t, h, http.MethodDelete, "/courses/"+c.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, h, http.MethodGet, "/courses/"+c.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateCourse_Validation(t *testing.T) {
	h := newTestServer(t, llm.NewMockProvider(), nil)
	token := register(t, h, "ada@example.com")

	rec := call(t, h, http.MethodPost, "/generate-course", token, gin.H{"topic": "Go", "duration_hours": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = call(t, h, http.MethodPost, "/generate-course", token, gin.H{"topic": "Go Concurrency", "duration_hours": 4, "difficulty": "expert"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateCourse_Exhausted(t *testing.T) {
	mock := llm.NewMockProvider()
	h := newTestServer(t, mock, nil)
	token := register(t, h, "ada@example.com")

	rec := call(t, h, http.MethodPost, "/generate-course", token, generateBody)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	detail := decode[map[string]string](t, rec)["detail"]
	assert.Contains(t, detail, "generation failed after 3 attempts")
	assert.Equal(t, 3, mock.CallCount())
}

func TestGenerateCourse_RateLimited(t *testing.T) {
	mock := llm.NewMockText(concurrencyCourse)
	h := newTestServer(t, mock, ratelimit.NewMemoryLimiter(1, time.Hour))
	token := register(t, h, "ada@example.com")

	rec := call(t, h, http.MethodPost, "/generate-course", token, generateBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = call(t, h, http.MethodPost, "/generate-course", token, generateBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, mock.CallCount())
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{course.ErrLessonNotFound, http.StatusNotFound},
		{course.ErrContentNotFound, http.StatusNotFound},
		{course.ErrForbidden, http.StatusForbidden},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{&generate.ExhaustedError{}, http.StatusBadGateway},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _ := statusFor(tc.err)
		assert.Equal(t, tc.status, status, "%v", tc.err)
	}
}
