package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/coursegen/internal/quiz"
)

type lessonRef struct {
	CourseID string `json:"course_id" binding:"required"`
	LessonID string `json:"lesson_id" binding:"required"`
}

func (s *Server) generateQuiz(c *gin.Context) {
	var req quiz.GenerateRequest
	if !bind(c, &req) {
		return
	}
	q, err := s.deps.Quizzes.GenerateForLesson(c.Request.Context(), userID(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Quiz generated successfully", "quiz": q})
}

func (s *Server) submitQuiz(c *gin.Context) {
	var sub quiz.Submission
	if !bind(c, &sub) {
		return
	}
	res, err := s.deps.Quizzes.Submit(c.Request.Context(), userID(c), sub)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) retakeQuiz(c *gin.Context) {
	var ref lessonRef
	if !bind(c, &ref) {
		return
	}
	q, err := s.deps.Quizzes.Retake(c.Request.Context(), userID(c), ref.CourseID, ref.LessonID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) regenerateEasier(c *gin.Context) {
	var ref lessonRef
	if !bind(c, &ref) {
		return
	}
	q, err := s.deps.Quizzes.RegenerateEasier(c.Request.Context(), userID(c), ref.CourseID, ref.LessonID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) currentQuiz(c *gin.Context) {
	q, err := s.deps.Quizzes.CurrentQuiz(c.Request.Context(), userID(c), c.Param("course_id"), c.Param("lesson_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) attemptFeedback(c *gin.Context) {
	var req quiz.AttemptFeedbackRequest
	if !bind(c, &req) {
		return
	}
	res, err := s.deps.Quizzes.SubmitAttemptFeedback(c.Request.Context(), userID(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
