// Package server exposes the course, quiz, progress and account services
// over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/coursegen/internal/auth"
	"github.com/abhisek/coursegen/internal/config"
	"github.com/abhisek/coursegen/internal/course"
	"github.com/abhisek/coursegen/internal/llm"
	"github.com/abhisek/coursegen/internal/logging"
	"github.com/abhisek/coursegen/internal/progress"
	"github.com/abhisek/coursegen/internal/quiz"
	"github.com/abhisek/coursegen/internal/ratelimit"
)

// Deps are the services behind the routes.
type Deps struct {
	Auth     *auth.Service
	Courses  *course.Service
	Quizzes  *quiz.Service
	Progress *progress.Tracker
	// Limiter caps LLM-backed requests per user. Nil means unlimited.
	Limiter ratelimit.Limiter
	// LLM describes the configured provider for the health endpoint.
	LLM llm.Summary
	Log *logging.Logger
}

type Server struct {
	cfg    config.ServerConfig
	deps   Deps
	log    *logging.Logger
	engine *gin.Engine
}

func New(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = logging.Nop()
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.Unlimited{}
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	s := &Server{cfg: cfg, deps: deps, log: deps.Log.With("component", "http")}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// HTTPServer wraps the handler for addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.recovery())
	r.Use(requestID())
	r.Use(s.accessLog())
	r.Use(s.cors())
	r.Use(s.timeout())

	r.GET("/health", s.health)
	r.POST("/auth/register", s.register)
	r.POST("/auth/login", s.login)

	p := r.Group("/")
	p.Use(s.requireAuth())
	{
		p.GET("/auth/me", s.me)

		limited := s.rateLimit()
		p.POST("/generate-course", limited, s.generateCourse)
		p.POST("/regenerate-course", limited, s.regenerateCourse)
		p.PATCH("/courses/:id/confirm", s.confirmCourse)
		p.GET("/courses", s.listCourses)
		p.GET("/courses/:id", s.getCourse)
		p.DELETE("/courses/:id", s.deleteCourse)
		p.GET("/courses/:id/export", s.exportCourse)

		p.POST("/generate-quiz", limited, s.generateQuiz)
		p.POST("/submit-quiz", s.submitQuiz)
		p.POST("/quiz/retake", limited, s.retakeQuiz)
		p.GET("/quiz/:course_id/:lesson_id", s.currentQuiz)
		p.POST("/quiz/regenerate-easier", limited, s.regenerateEasier)
		p.POST("/quiz/attempt-feedback", s.attemptFeedback)

		p.POST("/feedback", limited, s.submitFeedback)
		p.GET("/feedback/:course_id", s.feedbackHistory)

		p.GET("/progress/all", s.allProgress)
		p.GET("/progress/:course_id", s.courseProgress)
		p.POST("/progress/lesson-access", s.lessonAccess)
		p.POST("/progress/lesson-complete/:course_id/:lesson_id", s.lessonComplete)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	mode := "live"
	if s.deps.LLM.Provider == "mock" {
		mode = "mock"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"service":            "AI Course Generator",
		"llm_mode":           mode,
		"provider":           s.deps.LLM.Provider,
		"api_key_configured": s.deps.LLM.APIKeyConfigured,
		"model":              s.deps.LLM.Model,
		"base_url":           s.deps.LLM.BaseURL,
	})
}
