package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/coursegen/internal/progress"
)

func (s *Server) allProgress(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	courses, err := s.deps.Courses.List(ctx, uid)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := []progress.Overview{}
	for _, sum := range courses {
		p, err := s.deps.Progress.Load(ctx, sum.ID, uid)
		if errors.Is(err, progress.ErrNotFound) {
			continue
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		out = append(out, progress.NewOverview(sum, p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) courseProgress(c *gin.Context) {
	ctx := c.Request.Context()
	crs, err := s.deps.Courses.Get(ctx, userID(c), c.Param("course_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.deps.Progress.GetOrCreate(ctx, crs.ID, userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress.Detail(crs, p))
}

type lessonAccessRequest struct {
	CourseID    string `json:"course_id" binding:"required"`
	ModuleIndex int    `json:"module_index" binding:"min=0"`
	LessonIndex int    `json:"lesson_index" binding:"min=0"`
	LessonID    string `json:"lesson_id"`
}

func (s *Server) lessonAccess(c *gin.Context) {
	var req lessonAccessRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if _, err := s.deps.Courses.Get(ctx, userID(c), req.CourseID); err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.deps.Progress.UpdateLessonAccess(ctx, req.CourseID, userID(c), req.ModuleIndex, req.LessonIndex)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"current_module_index": p.CurrentModuleIndex,
		"current_lesson_index": p.CurrentLessonIndex,
		"message":              "Lesson access tracked",
	})
}

func (s *Server) lessonComplete(c *gin.Context) {
	ctx := c.Request.Context()
	crs, err := s.deps.Courses.Get(ctx, userID(c), c.Param("course_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.deps.Progress.MarkLessonCompleted(ctx, crs.ID, userID(c), c.Param("lesson_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"overall_progress":  p.OverallProgress,
		"completed_lessons": p.CompletedLessons,
		"message":           "Lesson marked as completed",
	})
}
