package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/coursegen/internal/course"
	"github.com/abhisek/coursegen/internal/export"
	"github.com/abhisek/coursegen/internal/progress"
)

func (s *Server) generateCourse(c *gin.Context) {
	var req course.GenerateRequest
	if !bind(c, &req) {
		return
	}
	crs, err := s.deps.Courses.Generate(c.Request.Context(), userID(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": crs, "message": "Course generated successfully"})
}

func (s *Server) regenerateCourse(c *gin.Context) {
	var req course.RegenerateRequest
	if !bind(c, &req) {
		return
	}
	crs, err := s.deps.Courses.Regenerate(c.Request.Context(), userID(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": crs, "message": "Course regenerated"})
}

func (s *Server) confirmCourse(c *gin.Context) {
	if err := s.deps.Courses.Confirm(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Course confirmed"})
}

func (s *Server) listCourses(c *gin.Context) {
	list, err := s.deps.Courses.List(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if list == nil {
		list = []course.Summary{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getCourse(c *gin.Context) {
	crs, err := s.deps.Courses.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, crs)
}

func (s *Server) deleteCourse(c *gin.Context) {
	if err := s.deps.Courses.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Course deleted"})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) exportCourse(c *gin.Context) {
	ctx := c.Request.Context()
	crs, err := s.deps.Courses.Get(ctx, userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.deps.Progress.Load(ctx, crs.ID, userID(c))
	if err != nil && !errors.Is(err, progress.ErrNotFound) {
		s.fail(c, err)
		return
	}

	f, err := export.Workbook(crs, p)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="course-%s.xlsx"`, crs.ID))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if _, err := f.WriteTo(c.Writer); err != nil {
		s.log.Error("write export", "course_id", crs.ID, "error", err)
	}
}

func (s *Server) submitFeedback(c *gin.Context) {
	var req course.FeedbackRequest
	if !bind(c, &req) {
		return
	}
	doc, err := s.deps.Courses.RegenerateContent(c.Request.Context(), userID(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"message":             "Content regenerated successfully",
		"regenerated_content": doc,
	})
}

func (s *Server) feedbackHistory(c *gin.Context) {
	entries, err := s.deps.Courses.FeedbackHistory(c.Request.Context(), userID(c), c.Param("course_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if entries == nil {
		entries = []course.FeedbackEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
