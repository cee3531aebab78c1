package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/coursegen/internal/auth"
	"github.com/abhisek/coursegen/internal/course"
	"github.com/abhisek/coursegen/internal/generate"
)

func abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// statusFor maps a service error to a status and the detail shown to the
// client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, course.ErrCourseNotFound):
		return http.StatusNotFound, "Course not found"
	case errors.Is(err, course.ErrLessonNotFound):
		return http.StatusNotFound, "Lesson not found"
	case errors.Is(err, course.ErrContentNotFound):
		return http.StatusNotFound, "Content not found"
	case errors.Is(err, course.ErrForbidden):
		return http.StatusForbidden, "You don't have permission to access this course"
	case errors.Is(err, course.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusBadRequest, "Email already registered"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Incorrect email or password"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid authentication credentials"
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusUnauthorized, "User not found"
	case generate.IsExhausted(err), errors.Is(err, course.ErrEmptyCourse):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	}
	return http.StatusInternalServerError, "Internal server error"
}

func (s *Server) fail(c *gin.Context, err error) {
	status, detail := statusFor(err)
	if status >= 500 {
		s.log.Error("request failed", "path", c.FullPath(), "request_id", c.GetString(requestIDKey), "error", err)
	}
	c.JSON(status, gin.H{"detail": detail})
}

// bind decodes a JSON body, answering 400 on failure.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
