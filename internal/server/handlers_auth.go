package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/coursegen/internal/auth"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func tokenResponse(token string) gin.H {
	return gin.H{"access_token": token, "token_type": "bearer"}
}

func (s *Server) register(c *gin.Context) {
	var req credentials
	if !bind(c, &req) {
		return
	}
	if err := auth.ValidateCredentials(req.Email, req.Password); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	u, token, err := s.deps.Auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.log.Info("user registered", "user_id", u.ID)
	c.JSON(http.StatusOK, tokenResponse(token))
}

func (s *Server) login(c *gin.Context) {
	var req credentials
	if !bind(c, &req) {
		return
	}
	token, err := s.deps.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse(token))
}

func (s *Server) me(c *gin.Context) {
	u := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "email": u.Email, "created_at": u.CreatedAt})
}
