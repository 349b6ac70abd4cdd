package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plantkeeper.io/plantkeeper/internal/api/middleware"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Login handles POST /auth/login.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "username and password are required"))
		return
	}

	user, err := s.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logger.Warn("login failed", zap.String("username", req.Username))
		_ = c.Error(err)
		return
	}

	token, expiresAt, err := middleware.GenerateToken(s.jwtCfg, user)
	if err != nil {
		logger.Error("failed to generate token", zap.Error(err))
		_ = c.Error(apperrors.Internal(apperrors.CodeInternal, "token generation failed"))
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}

// Me handles GET /auth/me.
func (s *Server) Me(c *gin.Context) {
	a := actor(c)
	dto, err := s.users.Get(c.Request.Context(), a, a.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// Health handles GET /healthz.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
