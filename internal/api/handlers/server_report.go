package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/service"
)

// ListReports handles GET /reports.
func (s *Server) ListReports(c *gin.Context) {
	out, err := s.reports.List(c.Request.Context(), actor(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetReport handles GET /reports/:id.
func (s *Server) GetReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	dto, err := s.reports.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// CreateReport handles POST /reports.
func (s *Server) CreateReport(c *gin.Context) {
	var in service.ReportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "malformed request body"))
		return
	}
	dto, err := s.reports.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}
