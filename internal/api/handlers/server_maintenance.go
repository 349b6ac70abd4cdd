package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/service"
)

// ListMaintenances handles GET /maintenances.
func (s *Server) ListMaintenances(c *gin.Context) {
	out, err := s.maintenances.List(c.Request.Context(), actor(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetMaintenance handles GET /maintenances/:id.
func (s *Server) GetMaintenance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	dto, err := s.maintenances.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// CreateMaintenance handles POST /maintenances. A cascade failure after the
// committed write is surfaced as the response error while the maintenance
// row stays committed.
func (s *Server) CreateMaintenance(c *gin.Context) {
	var in service.MaintenanceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "malformed request body"))
		return
	}
	dto, err := s.maintenances.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

// UpdateMaintenance handles PUT /maintenances/:id.
func (s *Server) UpdateMaintenance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in service.MaintenanceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "malformed request body"))
		return
	}
	dto, err := s.maintenances.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto)
}
