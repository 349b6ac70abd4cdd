package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/service"
)

// ListMachines handles GET /machines.
func (s *Server) ListMachines(c *gin.Context) {
	out, err := s.machines.List(c.Request.Context(), actor(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetMachine handles GET /machines/:id.
func (s *Server) GetMachine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	dto, err := s.machines.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// CreateMachine handles POST /machines.
func (s *Server) CreateMachine(c *gin.Context) {
	var in service.MachineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "malformed request body"))
		return
	}
	dto, err := s.machines.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

// UpdateMachine handles PUT /machines/:id.
func (s *Server) UpdateMachine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in service.MachineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "malformed request body"))
		return
	}
	dto, err := s.machines.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// ListMachineMaintenances handles GET /machines/:id/maintenances.
func (s *Server) ListMachineMaintenances(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	out, err := s.maintenances.ListByMachine(c.Request.Context(), actor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}
