package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/service"
)

// ListSites handles GET /sites. Filter criteria come from query params;
// without any the full list is returned.
func (s *Server) ListSites(c *gin.Context) {
	f, filtered, ok := siteFilterFromQuery(c)
	if !ok {
		return
	}
	var (
		out []domain.SiteDTO
		err error
	)
	if filtered {
		out, err = s.sites.Filter(c.Request.Context(), actor(c), f)
	} else {
		out, err = s.sites.List(c.Request.Context(), actor(c))
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetSite handles GET /sites/:id.
func (s *Server) GetSite(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	dto, err := s.sites.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// CreateSite handles POST /sites.
func (s *Server) CreateSite(c *gin.Context) {
	var in service.SiteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "malformed request body"))
		return
	}
	dto, err := s.sites.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

// UpdateSite handles PUT /sites/:id.
func (s *Server) UpdateSite(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in service.SiteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "malformed request body"))
		return
	}
	dto, err := s.sites.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// DeleteSite handles DELETE /sites/:id.
func (s *Server) DeleteSite(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.sites.Delete(c.Request.Context(), actor(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSiteMachines handles GET /sites/:id/machines.
func (s *Server) ListSiteMachines(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	out, err := s.machines.ListBySite(c.Request.Context(), actor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func siteFilterFromQuery(c *gin.Context) (service.SiteFilter, bool, bool) {
	var f service.SiteFilter
	filtered := false

	if v := c.Query("name"); v != "" {
		f.Name = v
		filtered = true
	}
	if v := c.Query("status"); v != "" {
		f.Status = domain.Status(v)
		filtered = true
	}
	if v := c.Query("responsible_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid responsible_id"))
			return f, false, false
		}
		f.ResponsibleID = id
		filtered = true
	}
	if v := c.Query("min_machines"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid min_machines"))
			return f, false, false
		}
		f.MinMachines = &n
		filtered = true
	}
	if v := c.Query("max_machines"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid max_machines"))
			return f, false, false
		}
		f.MaxMachines = &n
		filtered = true
	}
	if v := c.Query("q"); v != "" {
		f.Query = v
		filtered = true
	}
	return f, filtered, true
}
