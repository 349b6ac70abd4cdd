package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// WorkerMetrics handles GET /metrics/workers. Reports running/free/capacity
// per goroutine pool.
func (s *Server) WorkerMetrics(c *gin.Context) {
	if s.pools == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.pools.Metrics())
}
