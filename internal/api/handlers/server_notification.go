package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListNotifications handles GET /notifications: the actor's own inbox,
// newest first.
func (s *Server) ListNotifications(c *gin.Context) {
	out, err := s.notifications.ListFor(c.Request.Context(), actor(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UnreadNotificationCount handles GET /notifications/unread-count.
func (s *Server) UnreadNotificationCount(c *gin.Context) {
	count, err := s.notifications.UnreadCount(c.Request.Context(), actor(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkNotificationRead handles PUT /notifications/:id/read.
func (s *Server) MarkNotificationRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	dto, err := s.notifications.MarkRead(c.Request.Context(), actor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto)
}
