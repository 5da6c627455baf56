package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListNotifications(c *gin.Context) {
	entries := s.hub.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

func (s *Server) RemoveNotification(c *gin.Context) {
	if !s.hub.Remove(c.Param("id")) {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{
			Error: errorPayload{
				Type:    "not_found",
				Message: "notification not found",
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) ClearNotifications(c *gin.Context) {
	s.hub.Clear()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
