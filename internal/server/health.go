package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"service":     s.cfg.AppName,
		"version":     s.cfg.AppVersion,
		"environment": s.cfg.Environment,
	})
}

func (s *Server) AIHealth(c *gin.Context) {
	s.aiRegistry.RefreshHealth(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"ready":     s.aiRegistry.Ready(),
		"providers": s.aiRegistry.Health(),
	})
}
