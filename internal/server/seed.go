package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) Seed(c *gin.Context) {
	result, err := s.seeder.Reseed(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}
