package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	chatdomain "github.com/freshmart/storefront/internal/chat/domain"
)

func (s *Server) ChatOrder(c *gin.Context) {
	var req chatdomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.chatSvc.Send(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}
