package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const maxUploadBytes = 5 << 20

// imageExtensions is the allowlist for product image uploads.
var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

func (s *Server) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if file.Size > maxUploadBytes {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{
			Error: errorPayload{
				Type:    "file_too_large",
				Message: "File exceeds the 5MB upload limit",
			},
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	mime, ok := imageExtensions[ext]
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
			Error: errorPayload{
				Type:    "unsupported_file_type",
				Message: "Only JPEG, PNG, WebP, and GIF images are accepted",
			},
		})
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		AbortWithError(c, err)
		return
	}

	base := strings.TrimSuffix(filepath.Base(file.Filename), ext)
	name := fmt.Sprintf("%s-%s%s", slug.Make(base), uuid.NewString(), ext)

	if err := c.SaveUploadedFile(file, filepath.Join(s.cfg.UploadDir, name)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"url":      "/uploads/" + name,
			"filename": name,
			"size":     file.Size,
			"type":     mime,
		},
	})
}
