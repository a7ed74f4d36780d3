package middleware

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// servedUploadExtensions covers every file type a section can accept.
var servedUploadExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
	".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".webm": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".txt": {},
}

// UploadsProtection only serves files with a known section extension from the
// public uploads route and forces downloads for documents.
func UploadsProtection() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawPath := strings.ToLower(strings.TrimSpace(c.Param("filepath")))
		if strings.Contains(rawPath, "..") {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		ext := filepath.Ext(rawPath)
		if _, ok := servedUploadExtensions[ext]; !ok {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		switch ext {
		case ".pdf", ".doc", ".docx", ".txt":
			c.Header("Content-Disposition", "attachment")
		}
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}
