package core

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleFiles echoes an uploaded multipart file back to the caller, keeping
// the original content type and reporting the filename in a header.
func (s *Server) handleFiles(c *gin.Context) {
	s.logRequestHeaders(c, "file upload request")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "'file' field is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to read uploaded file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	s.logger.Info("echoing uploaded file",
		zap.String("filename", fileHeader.Filename),
		zap.String("content_type", contentType),
		zap.Int("size", len(content)))

	c.Header("X-Filename", fileHeader.Filename)
	c.Data(http.StatusOK, contentType, content)
}
