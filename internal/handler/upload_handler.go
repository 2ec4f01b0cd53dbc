package handler

import (
	"fmt"
	"net/http"
	"time"

	"raspadinha/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

type UploadHandler struct {
	cld cloudinary.Client
}

func NewUploadHandler(cld cloudinary.Client) *UploadHandler {
	return &UploadHandler{cld: cld}
}

// UploadImage stores card or prize artwork and returns the delivery URLs.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large (max 10MB)"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer f.Close()

	publicID := fmt.Sprintf("card_%d", time.Now().UnixNano())
	url, thumb, err := h.cld.UploadImage(c.Request.Context(), f, "scratch-cards", publicID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"url":           url,
		"thumbnail_url": thumb,
	})
}
