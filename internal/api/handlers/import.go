package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/se1907800-collab/mediavalut/internal/ingest"
	"github.com/se1907800-collab/mediavalut/internal/websocket"
)

// ImportCSV ingests a media inventory uploaded as a CSV file.
func (h *Handler) ImportCSV(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer f.Close()

	rows, skipped, err := ingest.Parse(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.lib.Import(rows)
	if err != nil {
		respondError(c, err)
		return
	}
	result.Skipped += skipped
	h.persist(c)

	h.hub.Broadcast(&websocket.Notification{
		Type: websocket.ImportComplete,
		Data: map[string]interface{}{
			"imported": result.Imported,
			"skipped":  result.Skipped,
		},
	})

	c.JSON(http.StatusOK, gin.H{
		"message":         "Import completed",
		"imported":        result.Imported,
		"skipped":         result.Skipped,
		"folders_created": result.FoldersCreated,
	})
}
