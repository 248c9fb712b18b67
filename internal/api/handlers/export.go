package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"

	"github.com/se1907800-collab/mediavalut/internal/tree"

	"github.com/gin-gonic/gin"
)

// ExportCSV writes the media inventory in the same id,type,title,folder
// format the importer accepts.
func (h *Handler) ExportCSV(c *gin.Context) {
	snap := h.lib.Snapshot()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=library_export.csv")

	writer := csv.NewWriter(c.Writer)
	// Write header
	if err := writer.Write([]string{"id", "type", "title", "folder"}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write CSV header"})
		return
	}

	for folderID, items := range snap.Media {
		folderName := ""
		if folder, ok := snap.Folders[folderID]; ok && folderID != tree.RootID {
			folderName = folder.Name
		}
		for _, item := range items {
			if err := writer.Write([]string{
				item.ID,
				string(item.Type),
				item.Title,
				folderName,
			}); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write CSV data"})
				return
			}
		}
	}

	writer.Flush()
}

// ExportJSON dumps the whole snapshot in its persisted wire format.
func (h *Handler) ExportJSON(c *gin.Context) {
	snap := h.lib.Snapshot()

	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", "attachment;filename=library_export.json")

	jsonData, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to marshal JSON"})
		return
	}

	c.Data(http.StatusOK, "application/json", jsonData)
}
