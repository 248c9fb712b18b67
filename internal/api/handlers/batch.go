package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/se1907800-collab/mediavalut/internal/library"
)

// HandleBatchOperation applies one operation to a set of selected nodes,
// the REST counterpart of a drag-and-drop of the whole selection.
func (h *Handler) HandleBatchOperation(c *gin.Context) {
	var input struct {
		Operation string                `json:"operation" binding:"required"`
		Targets   []library.BatchTarget `json:"targets" binding:"required"`
		FolderID  string                `json:"folder_id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(input.Targets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No targets provided"})
		return
	}

	switch input.Operation {
	case "move":
		if input.FolderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Folder ID required for move operation"})
			return
		}
		if err := h.lib.BatchMove(input.Targets, input.FolderID); err != nil {
			respondError(c, err)
			return
		}
	case "delete":
		if err := h.lib.BatchDelete(input.Targets); err != nil {
			respondError(c, err)
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid operation"})
		return
	}
	h.persist(c)

	c.JSON(http.StatusOK, gin.H{
		"message":   "Batch operation completed",
		"operation": input.Operation,
		"affected":  len(input.Targets),
	})
}
